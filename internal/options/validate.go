package options

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"copydesk/internal/config"
	"copydesk/internal/domain/models/batch"
)

// Validate checks field limits on s and that every named option exists.
func (r *Registry) Validate(s *batch.Settings) error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.BrandWord, validation.Length(0, config.MaxBrandFieldLength)),
		validation.Field(&s.BrandSlogan, validation.Length(0, config.MaxBrandFieldLength)),
		validation.Field(&s.BrandTone, validation.Length(0, config.MaxBrandFieldLength)),
		validation.Field(&s.SEOKeywords,
			validation.Length(0, config.MaxSEOKeywords),
			validation.Each(validation.Required, validation.Length(1, config.MaxBrandFieldLength)),
		),
	)
	if err != nil {
		return err
	}
	return r.Check(*s)
}
