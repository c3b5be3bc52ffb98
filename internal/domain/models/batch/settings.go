package batch

// Settings configures a generation request. Attached to a batch job or a
// single-item request at submit time and never modified afterwards.
type Settings struct {
	Language      string   `json:"language"`
	ContentType   string   `json:"content_type"` // "description", "seo", ...
	Tone          string   `json:"tone"`
	BrandTone     string   `json:"brand_tone"`
	BrandWord     string   `json:"brand_word"`
	BrandSlogan   string   `json:"brand_slogan"`
	SEOKeywords   []string `json:"seo_keywords"`
	TemplateID    string   `json:"template_id"`
	TemplateClass string   `json:"template_class"`
	Model         string   `json:"model"`
}

// ContentTypeSEO publishes plain text instead of HTML.
const ContentTypeSEO = "seo"

// Clone returns a copy that shares no slices with s.
func (s Settings) Clone() Settings {
	c := s
	c.SEOKeywords = append([]string(nil), s.SEOKeywords...)
	return c
}
