package options

import (
	"embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"copydesk/internal/domain/models/batch"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the generation options and credit packages the app offers.
// It is read-only after construction.
type Registry struct {
	generation GenerationOptions
	credits    CreditOptions
}

// NewRegistry creates the registry from the embedded YAML files
func NewRegistry() (*Registry, error) {
	r := &Registry{}

	if err := loadFile("config/generation.yaml", &r.generation); err != nil {
		return nil, fmt.Errorf("failed to load generation options: %w", err)
	}
	if err := loadFile("config/credits.yaml", &r.credits); err != nil {
		return nil, fmt.Errorf("failed to load credit packages: %w", err)
	}

	return r, nil
}

func loadFile(filename string, dest interface{}) error {
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	return nil
}

// Generation returns all generation options, ordered as defined in YAML
func (r *Registry) Generation() GenerationOptions {
	return r.generation
}

// Packages returns the purchasable credit packages
func (r *Registry) Packages() []CreditPackage {
	return r.credits.Packages
}

// Package returns a credit package by id
func (r *Registry) Package(id string) (*CreditPackage, error) {
	for i := range r.credits.Packages {
		if r.credits.Packages[i].ID == id {
			return &r.credits.Packages[i], nil
		}
	}
	return nil, fmt.Errorf("unknown credit package: %s", id)
}

// ContentType returns a content type by id
func (r *Registry) ContentType(id string) (*ContentType, error) {
	for i := range r.generation.ContentTypes {
		if r.generation.ContentTypes[i].ID == id {
			return &r.generation.ContentTypes[i], nil
		}
	}
	return nil, fmt.Errorf("unknown content type: %s", id)
}

// DefaultModel returns the model marked default, or the first one
func (r *Registry) DefaultModel() string {
	for _, m := range r.generation.Models {
		if m.Default {
			return m.ID
		}
	}
	if len(r.generation.Models) > 0 {
		return r.generation.Models[0].ID
	}
	return ""
}

// Check reports the first settings field that names an unknown option.
// Empty optional fields are accepted.
func (r *Registry) Check(s batch.Settings) error {
	if s.Model != "" && !slices.ContainsFunc(r.generation.Models, func(m Model) bool { return m.ID == s.Model }) {
		return fmt.Errorf("unknown model: %s", s.Model)
	}
	if s.Language != "" && !slices.ContainsFunc(r.generation.Languages, func(l Language) bool { return l.ID == s.Language }) {
		return fmt.Errorf("unknown language: %s", s.Language)
	}
	if s.ContentType != "" && !slices.ContainsFunc(r.generation.ContentTypes, func(c ContentType) bool { return c.ID == s.ContentType }) {
		return fmt.Errorf("unknown content type: %s", s.ContentType)
	}
	if s.Tone != "" && !slices.ContainsFunc(r.generation.Tones, func(t Tone) bool { return t.ID == s.Tone }) {
		return fmt.Errorf("unknown tone: %s", s.Tone)
	}
	return nil
}
