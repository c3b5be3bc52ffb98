package options

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Model is a generation model the backend accepts
type Model struct {
	ID             string `yaml:"-" json:"id"`
	DisplayName    string `yaml:"display_name" json:"display_name"`
	Description    string `yaml:"description" json:"description"`
	CreditsPerItem int    `yaml:"credits_per_item" json:"credits_per_item"`
	Default        bool   `yaml:"default" json:"default"`
}

// Language is an output language of generated content
type Language struct {
	ID          string `yaml:"-" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
}

// ContentType selects what the backend writes and where it is published
type ContentType struct {
	ID          string `yaml:"-" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	PageType    string `yaml:"page_type" json:"page_type"`
	PlainText   bool   `yaml:"plain_text" json:"plain_text"` // published with tags stripped
}

// Tone is a writing voice
type Tone struct {
	ID          string `yaml:"-" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
}

// CreditPackage is a purchasable bundle of generation tokens
type CreditPackage struct {
	ID          string  `yaml:"-" json:"id"`
	DisplayName string  `yaml:"display_name" json:"display_name"`
	Tokens      int     `yaml:"tokens" json:"tokens"`
	Price       float64 `yaml:"price" json:"price"`
	Currency    string  `yaml:"currency" json:"currency"`
}

// GenerationOptions is the content of generation.yaml
type GenerationOptions struct {
	Models       []Model       `json:"models"`
	Languages    []Language    `json:"languages"`
	ContentTypes []ContentType `json:"content_types"`
	Tones        []Tone        `json:"tones"`
}

// UnmarshalYAML keeps every section in the order it is written in the file
func (g *GenerationOptions) UnmarshalYAML(node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		var err error
		switch key {
		case "models":
			g.Models, err = decodeOrdered(value, func(m *Model, id string) { m.ID = id })
		case "languages":
			g.Languages, err = decodeOrdered(value, func(l *Language, id string) { l.ID = id })
		case "content_types":
			g.ContentTypes, err = decodeOrdered(value, func(c *ContentType, id string) { c.ID = id })
		case "tones":
			g.Tones, err = decodeOrdered(value, func(t *Tone, id string) { t.ID = id })
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// CreditOptions is the content of credits.yaml
type CreditOptions struct {
	Packages []CreditPackage `json:"packages"`
}

func (c *CreditOptions) UnmarshalYAML(node *yaml.Node) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "packages" {
			continue
		}
		packages, err := decodeOrdered(node.Content[i+1], func(p *CreditPackage, id string) { p.ID = id })
		if err != nil {
			return fmt.Errorf("packages: %w", err)
		}
		c.Packages = packages
	}
	return nil
}

// decodeOrdered decodes a YAML mapping of id -> T into a slice in file order.
// mappingNode.Content alternates: key, value, key, value...
func decodeOrdered[T any](mappingNode *yaml.Node, setID func(*T, string)) ([]T, error) {
	if mappingNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping, got line %d", mappingNode.Line)
	}
	out := make([]T, 0, len(mappingNode.Content)/2)
	for j := 0; j+1 < len(mappingNode.Content); j += 2 {
		var item T
		if err := mappingNode.Content[j+1].Decode(&item); err != nil {
			return nil, err
		}
		setID(&item, mappingNode.Content[j].Value)
		out = append(out, item)
	}
	return out, nil
}
