package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copydesk/internal/domain/models/batch"
)

func TestNewRegistry_PreservesYAMLOrder(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	gen := r.Generation()
	require.NotEmpty(t, gen.Models)
	assert.Equal(t, "gpt-4o-mini", gen.Models[0].ID)
	assert.Equal(t, "en", gen.Languages[0].ID)
	assert.Equal(t, []string{"description", "seo", "collection"}, contentTypeIDs(gen.ContentTypes))
	assert.Equal(t, "gpt-4o-mini", r.DefaultModel())

	seo, err := r.ContentType(batch.ContentTypeSEO)
	require.NoError(t, err)
	assert.True(t, seo.PlainText)
}

func TestRegistry_Package(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	pkg, err := r.Package("growth")
	require.NoError(t, err)
	assert.Equal(t, 2500, pkg.Tokens)
	assert.Equal(t, "USD", pkg.Currency)

	_, err = r.Package("missing")
	assert.Error(t, err)
}

func TestRegistry_Check(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	tests := []struct {
		name     string
		settings batch.Settings
		wantErr  string
	}{
		{"empty settings", batch.Settings{}, ""},
		{"all known", batch.Settings{Model: "gpt-4o", Language: "fr", ContentType: "seo", Tone: "luxury"}, ""},
		{"unknown model", batch.Settings{Model: "gpt-2"}, "unknown model"},
		{"unknown language", batch.Settings{Language: "xx"}, "unknown language"},
		{"unknown content type", batch.Settings{ContentType: "blog"}, "unknown content type"},
		{"unknown tone", batch.Settings{Tone: "angry"}, "unknown tone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Check(tt.settings)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func contentTypeIDs(types []ContentType) []string {
	ids := make([]string, len(types))
	for i, ct := range types {
		ids[i] = ct.ID
	}
	return ids
}

func TestRegistry_Validate(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	ok := batch.Settings{Model: "gpt-4o", SEOKeywords: []string{"linen", "summer"}}
	assert.NoError(t, r.Validate(&ok))

	tooMany := batch.Settings{SEOKeywords: []string{"a", "b", "c", "d"}}
	assert.Error(t, r.Validate(&tooMany))

	blankKeyword := batch.Settings{SEOKeywords: []string{""}}
	assert.Error(t, r.Validate(&blankKeyword))

	unknown := batch.Settings{Tone: "angry"}
	assert.ErrorContains(t, r.Validate(&unknown), "unknown tone")
}
