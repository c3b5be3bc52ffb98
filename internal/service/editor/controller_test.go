package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models/content"
	"copydesk/internal/notify"
	"copydesk/internal/service/analysis"
)

func newTestController(html string) (*Controller, *notify.Recorder) {
	rec := &notify.Recorder{}
	c := NewController(Options{
		ID:       "ed-1",
		Role:     content.RoleGenerated,
		HTML:     html,
		Analyzer: analysis.NewContentAnalyzer(),
		Notifier: rec,
	})
	return c, rec
}

func TestController_ToggleWithoutEditLeavesDocumentUntouched(t *testing.T) {
	c, _ := newTestController("<p>A</p>")

	assert.Equal(t, content.ModeRaw, c.Toggle())
	assert.Equal(t, "<p>A</p>", c.Snapshot().Raw)

	assert.Equal(t, content.ModeStructured, c.Toggle())
	assert.Equal(t, "<p>A</p>", c.Content())
}

func TestController_ToggleWithEditSanitizes(t *testing.T) {
	c, _ := newTestController("<p>A</p>")

	c.Toggle()
	require.NoError(t, c.SetRaw(`<p onclick="x()">B</p>`))
	c.Toggle()

	assert.Equal(t, "<p>B</p>", c.Content())
}

func TestController_ToggleKeepsPrettyPrintedMultiBlockContent(t *testing.T) {
	const html = `<h2>T</h2><p><strong>a</strong><em>b</em></p><table><tbody><tr><td><p>c</p></td></tr></tbody></table>`
	c, _ := newTestController(html)

	c.Toggle()
	raw := c.Snapshot().Raw
	assert.Contains(t, raw, "\n")

	// Re-importing the pretty-printed buffer gives the same document
	require.NoError(t, c.SetRaw(raw+" "))
	c.Toggle()
	assert.Equal(t, html, c.Content())
}

func TestController_RawEmptiedImportsPlaceholder(t *testing.T) {
	c, _ := newTestController("<p>A</p>")

	c.Toggle()
	require.NoError(t, c.SetRaw("<script>alert(1)</script>"))
	assert.Equal(t, content.PlaceholderHTML, c.Content(), "raw content is sanitized")

	c.Toggle()
	assert.Equal(t, content.PlaceholderHTML, c.Content())
}

func TestController_ToolbarDisabledInRawMode(t *testing.T) {
	c, _ := newTestController("<p>A</p>")
	assert.True(t, c.Snapshot().Toolbar.Enabled)
	assert.True(t, c.Snapshot().Toolbar.CanBold)

	c.Toggle()
	snap := c.Snapshot()
	assert.False(t, snap.Toolbar.Enabled)
	assert.False(t, snap.Toolbar.CanBold)
	assert.Nil(t, snap.Document)

	err := c.Apply("toggleBold", nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	c.Toggle()
	assert.True(t, c.Snapshot().Toolbar.Enabled)
}

func TestController_SetRawOnlyInRawMode(t *testing.T) {
	c, _ := newTestController("<p>A</p>")
	assert.ErrorIs(t, c.SetRaw("<p>B</p>"), domain.ErrValidation)
	assert.Equal(t, "<p>A</p>", c.Content())
}

func TestController_ApplyUpdatesToolbar(t *testing.T) {
	c, _ := newTestController("<p>A</p>")

	require.NoError(t, c.Apply("toggleBold", nil))
	tb := c.Snapshot().Toolbar
	assert.True(t, tb.IsBold)
	assert.True(t, tb.IsParagraph)

	require.NoError(t, c.Apply("toggleHeading", map[string]any{"level": float64(2)}))
	tb = c.Snapshot().Toolbar
	assert.True(t, tb.IsHeading[2])
	assert.False(t, tb.IsParagraph)

	require.NoError(t, c.Apply("setTextAlign", map[string]any{"align": "right"}))
	assert.Equal(t, "right", c.Snapshot().Toolbar.Align)
	assert.Equal(t, `<h2 style="text-align: right"><strong>A</strong></h2>`, c.Content())
}

func TestController_ApplyRejectsUnavailableCommands(t *testing.T) {
	c, _ := newTestController("<p>A</p>")

	assert.ErrorIs(t, c.Apply("deleteTable", nil), domain.ErrValidation)
	assert.ErrorIs(t, c.Apply("nope", nil), domain.ErrValidation)
	assert.Equal(t, "<p>A</p>", c.Content())
}

func TestController_ReadOnly(t *testing.T) {
	c := NewController(Options{ID: "orig", Role: content.RoleOriginal, HTML: "<p>A</p>", ReadOnly: true})

	assert.ErrorIs(t, c.Apply("toggleBold", nil), domain.ErrValidation)
	c.Toggle()
	assert.ErrorIs(t, c.SetRaw("<p>B</p>"), domain.ErrValidation)
	c.Toggle()
	assert.Equal(t, "<p>A</p>", c.Content())
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestController_InsertImage(t *testing.T) {
	ctx := context.Background()

	t.Run("image becomes data URL", func(t *testing.T) {
		c, rec := newTestController("<p>A</p>")
		require.NoError(t, c.InsertImage(ctx, "red_shirt.png", pngHeader))
		assert.Contains(t, c.Content(), `<img src="data:image/png;base64,`)
		assert.Contains(t, c.Content(), `alt="red shirt"`)
		assert.Empty(t, rec.Notices)

		// The same file may be inserted again
		require.NoError(t, c.InsertImage(ctx, "red_shirt.png", pngHeader))
		assert.Len(t, c.Snapshot().Document.Content, 3)
	})

	t.Run("non-image rejected with warning", func(t *testing.T) {
		c, rec := newTestController("<p>A</p>")
		err := c.InsertImage(ctx, "notes.txt", []byte("just some text"))
		assert.ErrorIs(t, err, domain.ErrValidation)
		require.Len(t, rec.Notices, 1)
		assert.Equal(t, notify.LevelWarning, rec.Notices[0].Level)
		assert.Equal(t, "<p>A</p>", c.Content())
	})
}

func TestController_InsertVideo(t *testing.T) {
	c, rec := newTestController("<p>A</p>")

	require.NoError(t, c.InsertVideo(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Contains(t, c.Content(), `<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ"`)

	assert.ErrorIs(t, c.InsertVideo(context.Background(), "javascript:alert(1)"), domain.ErrValidation)
	assert.Len(t, rec.Notices, 1)
}

func TestController_WordCount(t *testing.T) {
	c, _ := newTestController("<p>Soft cotton tee</p>")
	assert.Equal(t, 3, c.Snapshot().WordCount)
}

func TestEmbedURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=abc&t=10", "https://www.youtube.com/embed/abc", true},
		{"https://youtu.be/abc", "https://www.youtube.com/embed/abc", true},
		{"https://m.youtube.com/shorts/xyz", "https://www.youtube.com/embed/xyz", true},
		{"https://vimeo.com/12345", "https://player.vimeo.com/video/12345", true},
		{"http://cdn.example.com/v.mp4", "https://cdn.example.com/v.mp4", true},
		{"ftp://example.com/v", "", false},
		{"not a url", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := embedURL(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
