package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copydesk/internal/domain/models/content"
)

func TestParseRender_RoundTrip(t *testing.T) {
	inputs := []string{
		`<p>A</p>`,
		`<p></p>`,
		`<h1>Title</h1><p>Body</p>`,
		`<h3 style="text-align: center">Centered</h3>`,
		`<p style="text-align: justify">Long text</p>`,
		`<p><strong>bold</strong> plain <em>italic</em> <u>under</u></p>`,
		`<p><strong>a<em>b</em></strong><em>c</em></p>`,
		`<p><strong>one<br>two</strong></p>`,
		`<p>Fish &amp; Chips &lt;3</p>`,
		`<img src="a.png" alt="A &quot;quoted&quot; alt">`,
		`<iframe src="https://www.youtube.com/embed/abc" width="640" height="480" frameborder="0" allowfullscreen="true"></iframe>`,
		`<table><tbody><tr><th><p>h1</p></th><th><p>h2</p></th></tr><tr><td><p>c1</p></td><td colspan="2"><p>c2</p></td></tr></tbody></table>`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, in, Render(Parse(in)))
		})
	}
}

func TestParse_Normalizes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", content.PlaceholderHTML},
		{"whitespace only", " \n\t ", content.PlaceholderHTML},
		{"no content elements", "<div></div>", content.PlaceholderHTML},
		{"loose text", "hello", "<p>hello</p>"},
		{"b and i", "<p><b>x</b><i>y</i></p>", "<p><strong>x</strong><em>y</em></p>"},
		{"unknown inline unwrapped", `<p><span class="x">a <a href="/y">link</a></span></p>`, "<p>a link</p>"},
		{"div and list unwrapped", "<div><p>a</p><ul><li>one</li><li>two</li></ul></div>", "<p>a</p><p>one</p><p>two</p>"},
		{"whitespace collapses", "<p>  a \n\n b  </p>", "<p>a b</p>"},
		{"pretty printed blocks", "<p>a</p>\n<p>b</p>\n", "<p>a</p><p>b</p>"},
		{"image lifted out of paragraph", `<p>before<img src="i.png">after</p>`, `<p>before</p><img src="i.png"><p>after</p>`},
		{"image alone in paragraph", `<p><img src="i.png"></p>`, `<img src="i.png">`},
		{"image without src dropped", `<p>x</p><img alt="nothing">`, `<p>x</p>`},
		{"left align is default", `<p style="text-align: left">a</p>`, `<p>a</p>`},
		{"cell inline content wrapped", `<table><tr><td>a</td></tr></table>`, `<table><tbody><tr><td><p>a</p></td></tr></tbody></table>`},
		{"empty cell gets paragraph", `<table><tr><td></td></tr></table>`, `<table><tbody><tr><td><p></p></td></tr></tbody></table>`},
		{"script dropped", `<p>a</p><script>x()</script>`, `<p>a</p>`},
		{"duplicate marks", `<p><b><strong>x</strong></b></p>`, `<p><strong>x</strong></p>`},
		{"space around break", "<p>a <br> b</p>", "<p>a<br>b</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(Parse(tt.input)))
		})
	}
}

func TestDocument_SetContentEmptyGuard(t *testing.T) {
	d := New("<p>x</p>")
	d.SetContent("")
	assert.Equal(t, content.PlaceholderHTML, d.HTML())

	d = New("")
	assert.Equal(t, content.PlaceholderHTML, d.HTML())
	require.Len(t, d.Root().Content, 1)
	assert.Equal(t, content.NodeParagraph, d.Root().Content[0].Type)
}

func TestDocument_SubscribersNotifiedSynchronously(t *testing.T) {
	d := New("<p>a</p>")
	calls := 0
	unsubscribe := d.Subscribe(func() { calls++ })

	d.SetContent("<p>b</p>")
	assert.Equal(t, 1, calls)

	require.NoError(t, d.Execute(CmdToggleBold, nil))
	assert.Equal(t, 2, calls)

	unsubscribe()
	d.SetContent("<p>c</p>")
	assert.Equal(t, 2, calls)
}

func TestDocument_ToggleMarks(t *testing.T) {
	tests := []struct {
		name string
		html string
		sel  content.Selection
		cmd  Command
		want string
	}{
		{"whole block when range empty", "<p>hello</p>", content.Selection{}, CmdToggleBold, "<p><strong>hello</strong></p>"},
		{"range", "<p>hello world</p>", content.Selection{From: 6, To: 11}, CmdToggleItalic, "<p>hello <em>world</em></p>"},
		{"middle of text", "<p>abcdef</p>", content.Selection{From: 2, To: 4}, CmdToggleUnderline, "<p>ab<u>cd</u>ef</p>"},
		{"remove when all marked", "<p><strong>abc</strong></p>", content.Selection{}, CmdToggleBold, "<p>abc</p>"},
		{"partial range removes from part", "<p><strong>abcd</strong></p>", content.Selection{From: 1, To: 3}, CmdToggleBold, "<p><strong>a</strong>bc<strong>d</strong></p>"},
		{"mixed range adds", "<p><strong>ab</strong>cd</p>", content.Selection{From: 0, To: 4}, CmdToggleBold, "<p><strong>abcd</strong></p>"},
		{"nests in canonical order", "<p><em>ab</em></p>", content.Selection{}, CmdToggleBold, "<p><strong><em>ab</em></strong></p>"},
		{"multibyte offsets", "<p>héllo</p>", content.Selection{From: 1, To: 2}, CmdToggleBold, "<p>h<strong>é</strong>llo</p>"},
		{"in table cell", "<table><tbody><tr><td><p>a</p></td><td><p>b</p></td></tr></tbody></table>", content.Selection{Col: 1}, CmdToggleBold, "<table><tbody><tr><td><p>a</p></td><td><p><strong>b</strong></p></td></tr></tbody></table>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.html)
			d.Select(tt.sel)
			require.NoError(t, d.Execute(tt.cmd, nil))
			assert.Equal(t, tt.want, d.HTML())
		})
	}
}

func TestDocument_BlockCommands(t *testing.T) {
	tests := []struct {
		name string
		html string
		sel  content.Selection
		cmd  Command
		args map[string]any
		want string
	}{
		{"heading", "<p>t</p>", content.Selection{}, CmdToggleHeading, map[string]any{"level": 2}, "<h2>t</h2>"},
		{"heading from JSON number", "<p>t</p>", content.Selection{}, CmdToggleHeading, map[string]any{"level": float64(3)}, "<h3>t</h3>"},
		{"heading toggles back", "<h2>t</h2>", content.Selection{}, CmdToggleHeading, map[string]any{"level": 2}, "<p>t</p>"},
		{"heading level change", "<h2>t</h2>", content.Selection{}, CmdToggleHeading, map[string]any{"level": 4}, "<h4>t</h4>"},
		{"paragraph keeps alignment", `<h1 style="text-align: right">t</h1>`, content.Selection{}, CmdSetParagraph, nil, `<p style="text-align: right">t</p>`},
		{"align center", "<p>t</p>", content.Selection{}, CmdSetTextAlign, map[string]any{"align": "center"}, `<p style="text-align: center">t</p>`},
		{"align left clears", `<p style="text-align: center">t</p>`, content.Selection{}, CmdSetTextAlign, map[string]any{"align": "left"}, "<p>t</p>"},
		{"second block", "<p>a</p><p>b</p>", content.Selection{Block: 1}, CmdToggleHeading, map[string]any{"level": 1}, "<p>a</p><h1>b</h1>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.html)
			d.Select(tt.sel)
			require.NoError(t, d.Execute(tt.cmd, tt.args))
			assert.Equal(t, tt.want, d.HTML())
		})
	}
}

func TestDocument_InvalidArgs(t *testing.T) {
	d := New("<p>t</p>")
	assert.ErrorIs(t, d.Execute(CmdToggleHeading, map[string]any{"level": 7}), ErrInvalidArgs)
	assert.ErrorIs(t, d.Execute(CmdSetTextAlign, map[string]any{"align": "middle"}), ErrInvalidArgs)
	assert.ErrorIs(t, d.Execute(CmdInsertImage, nil), ErrInvalidArgs)
	assert.ErrorIs(t, d.Execute(Command("explode"), nil), ErrUnknownCommand)
	assert.Equal(t, "<p>t</p>", d.HTML())
}

func TestDocument_Tables(t *testing.T) {
	const empty2x2 = "<table><tbody>" +
		"<tr><th><p></p></th><th><p></p></th></tr>" +
		"<tr><td><p></p></td><td><p></p></td></tr>" +
		"</tbody></table>"

	t.Run("insert replaces empty paragraph", func(t *testing.T) {
		d := New("")
		require.NoError(t, d.Execute(CmdInsertTable, nil))
		assert.Equal(t, empty2x2, d.HTML())
		assert.True(t, d.IsActive("table", nil))
		assert.False(t, d.Can(CmdInsertTable), "tables do not nest")
	})

	t.Run("insert after content", func(t *testing.T) {
		d := New("<p>a</p>")
		require.NoError(t, d.Execute(CmdInsertTable, nil))
		assert.Equal(t, "<p>a</p>"+empty2x2, d.HTML())
		assert.Equal(t, 1, d.Selection().Block)
	})

	t.Run("add row below", func(t *testing.T) {
		d := New("")
		require.NoError(t, d.Execute(CmdInsertTable, nil))
		require.NoError(t, d.Execute(CmdAddRowAfter, nil))
		root := d.Root()
		require.Len(t, root.Content[0].Content, 3)
		assert.Equal(t, content.NodeTableCell, root.Content[0].Content[1].Content[0].Type)
		assert.Len(t, root.Content[0].Content[1].Content, 2)
	})

	t.Run("add column right keeps header row", func(t *testing.T) {
		d := New("")
		require.NoError(t, d.Execute(CmdInsertTable, nil))
		d.Select(content.Selection{Row: 1, Col: 0})
		require.NoError(t, d.Execute(CmdAddColumnAfter, nil))
		rows := d.Root().Content[0].Content
		require.Len(t, rows[0].Content, 3)
		require.Len(t, rows[1].Content, 3)
		assert.Equal(t, content.NodeTableHeader, rows[0].Content[1].Type)
		assert.Equal(t, content.NodeTableCell, rows[1].Content[1].Type)
	})

	t.Run("delete last block leaves placeholder", func(t *testing.T) {
		d := New("")
		require.NoError(t, d.Execute(CmdInsertTable, nil))
		require.NoError(t, d.Execute(CmdDeleteTable, nil))
		assert.Equal(t, content.PlaceholderHTML, d.HTML())
	})

	t.Run("table commands need a table", func(t *testing.T) {
		d := New("<p>a</p>")
		assert.False(t, d.Can(CmdAddRowAfter))
		assert.False(t, d.Can(CmdAddColumnAfter))
		assert.False(t, d.Can(CmdDeleteTable))
		assert.ErrorIs(t, d.Execute(CmdDeleteTable, nil), ErrNotApplicable)
	})
}

func TestDocument_MediaBlocks(t *testing.T) {
	d := New("<p>a</p>")
	require.NoError(t, d.Execute(CmdInsertImage, map[string]any{"src": "data:image/png;base64,AAAA", "alt": "shirt"}))
	assert.Equal(t, `<p>a</p><img src="data:image/png;base64,AAAA" alt="shirt">`, d.HTML())
	assert.True(t, d.IsActive("image", nil))
	assert.False(t, d.Can(CmdToggleBold), "no textblock selected")

	require.NoError(t, d.Execute(CmdInsertVideo, map[string]any{"src": "https://www.youtube.com/embed/x", "width": float64(320)}))
	assert.Contains(t, d.HTML(), `<iframe src="https://www.youtube.com/embed/x" width="320" height="480"`)
}

func TestDocument_IsActive(t *testing.T) {
	d := New(`<h2 style="text-align: center"><strong>a</strong>b</h2>`)

	assert.True(t, d.IsActive("heading", map[string]string{"level": "2"}))
	assert.False(t, d.IsActive("heading", map[string]string{"level": "1"}))
	assert.False(t, d.IsActive("paragraph", nil))
	assert.True(t, d.IsActive("", map[string]string{"textAlign": "center"}))
	assert.False(t, d.IsActive("bold", nil), "only part of the block is bold")

	d.Select(content.Selection{From: 0, To: 1})
	assert.True(t, d.IsActive("bold", nil))
}

func TestDocument_SelectClamps(t *testing.T) {
	d := New("<p>abc</p>")
	d.Select(content.Selection{Block: 5, From: -2, To: 99, Row: 3})
	assert.Equal(t, content.Selection{Block: 0, From: 0, To: 3}, d.Selection())
}
