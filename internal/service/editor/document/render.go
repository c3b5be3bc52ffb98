package document

import (
	"strings"

	"copydesk/internal/domain/models/content"
)

var markTags = map[content.MarkType]string{
	content.MarkBold:      "strong",
	content.MarkItalic:    "em",
	content.MarkUnderline: "u",
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
)

// Default embed size for videos without explicit dimensions.
const (
	defaultVideoWidth  = "640"
	defaultVideoHeight = "480"
)

// Render serializes a document tree to HTML.
func Render(doc *content.Node) string {
	var b strings.Builder
	for _, block := range doc.Content {
		renderBlock(&b, block)
	}
	return b.String()
}

func renderBlock(b *strings.Builder, n *content.Node) {
	switch n.Type {
	case content.NodeParagraph, content.NodeHeading:
		tag := "p"
		if n.Type == content.NodeHeading {
			tag = "h" + headingLevel(n)
		}
		b.WriteString("<" + tag)
		if align := n.Attr(content.AttrTextAlign); align != "" {
			b.WriteString(` style="text-align: ` + attrEscaper.Replace(align) + `"`)
		}
		b.WriteString(">")
		renderInline(b, n.Content)
		b.WriteString("</" + tag + ">")

	case content.NodeImage:
		b.WriteString("<img")
		writeAttrs(b, n, content.AttrSrc, content.AttrAlt, content.AttrTitle, content.AttrWidth, content.AttrHeight)
		b.WriteString(">")

	case content.NodeVideo:
		b.WriteString("<iframe")
		writeAttrs(b, n, content.AttrSrc)
		b.WriteString(` width="` + attrEscaper.Replace(orDefault(n.Attr(content.AttrWidth), defaultVideoWidth)) + `"`)
		b.WriteString(` height="` + attrEscaper.Replace(orDefault(n.Attr(content.AttrHeight), defaultVideoHeight)) + `"`)
		b.WriteString(` frameborder="0" allowfullscreen="true"></iframe>`)

	case content.NodeTable:
		b.WriteString("<table><tbody>")
		for _, row := range n.Content {
			b.WriteString("<tr>")
			for _, cell := range row.Content {
				tag := "td"
				if cell.Type == content.NodeTableHeader {
					tag = "th"
				}
				b.WriteString("<" + tag)
				writeAttrs(b, cell, content.AttrColspan, content.AttrRowspan)
				b.WriteString(">")
				for _, inner := range cell.Content {
					renderBlock(b, inner)
				}
				b.WriteString("</" + tag + ">")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")
	}
}

// renderInline writes text nodes, nesting mark tags in content.MarkOrder.
// Marks shared with the previous node stay open, so "<strong>a<em>b</em></strong>"
// renders back the same way. Hard breaks do not close open marks.
func renderInline(b *strings.Builder, nodes []*content.Node) {
	var open []content.MarkType
	for _, n := range nodes {
		if n.Type == content.NodeHardBreak {
			b.WriteString("<br>")
			continue
		}
		if n.Type != content.NodeText {
			continue
		}

		marks := sortMarks(n.Marks)
		keep := 0
		for keep < len(open) && keep < len(marks) && open[keep] == marks[keep] {
			keep++
		}
		for i := len(open) - 1; i >= keep; i-- {
			b.WriteString("</" + markTags[open[i]] + ">")
		}
		for _, m := range marks[keep:] {
			b.WriteString("<" + markTags[m] + ">")
		}
		open = marks

		b.WriteString(textEscaper.Replace(n.Text))
	}
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</" + markTags[open[i]] + ">")
	}
}

func writeAttrs(b *strings.Builder, n *content.Node, keys ...string) {
	for _, key := range keys {
		if v := n.Attr(key); v != "" {
			b.WriteString(" " + key + `="` + attrEscaper.Replace(v) + `"`)
		}
	}
}

func headingLevel(n *content.Node) string {
	switch level := n.Attr(content.AttrLevel); level {
	case "1", "2", "3", "4", "5", "6":
		return level
	}
	return "1"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// PlainText returns the text content of the document, one line per textblock.
func PlainText(doc *content.Node) string {
	var lines []string
	var walk func(*content.Node)
	walk = func(n *content.Node) {
		if n.IsTextblock() {
			var b strings.Builder
			for _, c := range n.Content {
				switch c.Type {
				case content.NodeText:
					b.WriteString(c.Text)
				case content.NodeHardBreak:
					b.WriteString("\n")
				}
			}
			lines = append(lines, b.String())
			return
		}
		for _, c := range n.Content {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(lines, "\n")
}
