package document

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"copydesk/internal/domain/models/content"
)

var textAlignStyle = regexp.MustCompile(`(?i)text-align\s*:\s*(left|center|right|justify)`)

// Parse converts an HTML fragment into a document tree. Parsing is best
// effort: unknown elements are unwrapped, images and videos are lifted out of
// paragraphs, and a fragment with no content yields the placeholder paragraph.
func Parse(fragment string) *content.Node {
	doc := &content.Node{Type: content.NodeDoc}

	if strings.TrimSpace(fragment) != "" {
		body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
		if err == nil {
			doc.Content = parseBlocks(nodes)
		}
	}

	if len(doc.Content) == 0 {
		doc.Content = []*content.Node{content.NewParagraph()}
	}
	return doc
}

func parseBlocks(nodes []*html.Node) []*content.Node {
	b := &builder{}
	for _, n := range nodes {
		b.walk(n, nil)
	}
	b.closeTextblock()
	return b.blocks
}

// builder accumulates top-level blocks. Inline content goes into the open
// textblock, which is created implicitly for loose inline content.
type builder struct {
	blocks    []*content.Node
	open      *content.Node
	keepEmpty bool // the open textblock came from an explicit <p>/<hN>
}

func (b *builder) closeTextblock() {
	if b.open == nil {
		return
	}
	b.open.Content = normalizeInline(b.open.Content)
	if len(b.open.Content) > 0 || b.keepEmpty {
		b.blocks = append(b.blocks, b.open)
	}
	b.open, b.keepEmpty = nil, false
}

func (b *builder) addInline(n *content.Node) {
	if b.open == nil {
		b.open = content.NewParagraph()
	}
	b.open.Content = append(b.open.Content, n)
}

// addBlock lifts a block out of any open textblock. An explicit textblock
// emptied by the split is dropped.
func (b *builder) addBlock(n *content.Node) {
	b.keepEmpty = false
	b.closeTextblock()
	b.blocks = append(b.blocks, n)
}

func (b *builder) walk(n *html.Node, marks []content.MarkType) {
	switch n.Type {
	case html.TextNode:
		if b.open == nil && strings.TrimSpace(n.Data) == "" {
			return
		}
		b.addInline(&content.Node{Type: content.NodeText, Text: n.Data, Marks: marks})
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title, atom.Meta, atom.Link, atom.Noscript, atom.Template, atom.Hr:
		return

	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		b.closeTextblock()
		b.open, b.keepEmpty = textblockFor(n), true
		b.walkChildren(n, nil)
		b.closeTextblock()

	case atom.Br:
		b.addInline(&content.Node{Type: content.NodeHardBreak})

	case atom.Img:
		if img := imageFor(n); img != nil {
			b.addBlock(img)
		}

	case atom.Iframe:
		if video := videoFor(n); video != nil {
			b.addBlock(video)
		}

	case atom.Table:
		if table := tableFor(n); table != nil {
			b.addBlock(table)
		}

	case atom.Strong, atom.B:
		b.walkChildren(n, withMark(marks, content.MarkBold))
	case atom.Em, atom.I:
		b.walkChildren(n, withMark(marks, content.MarkItalic))
	case atom.U:
		b.walkChildren(n, withMark(marks, content.MarkUnderline))

	default:
		if isBlockContainer(n.DataAtom) {
			b.closeTextblock()
			b.walkChildren(n, nil)
			b.closeTextblock()
			return
		}
		// span, a, code, font...: keep the text, drop the element
		b.walkChildren(n, marks)
	}
}

func (b *builder) walkChildren(n *html.Node, marks []content.MarkType) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c, marks)
	}
}

func isBlockContainer(a atom.Atom) bool {
	switch a {
	case atom.Html, atom.Body, atom.Div, atom.Section, atom.Article, atom.Main, atom.Header, atom.Footer,
		atom.Nav, atom.Aside, atom.Blockquote, atom.Pre, atom.Figure, atom.Figcaption, atom.Ul, atom.Ol,
		atom.Li, atom.Dl, atom.Dt, atom.Dd, atom.Address, atom.Form, atom.Fieldset, atom.Details,
		atom.Summary, atom.Thead, atom.Tbody, atom.Tfoot, atom.Tr, atom.Td, atom.Th, atom.Caption:
		return true
	}
	return false
}

func textblockFor(n *html.Node) *content.Node {
	tb := content.NewParagraph()
	if n.DataAtom != atom.P {
		tb.Type = content.NodeHeading
		tb.SetAttr(content.AttrLevel, n.Data[1:])
	}
	if m := textAlignStyle.FindStringSubmatch(attr(n, "style")); m != nil {
		tb.SetAttr(content.AttrTextAlign, normalizeAlign(m[1]))
	}
	return tb
}

func imageFor(n *html.Node) *content.Node {
	src := attr(n, "src")
	if src == "" {
		return nil
	}
	img := &content.Node{Type: content.NodeImage}
	for _, key := range []string{content.AttrSrc, content.AttrAlt, content.AttrTitle, content.AttrWidth, content.AttrHeight} {
		img.SetAttr(key, attr(n, key))
	}
	return img
}

func videoFor(n *html.Node) *content.Node {
	src := attr(n, "src")
	if src == "" {
		return nil
	}
	video := &content.Node{Type: content.NodeVideo}
	for _, key := range []string{content.AttrSrc, content.AttrWidth, content.AttrHeight} {
		video.SetAttr(key, attr(n, key))
	}
	return video
}

// tableFor collects the rows of an HTML table, looking through
// thead/tbody/tfoot. Returns nil for a table without cells.
func tableFor(n *html.Node) *content.Node {
	table := &content.Node{Type: content.NodeTable}

	var collect func(*html.Node)
	collect = func(parent *html.Node) {
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				collect(c)
			case atom.Tr:
				if row := rowFor(c); row != nil {
					table.Content = append(table.Content, row)
				}
			}
		}
	}
	collect(n)

	if len(table.Content) == 0 {
		return nil
	}
	return table
}

func rowFor(n *html.Node) *content.Node {
	row := &content.Node{Type: content.NodeTableRow}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		cell := &content.Node{Type: content.NodeTableCell}
		if c.DataAtom == atom.Th {
			cell.Type = content.NodeTableHeader
		}
		for _, key := range []string{content.AttrColspan, content.AttrRowspan} {
			if v := attr(c, key); v != "" && v != "1" {
				cell.SetAttr(key, v)
			}
		}

		var children []*html.Node
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			children = append(children, gc)
		}
		cell.Content = parseBlocks(children)
		if len(cell.Content) == 0 {
			cell.Content = []*content.Node{content.NewParagraph()}
		}
		row.Content = append(row.Content, cell)
	}
	if len(row.Content) == 0 {
		return nil
	}
	return row
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// normalizeAlign maps the default alignment to no attribute.
func normalizeAlign(align string) string {
	align = strings.ToLower(align)
	if align == "left" {
		return ""
	}
	return align
}

func withMark(marks []content.MarkType, m content.MarkType) []content.MarkType {
	if hasMark(marks, m) {
		return marks
	}
	return sortMarks(append(append([]content.MarkType(nil), marks...), m))
}
