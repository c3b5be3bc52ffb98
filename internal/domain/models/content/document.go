package content

// NodeType identifies a node in the structured document tree
type NodeType string

const (
	NodeDoc         NodeType = "doc"
	NodeParagraph   NodeType = "paragraph"
	NodeHeading     NodeType = "heading"
	NodeText        NodeType = "text"
	NodeHardBreak   NodeType = "hardBreak"
	NodeImage       NodeType = "image"
	NodeVideo       NodeType = "video"
	NodeTable       NodeType = "table"
	NodeTableRow    NodeType = "tableRow"
	NodeTableHeader NodeType = "tableHeader"
	NodeTableCell   NodeType = "tableCell"
)

// MarkType identifies an inline formatting mark on a text node
type MarkType string

const (
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
)

// MarkOrder is the canonical nesting order used when marks are serialized:
// bold wraps italic wraps underline.
var MarkOrder = []MarkType{MarkBold, MarkItalic, MarkUnderline}

// Attribute keys used on nodes
const (
	AttrLevel     = "level"     // heading level "1".."6"
	AttrTextAlign = "textAlign" // paragraph/heading alignment
	AttrSrc       = "src"
	AttrAlt       = "alt"
	AttrTitle     = "title"
	AttrWidth     = "width"
	AttrHeight    = "height"
	AttrColspan   = "colspan"
	AttrRowspan   = "rowspan"
)

// PlaceholderHTML is the document content substituted whenever content is absent.
const PlaceholderHTML = "<p></p>"

// Node is one element of the structured document tree.
// Text nodes carry Text and Marks; every other node carries Content.
type Node struct {
	Type    NodeType          `json:"type"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Content []*Node           `json:"content,omitempty"`
	Marks   []MarkType        `json:"marks,omitempty"`
	Text    string            `json:"text,omitempty"`
}

// Attr returns the attribute value or empty string.
func (n *Node) Attr(key string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// SetAttr sets or, for an empty value, removes an attribute.
func (n *Node) SetAttr(key, value string) {
	if value == "" {
		delete(n.Attrs, key)
		if len(n.Attrs) == 0 {
			n.Attrs = nil
		}
		return
	}
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

// HasMark reports whether a text node carries the mark.
func (n *Node) HasMark(m MarkType) bool {
	for _, have := range n.Marks {
		if have == m {
			return true
		}
	}
	return false
}

// IsTextblock reports whether the node holds inline content directly.
func (n *Node) IsTextblock() bool {
	return n.Type == NodeParagraph || n.Type == NodeHeading
}

// IsCell reports whether the node is a table header or body cell.
func (n *Node) IsCell() bool {
	return n.Type == NodeTableCell || n.Type == NodeTableHeader
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Type: n.Type, Text: n.Text}
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if n.Marks != nil {
		c.Marks = append([]MarkType(nil), n.Marks...)
	}
	for _, child := range n.Content {
		c.Content = append(c.Content, child.Clone())
	}
	return c
}

// NewParagraph returns an empty paragraph node.
func NewParagraph() *Node {
	return &Node{Type: NodeParagraph}
}
