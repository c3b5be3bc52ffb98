package content

// Mode is the editing mode of one editor controller
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeRaw        Mode = "raw"
)

// Role distinguishes the two editors of a review row
type Role string

const (
	RoleOriginal  Role = "original"
	RoleGenerated Role = "generated"
)

// Selection addresses the part of the document commands apply to.
// Block is the index of a top-level block. From/To are rune offsets into the
// block's text; an empty range means the whole block. Row/Col select a cell
// when Block is a table.
type Selection struct {
	Block int `json:"block"`
	From  int `json:"from"`
	To    int `json:"to"`
	Row   int `json:"row"`
	Col   int `json:"col"`
}

// ToolbarState is the projection of the document selection onto the toolbar.
type ToolbarState struct {
	Enabled      bool    `json:"enabled"`
	IsBold       bool    `json:"is_bold"`
	CanBold      bool    `json:"can_bold"`
	IsItalic     bool    `json:"is_italic"`
	CanItalic    bool    `json:"can_italic"`
	IsUnderline  bool    `json:"is_underline"`
	CanUnderline bool    `json:"can_underline"`
	IsParagraph  bool    `json:"is_paragraph"`
	IsHeading    [7]bool `json:"is_heading"` // index 1..6, index 0 unused
	Align        string  `json:"align"`
	InTable      bool    `json:"in_table"`
}

// EditorSnapshot is the externally visible state of one editor controller.
type EditorSnapshot struct {
	ID        string       `json:"id"`
	Role      Role         `json:"role,omitempty"`
	ProductID string       `json:"product_id,omitempty"`
	Mode      Mode         `json:"mode"`
	HTML      string       `json:"html"`
	Raw       string       `json:"raw,omitempty"`
	Document  *Node        `json:"document,omitempty"`
	Selection Selection    `json:"selection"`
	Toolbar   ToolbarState `json:"toolbar"`
	WordCount int          `json:"word_count"`
}
