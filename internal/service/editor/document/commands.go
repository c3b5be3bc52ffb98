package document

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"copydesk/internal/domain/models/content"
)

// Command is a document editing command issued by the toolbar.
type Command string

const (
	CmdToggleBold      Command = "toggleBold"
	CmdToggleItalic    Command = "toggleItalic"
	CmdToggleUnderline Command = "toggleUnderline"
	CmdSetParagraph    Command = "setParagraph"
	CmdToggleHeading   Command = "toggleHeading"  // args: level (1-6)
	CmdSetTextAlign    Command = "setTextAlign"   // args: align (left, center, right, justify)
	CmdInsertTable     Command = "insertTable"    // 2x2 with a header row
	CmdAddRowAfter     Command = "addRowAfter"    // below the selected cell
	CmdAddColumnAfter  Command = "addColumnAfter" // right of the selected cell
	CmdDeleteTable     Command = "deleteTable"
	CmdInsertImage     Command = "insertImage" // args: src, alt, title
	CmdInsertVideo     Command = "insertVideo" // args: src, width, height
	CmdFocus           Command = "focus"
)

var commands = []Command{
	CmdToggleBold, CmdToggleItalic, CmdToggleUnderline, CmdSetParagraph, CmdToggleHeading,
	CmdSetTextAlign, CmdInsertTable, CmdAddRowAfter, CmdAddColumnAfter, CmdDeleteTable,
	CmdInsertImage, CmdInsertVideo, CmdFocus,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotApplicable  = errors.New("command not applicable to selection")
	ErrInvalidArgs    = errors.New("invalid command arguments")
)

// ParseCommand returns the command with the given name.
func ParseCommand(name string) (Command, error) {
	cmd := Command(name)
	if !slices.Contains(commands, cmd) {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd, nil
}

var markCommands = map[Command]content.MarkType{
	CmdToggleBold:      content.MarkBold,
	CmdToggleItalic:    content.MarkItalic,
	CmdToggleUnderline: content.MarkUnderline,
}

var alignments = []string{"left", "center", "right", "justify"}

// Can reports whether cmd applies to the current selection.
func (d *Document) Can(cmd Command) bool {
	inTable := d.block().Type == content.NodeTable
	switch cmd {
	case CmdToggleBold, CmdToggleItalic, CmdToggleUnderline, CmdSetParagraph, CmdToggleHeading, CmdSetTextAlign:
		return d.textblock(d.sel) != nil
	case CmdInsertTable:
		return !inTable
	case CmdAddRowAfter, CmdAddColumnAfter, CmdDeleteTable:
		return inTable
	case CmdInsertImage, CmdInsertVideo, CmdFocus:
		return true
	}
	return false
}

// IsActive reports whether the mark or node type name is active at the
// selection. attrs narrows the match, e.g. {"level": "2"} for headings. An
// empty name with {"textAlign": x} tests the alignment alone.
func (d *Document) IsActive(name string, attrs map[string]string) bool {
	tb := d.textblock(d.sel)

	switch name {
	case string(content.MarkBold), string(content.MarkItalic), string(content.MarkUnderline):
		if tb == nil {
			return false
		}
		from, to := d.markRange(tb)
		return rangeHasMark(tb.Content, from, to, content.MarkType(name)) && d.alignMatches(tb, attrs)
	case string(content.NodeParagraph), string(content.NodeHeading):
		if tb == nil || string(tb.Type) != name {
			return false
		}
		if level, ok := attrs[content.AttrLevel]; ok && tb.Attr(content.AttrLevel) != level {
			return false
		}
		return d.alignMatches(tb, attrs)
	case string(content.NodeTable), string(content.NodeImage), string(content.NodeVideo):
		return string(d.block().Type) == name
	case "":
		return tb != nil && d.alignMatches(tb, attrs)
	}
	return false
}

func (d *Document) alignMatches(tb *content.Node, attrs map[string]string) bool {
	want, ok := attrs[content.AttrTextAlign]
	if !ok {
		return true
	}
	return tb.Attr(content.AttrTextAlign) == normalizeAlign(want)
}

// Execute runs cmd against the selection and notifies subscribers.
func (d *Document) Execute(cmd Command, args map[string]any) error {
	if !slices.Contains(commands, cmd) {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	if !d.Can(cmd) {
		return fmt.Errorf("%w: %s", ErrNotApplicable, cmd)
	}

	var err error
	switch cmd {
	case CmdToggleBold, CmdToggleItalic, CmdToggleUnderline:
		tb := d.textblock(d.sel)
		from, to := d.markRange(tb)
		tb.Content = toggleMarkInRange(tb.Content, from, to, markCommands[cmd])
	case CmdSetParagraph:
		d.setTextblockType(content.NodeParagraph, "")
	case CmdToggleHeading:
		err = d.toggleHeading(args)
	case CmdSetTextAlign:
		err = d.setTextAlign(args)
	case CmdInsertTable:
		d.insertBlock(newTable(2, 2, true))
	case CmdAddRowAfter:
		d.addRowAfter()
	case CmdAddColumnAfter:
		d.addColumnAfter()
	case CmdDeleteTable:
		d.deleteBlock()
	case CmdInsertImage:
		err = d.insertImage(args)
	case CmdInsertVideo:
		err = d.insertVideo(args)
	case CmdFocus:
	}
	if err != nil {
		return err
	}

	d.sel = d.clamp(d.sel)
	d.notify()
	return nil
}

func (d *Document) setTextblockType(t content.NodeType, level string) {
	tb := d.textblock(d.sel)
	tb.Type = t
	tb.SetAttr(content.AttrLevel, level)
}

func (d *Document) toggleHeading(args map[string]any) error {
	level, ok := argInt(args, "level")
	if !ok || level < 1 || level > 6 {
		return fmt.Errorf("%w: heading level must be 1-6", ErrInvalidArgs)
	}
	tb := d.textblock(d.sel)
	lv := strconv.Itoa(level)
	if tb.Type == content.NodeHeading && tb.Attr(content.AttrLevel) == lv {
		d.setTextblockType(content.NodeParagraph, "")
		return nil
	}
	d.setTextblockType(content.NodeHeading, lv)
	return nil
}

func (d *Document) setTextAlign(args map[string]any) error {
	align, _ := argString(args, "align")
	if !slices.Contains(alignments, align) {
		return fmt.Errorf("%w: align must be one of %v", ErrInvalidArgs, alignments)
	}
	d.textblock(d.sel).SetAttr(content.AttrTextAlign, normalizeAlign(align))
	return nil
}

// insertBlock places n after the selected block, or in place of it when the
// selected block is an empty paragraph, and selects it.
func (d *Document) insertBlock(n *content.Node) {
	at := d.sel.Block
	if current := d.block(); current.Type == content.NodeParagraph && len(current.Content) == 0 {
		d.root.Content[at] = n
	} else {
		at++
		d.root.Content = slices.Insert(d.root.Content, at, n)
	}
	d.sel = content.Selection{Block: at}
}

func (d *Document) deleteBlock() {
	d.root.Content = slices.Delete(d.root.Content, d.sel.Block, d.sel.Block+1)
	if len(d.root.Content) == 0 {
		d.root.Content = []*content.Node{content.NewParagraph()}
	}
	d.sel = content.Selection{Block: max(d.sel.Block-1, 0)}
}

func newTable(rows, cols int, headerRow bool) *content.Node {
	table := &content.Node{Type: content.NodeTable}
	for r := 0; r < rows; r++ {
		cellType := content.NodeTableCell
		if headerRow && r == 0 {
			cellType = content.NodeTableHeader
		}
		row := &content.Node{Type: content.NodeTableRow}
		for c := 0; c < cols; c++ {
			row.Content = append(row.Content, newCell(cellType))
		}
		table.Content = append(table.Content, row)
	}
	return table
}

func newCell(t content.NodeType) *content.Node {
	return &content.Node{Type: t, Content: []*content.Node{content.NewParagraph()}}
}

// addRowAfter inserts a body row below the selected row, as wide as the
// selected row.
func (d *Document) addRowAfter() {
	table := d.block()
	width := len(table.Content[d.sel.Row].Content)
	row := &content.Node{Type: content.NodeTableRow}
	for c := 0; c < width; c++ {
		row.Content = append(row.Content, newCell(content.NodeTableCell))
	}
	table.Content = slices.Insert(table.Content, d.sel.Row+1, row)
}

// addColumnAfter inserts a cell right of the selected column in every row.
// The new cell copies the type of its left neighbour, so header rows stay
// header rows.
func (d *Document) addColumnAfter() {
	for _, row := range d.block().Content {
		at := min(d.sel.Col+1, len(row.Content))
		cellType := content.NodeTableCell
		if at > 0 {
			cellType = row.Content[at-1].Type
		}
		row.Content = slices.Insert(row.Content, at, newCell(cellType))
	}
}

func (d *Document) insertImage(args map[string]any) error {
	src, _ := argString(args, "src")
	if src == "" {
		return fmt.Errorf("%w: image src is required", ErrInvalidArgs)
	}
	img := &content.Node{Type: content.NodeImage}
	img.SetAttr(content.AttrSrc, src)
	for _, key := range []string{content.AttrAlt, content.AttrTitle} {
		v, _ := argString(args, key)
		img.SetAttr(key, v)
	}
	d.insertBlock(img)
	return nil
}

func (d *Document) insertVideo(args map[string]any) error {
	src, _ := argString(args, "src")
	if src == "" {
		return fmt.Errorf("%w: video src is required", ErrInvalidArgs)
	}
	video := &content.Node{Type: content.NodeVideo}
	video.SetAttr(content.AttrSrc, src)
	for _, key := range []string{content.AttrWidth, content.AttrHeight} {
		if v, ok := argInt(args, key); ok && v > 0 {
			video.SetAttr(key, strconv.Itoa(v))
		}
	}
	d.insertBlock(video)
	return nil
}

func argString(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	return s, ok
}

// argInt accepts Go ints and JSON numbers, as well as numeric strings.
func argInt(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), v == float64(int(v))
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}
