package editor

import (
	"strconv"

	"copydesk/internal/domain/models/content"
	"copydesk/internal/service/editor/document"
)

// computeToolbar projects the document selection onto the toolbar flags.
// In raw mode every button is disabled.
func computeToolbar(doc *document.Document, mode content.Mode) content.ToolbarState {
	if mode == content.ModeRaw {
		return content.ToolbarState{}
	}

	state := content.ToolbarState{
		Enabled:      true,
		IsBold:       doc.IsActive(string(content.MarkBold), nil),
		CanBold:      doc.Can(document.CmdToggleBold),
		IsItalic:     doc.IsActive(string(content.MarkItalic), nil),
		CanItalic:    doc.Can(document.CmdToggleItalic),
		IsUnderline:  doc.IsActive(string(content.MarkUnderline), nil),
		CanUnderline: doc.Can(document.CmdToggleUnderline),
		IsParagraph:  doc.IsActive(string(content.NodeParagraph), nil),
		InTable:      doc.IsActive(string(content.NodeTable), nil),
		Align:        "left",
	}
	for level := 1; level <= 6; level++ {
		state.IsHeading[level] = doc.IsActive(string(content.NodeHeading), map[string]string{content.AttrLevel: strconv.Itoa(level)})
	}
	for _, align := range []string{"center", "right", "justify"} {
		if doc.IsActive("", map[string]string{content.AttrTextAlign: align}) {
			state.Align = align
		}
	}
	return state
}
