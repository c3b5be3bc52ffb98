// Package document holds the structured rich-text document of one editor:
// a typed node tree, the selection commands apply to, and the subscribers
// notified after every change.
//
// A Document is not safe for concurrent use; its editor controller guards it.
package document

import (
	"slices"

	"copydesk/internal/domain/models/content"
)

// Document is a live document tree with a selection.
type Document struct {
	root        *content.Node
	sel         content.Selection
	subscribers []subscriber
	nextSubID   int
}

type subscriber struct {
	id int
	fn func()
}

// New creates a document holding html, or the placeholder paragraph when
// html is empty.
func New(html string) *Document {
	return &Document{root: Parse(html)}
}

// HTML serializes the document.
func (d *Document) HTML() string {
	return Render(d.root)
}

// SetContent replaces the whole document. Empty or content-free input yields
// the placeholder paragraph, never an empty document. The selection moves to
// the start.
func (d *Document) SetContent(html string) {
	d.root = Parse(html)
	d.sel = content.Selection{}
	d.notify()
}

// Root returns a copy of the document tree.
func (d *Document) Root() *content.Node {
	return d.root.Clone()
}

// Selection returns the current selection.
func (d *Document) Selection() content.Selection {
	return d.sel
}

// Select moves the selection, clamping it to the document.
func (d *Document) Select(sel content.Selection) {
	d.sel = d.clamp(sel)
	d.notify()
}

// Subscribe registers fn to run synchronously after every change.
// The returned function removes the subscription.
func (d *Document) Subscribe(fn func()) func() {
	id := d.nextSubID
	d.nextSubID++
	d.subscribers = append(d.subscribers, subscriber{id: id, fn: fn})
	return func() {
		d.subscribers = slices.DeleteFunc(d.subscribers, func(s subscriber) bool { return s.id == id })
	}
}

func (d *Document) notify() {
	for _, s := range d.subscribers {
		s.fn()
	}
}

func (d *Document) clamp(sel content.Selection) content.Selection {
	blocks := d.root.Content
	sel.Block = clampInt(sel.Block, 0, len(blocks)-1)
	block := blocks[sel.Block]

	if block.Type == content.NodeTable {
		sel.Row = clampInt(sel.Row, 0, len(block.Content)-1)
		sel.Col = clampInt(sel.Col, 0, len(block.Content[sel.Row].Content)-1)
	} else {
		sel.Row, sel.Col = 0, 0
	}

	n := 0
	if tb := d.textblock(sel); tb != nil {
		n = inlineLen(tb.Content)
	}
	sel.From = clampInt(sel.From, 0, n)
	sel.To = clampInt(sel.To, sel.From, n)
	return sel
}

// block returns the selected top-level block.
func (d *Document) block() *content.Node {
	return d.root.Content[d.sel.Block]
}

// cell returns the selected table cell, or nil outside tables.
func (d *Document) cell(sel content.Selection) *content.Node {
	block := d.root.Content[sel.Block]
	if block.Type != content.NodeTable {
		return nil
	}
	return block.Content[sel.Row].Content[sel.Col]
}

// textblock returns the paragraph or heading the selection is in: the
// selected block, or the first textblock of the selected cell.
func (d *Document) textblock(sel content.Selection) *content.Node {
	if cell := d.cell(sel); cell != nil {
		for _, c := range cell.Content {
			if c.IsTextblock() {
				return c
			}
		}
		return nil
	}
	if block := d.root.Content[sel.Block]; block.IsTextblock() {
		return block
	}
	return nil
}

// markRange is the selected range, or the whole textblock when it is empty.
func (d *Document) markRange(tb *content.Node) (int, int) {
	if d.sel.From < d.sel.To {
		return d.sel.From, d.sel.To
	}
	return 0, inlineLen(tb.Content)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
