// Package editor implements the dual-mode editor: a structured document
// edited through toolbar commands, and a raw HTML buffer edited as text.
package editor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models/content"
	"copydesk/internal/domain/services"
	"copydesk/internal/notify"
	"copydesk/internal/service/editor/document"
	"copydesk/internal/service/editor/sanitizer"
)

// Controller owns one document and switches it between structured and raw
// editing. Exactly one representation is authoritative at a time: the
// document in structured mode, the raw buffer in raw mode. The other is
// regenerated in full at every toggle.
//
// Safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	id        string
	role      content.Role
	productID string
	readOnly  bool

	doc  *document.Document
	mode content.Mode
	raw  string
	// What the raw buffer held when raw mode was entered
	lastStructured string
	toolbar        content.ToolbarState

	analyzer services.ContentAnalyzer
	notifier notify.Notifier
}

// Options configures a new Controller.
type Options struct {
	ID        string
	Role      content.Role
	ProductID string
	HTML      string
	ReadOnly  bool
	Analyzer  services.ContentAnalyzer
	Notifier  notify.Notifier
}

// NewController creates a controller in structured mode holding opts.HTML.
func NewController(opts Options) *Controller {
	c := &Controller{
		id:        opts.ID,
		role:      opts.Role,
		productID: opts.ProductID,
		readOnly:  opts.ReadOnly,
		doc:       document.New(opts.HTML),
		mode:      content.ModeStructured,
		analyzer:  opts.Analyzer,
		notifier:  opts.Notifier,
	}
	c.toolbar = computeToolbar(c.doc, c.mode)
	c.doc.Subscribe(func() {
		c.toolbar = computeToolbar(c.doc, c.mode)
	})
	return c
}

func (c *Controller) ID() string         { return c.id }
func (c *Controller) Role() content.Role { return c.role }
func (c *Controller) ProductID() string  { return c.productID }

// Mode returns the current editing mode.
func (c *Controller) Mode() content.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Toggle switches modes.
//
// Structured to raw snapshots the document HTML, pretty-printed, into the
// raw buffer and disables the toolbar. Raw to structured imports the buffer,
// sanitized, only if it differs from that snapshot; an unchanged buffer
// leaves the document untouched.
func (c *Controller) Toggle() content.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case content.ModeStructured:
		c.raw = sanitizer.PrettyPrint(c.doc.HTML())
		c.lastStructured = c.raw
		c.mode = content.ModeRaw
	case content.ModeRaw:
		c.mode = content.ModeStructured
		if c.raw != c.lastStructured {
			c.doc.SetContent(importable(c.raw))
		}
		c.raw, c.lastStructured = "", ""
	}
	c.toolbar = computeToolbar(c.doc, c.mode)
	return c.mode
}

// importable sanitizes raw HTML, substituting the placeholder paragraph when
// nothing is left.
func importable(raw string) string {
	clean := sanitizer.Sanitize(raw)
	if strings.TrimSpace(clean) == "" {
		return content.PlaceholderHTML
	}
	return clean
}

// SetRaw replaces the raw buffer. Only valid in raw mode.
func (c *Controller) SetRaw(html string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkWritable(); err != nil {
		return err
	}
	if c.mode != content.ModeRaw {
		return fmt.Errorf("%w: raw HTML can only be edited in raw mode", domain.ErrValidation)
	}
	c.raw = html
	return nil
}

// SetContent replaces the document, leaving raw mode if active.
func (c *Controller) SetContent(html string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = content.ModeStructured
	c.raw, c.lastStructured = "", ""
	c.doc.SetContent(html)
}

// Content returns the authoritative HTML: the document in structured mode,
// the sanitized raw buffer in raw mode.
func (c *Controller) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contentLocked()
}

func (c *Controller) contentLocked() string {
	if c.mode == content.ModeRaw {
		return importable(c.raw)
	}
	return c.doc.HTML()
}

// Select moves the document selection.
func (c *Controller) Select(sel content.Selection) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == content.ModeRaw {
		return fmt.Errorf("%w: selection is unavailable in raw mode", domain.ErrValidation)
	}
	c.doc.Select(sel)
	return nil
}

// Apply runs a toolbar command, then refocuses the document. Commands are
// rejected in raw mode and when the toolbar shows them disabled.
func (c *Controller) Apply(name string, args map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(name, args)
}

func (c *Controller) applyLocked(name string, args map[string]any) error {
	if err := c.checkWritable(); err != nil {
		return err
	}
	if c.mode == content.ModeRaw {
		return fmt.Errorf("%w: toolbar is disabled in raw mode", domain.ErrValidation)
	}

	cmd, err := document.ParseCommand(name)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if !c.doc.Can(cmd) {
		return fmt.Errorf("%w: %s is not available for the selection", domain.ErrValidation, name)
	}
	if err := c.doc.Execute(cmd, args); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return c.doc.Execute(document.CmdFocus, nil)
}

// InsertImage embeds an uploaded image as a data URL image node. Files that
// are not images are rejected with a warning notice. Each upload is
// independent, so the same file may be inserted again.
func (c *Controller) InsertImage(ctx context.Context, filename string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkWritable(); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: image file is empty", domain.ErrValidation)
	}

	src, mimeType, ok := imageDataURL(data)
	if !ok {
		c.notify(ctx, notify.LevelWarning, "Please select an image file")
		return fmt.Errorf("%w: %s is not an image (%s)", domain.ErrValidation, filename, mimeType)
	}
	return c.applyLocked(string(document.CmdInsertImage), map[string]any{
		"src": src,
		"alt": altFromFilename(filename),
	})
}

// InsertVideo embeds a video URL as an iframe node.
func (c *Controller) InsertVideo(ctx context.Context, rawURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkWritable(); err != nil {
		return err
	}
	src, ok := embedURL(rawURL)
	if !ok {
		c.notify(ctx, notify.LevelWarning, "Please enter a valid video URL")
		return fmt.Errorf("%w: invalid video URL", domain.ErrValidation)
	}
	return c.applyLocked(string(document.CmdInsertVideo), map[string]any{"src": src})
}

// Snapshot returns the externally visible state.
func (c *Controller) Snapshot() *content.EditorSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	html := c.contentLocked()
	snap := &content.EditorSnapshot{
		ID:        c.id,
		Role:      c.role,
		ProductID: c.productID,
		Mode:      c.mode,
		HTML:      html,
		Selection: c.doc.Selection(),
		Toolbar:   c.toolbar,
	}
	if c.mode == content.ModeRaw {
		snap.Raw = c.raw
	} else {
		snap.Document = c.doc.Root()
	}
	if c.analyzer != nil {
		snap.WordCount = c.analyzer.CountWords(html)
	}
	return snap
}

func (c *Controller) checkWritable() error {
	if c.readOnly {
		return fmt.Errorf("%w: %s editor is read-only", domain.ErrValidation, c.role)
	}
	return nil
}

func (c *Controller) notify(ctx context.Context, level notify.Level, message string) {
	if c.notifier != nil {
		c.notifier.Show(ctx, level, message)
	}
}
