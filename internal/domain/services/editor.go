package services

import (
	"context"

	"copydesk/internal/domain/models/content"
)

// EditorService addresses the dual-mode editors a shop has open
type EditorService interface {
	Get(ctx context.Context, shop, editorID string) (*content.EditorSnapshot, error)

	// Toggle switches between structured and raw editing
	Toggle(ctx context.Context, shop, editorID string) (*content.EditorSnapshot, error)

	// SetRaw replaces the raw buffer. Only valid in raw mode.
	SetRaw(ctx context.Context, shop, editorID, html string) (*content.EditorSnapshot, error)

	// Select moves the selection commands apply to
	Select(ctx context.Context, shop, editorID string, sel content.Selection) (*content.EditorSnapshot, error)

	// Apply runs a toolbar command against the document
	Apply(ctx context.Context, shop, editorID, command string, args map[string]any) (*content.EditorSnapshot, error)

	InsertImage(ctx context.Context, shop, editorID, filename string, data []byte) (*content.EditorSnapshot, error)
	InsertVideo(ctx context.Context, shop, editorID, url string) (*content.EditorSnapshot, error)
}
