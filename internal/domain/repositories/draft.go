package repositories

import (
	"context"

	"copydesk/internal/domain/models/review"
)

// DraftRepository stores merchant-edited generated content per product
type DraftRepository interface {
	// Get returns the draft for a product, or domain.ErrNotFound
	Get(ctx context.Context, shop, productID string) (*review.Draft, error)

	// Upsert creates the draft or replaces its HTML and settings.
	// Editing a published draft clears its published_at.
	Upsert(ctx context.Context, draft *review.Draft) error

	// MarkPublished stamps published_at on the draft
	MarkPublished(ctx context.Context, shop, productID string) error
}

// PublishLogRepository is the append-only history of publishes
type PublishLogRepository interface {
	Append(ctx context.Context, record *review.PublishRecord) error

	// ListByProduct returns the newest records first, at most limit
	ListByProduct(ctx context.Context, shop, productID string, limit int) ([]review.PublishRecord, error)
}
