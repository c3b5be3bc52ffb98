package review

import (
	"time"

	"copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/content"
)

// Draft is the merchant-edited generated content of one product, kept until
// it is published back to the catalog.
type Draft struct {
	ID          string         `json:"id" db:"id"`
	Shop        string         `json:"shop" db:"shop"`
	ProductID   string         `json:"product_id" db:"product_id"`
	HTML        string         `json:"html" db:"html"`
	Settings    batch.Settings `json:"settings" db:"settings"` // JSONB
	PublishedAt *time.Time     `json:"published_at" db:"published_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// PublishRecord is one entry of the publish history.
type PublishRecord struct {
	ID          string    `json:"id" db:"id"`
	Shop        string    `json:"shop" db:"shop"`
	ProductID   string    `json:"product_id" db:"product_id"`
	ContentType string    `json:"content_type" db:"content_type"`
	Body        string    `json:"body" db:"body"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Review is the side-by-side original vs. generated view of one product.
type Review struct {
	ProductID   string                 `json:"product_id"`
	Title       string                 `json:"title"`
	ImageURL    string                 `json:"image_url"`
	GeneratedAt string                 `json:"generated_at"`
	Original    content.EditorSnapshot `json:"original"`
	Generated   content.EditorSnapshot `json:"generated"`
	Settings    *batch.Settings        `json:"settings,omitempty"`
	PublishedAt *time.Time             `json:"published_at,omitempty"`
	History     []PublishRecord        `json:"history"`
}
