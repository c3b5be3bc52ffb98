package services

import (
	"context"

	"copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/store"
)

// GenerationBackend is the external content-generation and billing backend.
// Every method returns a *domain.UpstreamError when the call fails or the
// backend reports an unsuccessful result.
type GenerationBackend interface {
	// ProductRecords looks up last-update time and generated content per id
	ProductRecords(ctx context.Context, shop string, productIDs []string) ([]store.ProductRecord, error)

	Templates(ctx context.Context, shop, pageType, contentType string) ([]store.Template, error)
	CreateTemplate(ctx context.Context, shop string, req *store.CreateTemplateRequest) (*store.Template, error)

	// Generate produces the description for one product. The returned HTML
	// has newlines already converted to <br/>.
	Generate(ctx context.Context, shop, productID string, settings batch.Settings) (string, error)

	SubmitBatch(ctx context.Context, shop string, productIDs []string, settings batch.Settings) (*batch.Job, error)
	Progress(ctx context.Context, shop string) (*batch.Job, error)
	StopBatch(ctx context.Context, shop string) error

	Credits(ctx context.Context, shop string) (*store.Credits, error)
	AddCredits(ctx context.Context, shop string, tokens int) (*store.Credits, error)

	// Publish writes the body back to the catalog product
	Publish(ctx context.Context, shop, productID, body, contentType string) error
}

// CatalogGateway is the platform's authenticated GraphQL Admin API.
type CatalogGateway interface {
	Products(ctx context.Context, shop string, req store.PageRequest) (*store.Page[store.Product], error)
	Collections(ctx context.Context, shop string, req store.PageRequest) (*store.Page[store.Collection], error)
	Product(ctx context.Context, shop, productID string) (*store.Product, error)

	// CreateCharge starts a one-time purchase the merchant must approve at
	// the returned confirmation URL.
	CreateCharge(ctx context.Context, shop string, req ChargeRequest) (*store.Charge, error)
	Charge(ctx context.Context, shop, chargeID string) (*store.Charge, error)
}

// ChargeRequest describes a one-time purchase.
type ChargeRequest struct {
	Name      string
	Amount    float64
	Currency  string
	ReturnURL string
	Test      bool
}
