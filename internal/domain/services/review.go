package services

import (
	"context"

	"copydesk/internal/domain/models/batch"
	"copydesk/internal/domain/models/review"
	"copydesk/internal/domain/models/store"
)

// ReviewService is the per-product original vs. generated comparison
type ReviewService interface {
	// Open loads (or reuses) both editors of the product
	Open(ctx context.Context, shop, productID string) (*review.Review, error)

	Generate(ctx context.Context, shop, productID string, settings batch.Settings) (*review.Review, error)
	Publish(ctx context.Context, shop, productID string) (*review.Review, error)
}

// TemplateService lists and creates generation templates
type TemplateService interface {
	List(ctx context.Context, shop, pageType, contentType string) ([]store.Template, error)
	Create(ctx context.Context, shop string, req *store.CreateTemplateRequest) (*store.Template, error)
}

// CreditsService reads and tops up the shop's generation credits
type CreditsService interface {
	Get(ctx context.Context, shop string) (*store.Credits, error)
	Purchase(ctx context.Context, shop, packageID, returnURL string) (*store.Charge, error)
	Confirm(ctx context.Context, shop, packageID, chargeID string) (*store.Credits, error)

	// Grants lists the charges already credited, newest first
	Grants(ctx context.Context, shop string) ([]store.CreditGrant, error)
}
