package repositories

import (
	"context"

	"copydesk/internal/domain/models/store"
)

// CreditGrantRepository records which approved charges were already credited
type CreditGrantRepository interface {
	// Create inserts the grant. Returns *domain.ConflictError when the charge
	// has been credited before.
	Create(ctx context.Context, grant *store.CreditGrant) error

	ListByShop(ctx context.Context, shop string) ([]store.CreditGrant, error)
}
