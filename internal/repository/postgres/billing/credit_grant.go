package billing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"copydesk/internal/domain/models/store"
	"copydesk/internal/domain/repositories"
	"copydesk/internal/repository/postgres"
)

// PostgresCreditGrantRepository implements the CreditGrantRepository interface
type PostgresCreditGrantRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCreditGrantRepository creates a new credit grant repository
func NewCreditGrantRepository(config *postgres.RepositoryConfig) repositories.CreditGrantRepository {
	return &PostgresCreditGrantRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create records a credited charge
func (r *PostgresCreditGrantRepository) Create(ctx context.Context, grant *store.CreditGrant) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (shop, charge_id, package_id, tokens)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.CreditGrants)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		grant.Shop,
		grant.ChargeID,
		grant.PackageID,
		grant.Tokens,
	).Scan(&grant.ID, &grant.CreatedAt)

	if err != nil {
		return postgres.ConflictOr(err, "create credit grant", "credit_grant", grant.ChargeID,
			fmt.Sprintf("charge %s already credited", grant.ChargeID))
	}
	return nil
}

// ListByShop returns the grants of a shop, newest first
func (r *PostgresCreditGrantRepository) ListByShop(ctx context.Context, shop string) ([]store.CreditGrant, error) {
	query := fmt.Sprintf(`
		SELECT id, shop, charge_id, package_id, tokens, created_at
		FROM %s
		WHERE shop = $1
		ORDER BY created_at DESC
	`, r.tables.CreditGrants)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, shop)
	if err != nil {
		return nil, fmt.Errorf("list credit grants: %w", err)
	}
	defer rows.Close()

	var grants []store.CreditGrant
	for rows.Next() {
		var g store.CreditGrant
		if err := rows.Scan(&g.ID, &g.Shop, &g.ChargeID, &g.PackageID, &g.Tokens, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credit grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit grants: %w", err)
	}

	if grants == nil {
		grants = []store.CreditGrant{}
	}
	return grants, nil
}
