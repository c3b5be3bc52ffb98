package review

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"copydesk/internal/domain"
	"copydesk/internal/domain/models/review"
	"copydesk/internal/domain/repositories"
	"copydesk/internal/repository/postgres"
)

// PostgresDraftRepository implements the DraftRepository interface
type PostgresDraftRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(config *postgres.RepositoryConfig) repositories.DraftRepository {
	return &PostgresDraftRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get retrieves the draft of a product
func (r *PostgresDraftRepository) Get(ctx context.Context, shop, productID string) (*review.Draft, error) {
	query := fmt.Sprintf(`
		SELECT id, shop, product_id, html, settings, published_at, created_at, updated_at
		FROM %s
		WHERE shop = $1 AND product_id = $2
	`, r.tables.Drafts)

	var draft review.Draft
	var settings []byte
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, shop, productID).Scan(
		&draft.ID,
		&draft.Shop,
		&draft.ProductID,
		&draft.HTML,
		&settings,
		&draft.PublishedAt,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.NotFoundOr(err, "get draft", "draft", productID)
	}

	if err := json.Unmarshal(settings, &draft.Settings); err != nil {
		return nil, fmt.Errorf("decode draft settings: %w", err)
	}
	return &draft, nil
}

// Upsert creates or replaces the draft of a product. Changing the HTML
// clears published_at.
func (r *PostgresDraftRepository) Upsert(ctx context.Context, draft *review.Draft) error {
	settings, err := json.Marshal(draft.Settings)
	if err != nil {
		return fmt.Errorf("encode draft settings: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS d (shop, product_id, html, settings)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (shop, product_id) DO UPDATE
		SET html = EXCLUDED.html,
		    settings = EXCLUDED.settings,
		    updated_at = now(),
		    published_at = CASE WHEN d.html = EXCLUDED.html THEN d.published_at ELSE NULL END
		RETURNING id, published_at, created_at, updated_at
	`, r.tables.Drafts)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		draft.Shop,
		draft.ProductID,
		draft.HTML,
		settings,
	).Scan(&draft.ID, &draft.PublishedAt, &draft.CreatedAt, &draft.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

// MarkPublished stamps published_at on the draft of a product
func (r *PostgresDraftRepository) MarkPublished(ctx context.Context, shop, productID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET published_at = now()
		WHERE shop = $1 AND product_id = $2
	`, r.tables.Drafts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, shop, productID)
	if err != nil {
		return fmt.Errorf("mark draft published: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("draft %s: %w", productID, domain.ErrNotFound)
	}
	return nil
}
