package review

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"copydesk/internal/domain/models/review"
	"copydesk/internal/domain/repositories"
	"copydesk/internal/repository/postgres"
)

// PostgresPublishLogRepository implements the PublishLogRepository interface
type PostgresPublishLogRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewPublishLogRepository creates a new publish log repository
func NewPublishLogRepository(config *postgres.RepositoryConfig) repositories.PublishLogRepository {
	return &PostgresPublishLogRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Append records a publish
func (r *PostgresPublishLogRepository) Append(ctx context.Context, record *review.PublishRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (shop, product_id, content_type, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, r.tables.PublishLog)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		record.Shop,
		record.ProductID,
		record.ContentType,
		record.Body,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("append publish record: %w", err)
	}
	return nil
}

// ListByProduct returns the newest publishes of a product first
func (r *PostgresPublishLogRepository) ListByProduct(ctx context.Context, shop, productID string, limit int) ([]review.PublishRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, shop, product_id, content_type, body, created_at
		FROM %s
		WHERE shop = $1 AND product_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, r.tables.PublishLog)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, shop, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list publish records: %w", err)
	}
	defer rows.Close()

	var records []review.PublishRecord
	for rows.Next() {
		var rec review.PublishRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Shop,
			&rec.ProductID,
			&rec.ContentType,
			&rec.Body,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan publish record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publish records: %w", err)
	}

	if records == nil {
		records = []review.PublishRecord{}
	}
	return records, nil
}
