package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"copydesk/internal/domain"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint violation
const pgUniqueViolation = "23505"

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// NotFoundOr maps a missing row of resource id to a NotFoundError and wraps
// any other error with op.
func NotFoundOr(err error, op, resource, id string) error {
	if IsPgNoRowsError(err) {
		return &domain.NotFoundError{Message: fmt.Sprintf("%s %s not found", resource, id)}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ConflictOr maps a unique violation on resource id to a ConflictError and
// wraps any other error with op.
func ConflictOr(err error, op, resourceType, id, message string) error {
	if IsPgDuplicateError(err) {
		return &domain.ConflictError{
			Message:      message,
			ResourceType: resourceType,
			ResourceID:   id,
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
