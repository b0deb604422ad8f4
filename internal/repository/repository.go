package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// checkID rejects malformed identifiers before they reach a uuid column,
// so callers see a not-found instead of a query error.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return pgx.ErrNoRows
	}
	return nil
}
