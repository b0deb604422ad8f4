package memory

import "github.com/jackc/pgx/v5/pgconn"

// Constraint violations are reported as *pgconn.PgError so callers handle
// both backends the same way.

func errDuplicate(constraint string) error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint", ConstraintName: constraint}
}

func errForeignKey(constraint string) error {
	return &pgconn.PgError{Code: "23503", Message: "insert violates foreign key constraint", ConstraintName: constraint}
}
