package service

import (
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

// lookupErr turns a missing row into a NotFound for resource and passes
// anything else through.
func lookupErr(resource string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return err
}

// writeErr wraps a failed create or update. A row that vanished mid-write is
// still reported as NotFound.
func writeErr(resource, message string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewPersistenceError(message, err)
}
