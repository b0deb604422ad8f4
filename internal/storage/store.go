// Package storage keeps résumé files in a private bucket and hands out
// short-lived signed links to them.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when a path has no stored object.
var ErrObjectNotFound = errors.New("storage: object not found")

// ResumeStore persists résumé objects under opaque paths.
type ResumeStore interface {
	Upload(ctx context.Context, path string, reader io.Reader, size int64, contentType string) error
	// SignedURL returns a fresh time-limited GET link. It is never cached.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	// Delete removes path; a missing object is not an error.
	Delete(ctx context.Context, path string) error
	Ping(ctx context.Context) error
}
