// Package queries loads artisan candidates from the configured backend.
package queries

import (
	"context"
	"errors"

	"artisan-workers/internal/models"
)

var (
	ErrIndexNotFound = errors.New("candidate index not found")
	ErrQueryFailed   = errors.New("candidate query failed")
)

// Source loads up to limit visible candidates.
type Source interface {
	Name() string
	Load(ctx context.Context, limit int) ([]models.Candidate, error)
}
