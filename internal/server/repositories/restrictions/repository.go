// Package restrictions declares the repository contract for per-user
// restriction bundles.
package restrictions

import (
	"context"

	"github.com/dmitrijs2005/ageguard/internal/server/models"
)

// Repository stores at most one bundle per user.
type Repository interface {
	// Get returns the user's bundle or common.ErrorNotFound.
	Get(ctx context.Context, userID string) (*models.RestrictionBundle, error)

	// GetForUpdate is Get with the row locked until the surrounding
	// transaction ends. It must be called on a transactional DBTX.
	GetForUpdate(ctx context.Context, userID string) (*models.RestrictionBundle, error)

	// Upsert replaces the user's bundle wholesale.
	Upsert(ctx context.Context, b *models.RestrictionBundle) error
}
