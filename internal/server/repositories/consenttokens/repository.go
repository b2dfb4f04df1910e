// Package consenttokens declares storage for parental consent tokens.
// Tokens are keyed by the hash of the opaque value and never deleted.
package consenttokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.ConsentToken) error

	// FindByHashForUpdate returns the token row locked for the rest of the
	// transaction, or common.ErrorNotFound.
	FindByHashForUpdate(ctx context.Context, hash string) (*models.ConsentToken, error)

	// MarkProcessed records the decision and sets is_used.
	MarkProcessed(ctx context.Context, id string, decision models.ConsentDecision, processedAt time.Time) error

	// SupersedePending marks every unused, not yet superseded token of the
	// child as superseded and returns how many were touched.
	SupersedePending(ctx context.Context, childUserID string, at time.Time) (int64, error)
}
