// Package spending declares the append-only spend ledger.
package spending

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/server/models"
)

// Period is a half-open time range [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// Repository reads and appends ledger entries. Entries are never updated
// or deleted.
type Repository interface {
	// Totals sums the user's spend inside day and inside month. day must lie
	// within month.
	Totals(ctx context.Context, userID string, day, month Period) (models.Usage, error)

	// Append inserts rec. rec.ID must already be set.
	Append(ctx context.Context, rec *models.SpendingRecord) error
}
