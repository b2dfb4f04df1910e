// Package accounts stores the purchasing switch of each account.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/server/models"
)

type Repository interface {
	// Get returns the status or common.ErrorNotFound when consent was never processed.
	Get(ctx context.Context, userID string) (*models.AccountStatus, error)
	SetPurchasing(ctx context.Context, userID string, enabled bool, at time.Time) error
}
