// Package sessions declares storage for usage sessions. The schema allows
// at most one active session per user.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/server/models"
)

type Repository interface {
	// Create inserts an active session. A second active session for the same
	// user fails with a unique violation (see dbx.IsUniqueViolation).
	Create(ctx context.Context, s *models.Session) error

	// FindActive returns the user's active session or common.ErrorNotFound.
	FindActive(ctx context.Context, userID string) (*models.Session, error)

	// FindByID returns the session or common.ErrorNotFound.
	FindByID(ctx context.Context, id string) (*models.Session, error)

	// Close ends an active session at endTime. It reports false when the
	// session was already closed.
	Close(ctx context.Context, id string, endTime time.Time) (bool, error)
}
