// Package services contains the compliance core: the guards that enforce a
// minor's restriction bundle, the session store they read, and the parental
// consent workflow that writes bundles.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/clock"
	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/logging"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/restrictions"
)

// Deps are the collaborators every service shares. Location is the
// reference calendar for days, months and weekends.
type Deps struct {
	DB       *sql.DB
	Repos    repomanager.RepositoryManager
	Clock    clock.Clock
	Location *time.Location
	Logger   logging.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	return d
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrPersistence, op, err)
}

// loadBundle returns the user's bundle, or nil when the user has none.
func loadBundle(ctx context.Context, repo restrictions.Repository, userID string, forUpdate bool) (*models.RestrictionBundle, error) {
	var (
		b   *models.RestrictionBundle
		err error
	)
	if forUpdate {
		b, err = repo.GetForUpdate(ctx, userID)
	} else {
		b, err = repo.Get(ctx, userID)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, persistence("load restrictions", err)
	}
	return b, nil
}
