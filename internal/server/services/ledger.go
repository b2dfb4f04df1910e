package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/dbx"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/spending"
	"github.com/dmitrijs2005/ageguard/internal/timex"
)

// QuotaLedger derives daily and monthly spend from the ledger. Nothing is
// cached; every call reads the store.
type QuotaLedger struct {
	repos repomanager.RepositoryManager
	loc   *time.Location
}

func NewQuotaLedger(repos repomanager.RepositoryManager, loc *time.Location) *QuotaLedger {
	return &QuotaLedger{repos: repos, loc: loc}
}

// Totals sums the user's spend for now's calendar day and month in the
// reference location. db may be a transaction.
func (l *QuotaLedger) Totals(ctx context.Context, db dbx.DBTX, userID string, now time.Time) (models.Usage, error) {
	dayFrom, dayTo := timex.DayBounds(now, l.loc)
	monthFrom, monthTo := timex.MonthBounds(now, l.loc)

	u, err := l.repos.Spending(db).Totals(ctx, userID,
		spending.Period{From: dayFrom, To: dayTo},
		spending.Period{From: monthFrom, To: monthTo},
	)
	if err != nil {
		return models.Usage{}, persistence("read spending totals", err)
	}
	return u, nil
}
