package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/dmitrijs2005/ageguard/internal/timex"
)

// TimeWindowGuard allows access only inside the bundle's weekday or weekend
// window, bounds included.
type TimeWindowGuard struct {
	d Deps
}

func NewTimeWindowGuard(d Deps) *TimeWindowGuard {
	return &TimeWindowGuard{d: d.withDefaults()}
}

func (g *TimeWindowGuard) Check(ctx context.Context, userID string) (*models.TimeDecision, error) {
	bundle, err := loadBundle(ctx, g.d.Repos.Restrictions(g.d.DB), userID, false)
	if err != nil {
		return nil, err
	}
	return g.evaluate(bundle, g.d.Clock.Now()), nil
}

func (g *TimeWindowGuard) evaluate(bundle *models.RestrictionBundle, now time.Time) *models.TimeDecision {
	if bundle == nil {
		return &models.TimeDecision{Allowed: true}
	}

	weekend := timex.IsWeekend(now, g.d.Location)
	window := bundle.WindowFor(weekend)
	current := models.ClockTimeOf(now, g.d.Location)

	d := &models.TimeDecision{Allowed: true, ActiveWindow: &window}
	if !window.Contains(current) {
		kind := "weekday"
		if weekend {
			kind = "weekend"
		}
		d.Allowed = false
		d.Violation = &models.Violation{
			Code:    models.ViolationOutsideWindow,
			Message: fmt.Sprintf("access is allowed only between %s and %s on a %s; it is now %s", window.Start, window.End, kind, current),
		}
	}
	return d
}
