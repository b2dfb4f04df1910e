package services

import (
	"context"

	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/shopspring/decimal"
)

// RestrictionChecker runs every applicable guard and reports all
// violations at once. Any read failure is returned as an error, never as
// an allow.
type RestrictionChecker struct {
	d        Deps
	time     *TimeWindowGuard
	usage    *ContinuousUsageGuard
	spending *SpendingGuard
}

func NewRestrictionChecker(d Deps, tw *TimeWindowGuard, cu *ContinuousUsageGuard, sg *SpendingGuard) *RestrictionChecker {
	return &RestrictionChecker{d: d.withDefaults(), time: tw, usage: cu, spending: sg}
}

// Check evaluates the time window, then continuous use, then spending when
// amount is non-nil. The bundle is read once for all guards.
func (c *RestrictionChecker) Check(ctx context.Context, userID string, amount *decimal.Decimal) (*models.AggregateResult, error) {
	if amount != nil {
		if err := validateAmount(*amount); err != nil {
			return nil, err
		}
	}

	bundle, err := loadBundle(ctx, c.d.Repos.Restrictions(c.d.DB), userID, false)
	if err != nil {
		return nil, err
	}
	now := c.d.Clock.Now()
	res := &models.AggregateResult{Violations: []models.Violation{}, CheckedAt: now}

	if td := c.time.evaluate(bundle, now); td.Violation != nil {
		res.Violations = append(res.Violations, *td.Violation)
	}

	ud, err := c.usage.evaluate(ctx, bundle, userID, now)
	if err != nil {
		return nil, err
	}
	if ud.Violation != nil {
		res.Violations = append(res.Violations, *ud.Violation)
	}

	if amount != nil {
		sd, err := c.spending.evaluate(ctx, c.d.DB, bundle, userID, *amount, now)
		if err != nil {
			return nil, err
		}
		if sd.Violation != nil {
			res.Violations = append(res.Violations, *sd.Violation)
		}
		res.CurrentUsage = sd.CurrentUsage
	}

	res.Allowed = len(res.Violations) == 0
	return res, nil
}
