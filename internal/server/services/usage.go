package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/server/models"
)

// DefaultBreakSuggestion is the break offered when continuous use is exceeded.
const DefaultBreakSuggestion = 15 * time.Minute

// ContinuousUsageGuard denies once the active session has lasted the
// bundle's continuous-use threshold. It never ends or rotates sessions.
type ContinuousUsageGuard struct {
	d            Deps
	sessions     *SessionStore
	breakMinutes int
}

func NewContinuousUsageGuard(d Deps, sessions *SessionStore, breakSuggestion time.Duration) *ContinuousUsageGuard {
	if breakSuggestion <= 0 {
		breakSuggestion = DefaultBreakSuggestion
	}
	return &ContinuousUsageGuard{
		d:            d.withDefaults(),
		sessions:     sessions,
		breakMinutes: int(breakSuggestion / time.Minute),
	}
}

func (g *ContinuousUsageGuard) Check(ctx context.Context, userID string) (*models.UsageDecision, error) {
	bundle, err := loadBundle(ctx, g.d.Repos.Restrictions(g.d.DB), userID, false)
	if err != nil {
		return nil, err
	}
	return g.evaluate(ctx, bundle, userID, g.d.Clock.Now())
}

func (g *ContinuousUsageGuard) evaluate(ctx context.Context, bundle *models.RestrictionBundle, userID string, now time.Time) (*models.UsageDecision, error) {
	if bundle == nil {
		return &models.UsageDecision{Allowed: true}, nil
	}
	sess, err := g.sessions.CurrentActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return &models.UsageDecision{Allowed: true}, nil
	}

	elapsed := sess.ElapsedMinutes(now)
	d := &models.UsageDecision{Allowed: true, ElapsedMinutes: elapsed}

	// A zero threshold disables the break rule.
	threshold := bundle.RequiredBreaks.ContinuousMinutes
	if threshold > 0 && elapsed >= threshold {
		d.Allowed = false
		d.SuggestedBreakMinutes = g.breakMinutes
		d.Violation = &models.Violation{
			Code: models.ViolationContinuousUsage,
			Message: fmt.Sprintf("continuous use limit of %d minutes reached after %d minutes; take a %d minute break",
				threshold, elapsed, g.breakMinutes),
		}
	}
	return d, nil
}
