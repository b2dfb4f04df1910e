package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/dmitrijs2005/ageguard/internal/server/policy"
)

// RestrictionService reads bundles, applies administrative overrides and
// answers age lookups.
type RestrictionService struct {
	d Deps
}

func NewRestrictionService(d Deps) *RestrictionService {
	return &RestrictionService{d: d.withDefaults()}
}

// AgeResult is the age for a birthdate plus the bundle that age implies.
type AgeResult struct {
	Age          int                       `json:"age"`
	IsMinor      bool                      `json:"isMinor"`
	Restrictions *models.RestrictionBundle `json:"restrictions"`
}

// Get returns the user's bundle, or nil when unrestricted.
func (s *RestrictionService) Get(ctx context.Context, userID string) (*models.RestrictionBundle, error) {
	return loadBundle(ctx, s.d.Repos.Restrictions(s.d.DB), userID, false)
}

// AccountStatus returns the purchasing switch, or nil when no consent was
// ever processed for the user.
func (s *RestrictionService) AccountStatus(ctx context.Context, userID string) (*models.AccountStatus, error) {
	st, err := s.d.Repos.Accounts(s.d.DB).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, persistence("load account status", err)
	}
	return st, nil
}

// Override replaces the user's bundle with b, bypassing the consent flow.
func (s *RestrictionService) Override(ctx context.Context, userID string, b *models.RestrictionBundle) (*models.RestrictionBundle, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: restrictions are required", common.ErrValidation)
	}
	if err := ValidateBundle(b); err != nil {
		return nil, err
	}

	out := *b
	out.UserID = userID
	out.Source = models.SourceOverride
	out.UpdatedAt = s.d.Clock.Now()

	if err := s.d.Repos.Restrictions(s.d.DB).Upsert(ctx, &out); err != nil {
		return nil, persistence("upsert restrictions", err)
	}
	s.d.Logger.Info(ctx, "restrictions overridden", "user_id", userID)
	return &out, nil
}

// CalculateAge parses a YYYY-MM-DD birthdate and resolves its default bundle.
func (s *RestrictionService) CalculateAge(birthDate string) (*AgeResult, error) {
	now := s.d.Clock.Now()
	birth, err := policy.ParseBirthDate(birthDate, now, s.d.Location)
	if err != nil {
		return nil, err
	}
	age := policy.CalculateAge(birth, now.In(s.d.Location))
	return &AgeResult{
		Age:          age,
		IsMinor:      age < policy.AdultAge,
		Restrictions: policy.Resolve(age),
	}, nil
}

// ValidateBundle rejects negative or unstorable limits, malformed clock
// times and windows that end before they start.
func ValidateBundle(b *models.RestrictionBundle) error {
	if b.DailySpendingLimit.IsNegative() || b.MonthlySpendingLimit.IsNegative() {
		return fmt.Errorf("%w: spending limits must not be negative", common.ErrValidation)
	}
	if !storableMoney(b.DailySpendingLimit) || !storableMoney(b.MonthlySpendingLimit) {
		return fmt.Errorf("%w: spending limits must have at most 2 decimal places and be below %s", common.ErrValidation, maxMoney)
	}
	for name, w := range map[string]models.TimeWindow{
		"weekday": b.TimeRestrictions.Weekday,
		"weekend": b.TimeRestrictions.Weekend,
	} {
		if !validClock(w.Start) || !validClock(w.End) {
			return fmt.Errorf("%w: %s window has an invalid clock time", common.ErrValidation, name)
		}
		if w.End.Encode() < w.Start.Encode() {
			return fmt.Errorf("%w: %s window ends before it starts", common.ErrValidation, name)
		}
	}
	if b.RequiredBreaks.ContinuousMinutes < 0 || b.RequiredBreaks.DailyMinutes < 0 {
		return fmt.Errorf("%w: break minutes must not be negative", common.ErrValidation)
	}
	return nil
}

func validClock(c models.ClockTime) bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}
