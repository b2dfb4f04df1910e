package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/dbx"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxDescriptionLen = 255

// SpendingGuard enforces the daily and monthly caps of a bundle.
type SpendingGuard struct {
	d      Deps
	ledger *QuotaLedger
}

func NewSpendingGuard(d Deps) *SpendingGuard {
	d = d.withDefaults()
	return &SpendingGuard{d: d, ledger: NewQuotaLedger(d.Repos, d.Location)}
}

// RecordResult is the outcome of Record. Record is nil when the spend was denied.
type RecordResult struct {
	Decision *models.SpendingDecision `json:"decision"`
	Record   *models.SpendingRecord   `json:"record,omitempty"`
}

// Check evaluates amount against the user's caps without writing anything.
func (g *SpendingGuard) Check(ctx context.Context, userID string, amount decimal.Decimal) (*models.SpendingDecision, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	bundle, err := loadBundle(ctx, g.d.Repos.Restrictions(g.d.DB), userID, false)
	if err != nil {
		return nil, err
	}
	return g.evaluate(ctx, g.d.DB, bundle, userID, amount, g.d.Clock.Now())
}

// Record checks amount and appends it to the ledger in one transaction. The
// user's bundle row stays locked until commit, so concurrent spends for
// the same user are evaluated one after another. A denied spend writes
// nothing and is not an error. The account purchasing switch is not
// consulted here; callers enforce it before recording.
func (g *SpendingGuard) Record(ctx context.Context, userID string, amount decimal.Decimal, description string) (*RecordResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if len(description) > maxDescriptionLen {
		return nil, fmt.Errorf("%w: description longer than %d bytes", common.ErrValidation, maxDescriptionLen)
	}

	var res RecordResult
	err := dbx.WithTx(ctx, g.d.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		now := g.d.Clock.Now()

		bundle, err := loadBundle(ctx, g.d.Repos.Restrictions(tx), userID, true)
		if err != nil {
			return err
		}
		decision, err := g.evaluate(ctx, tx, bundle, userID, amount, now)
		if err != nil {
			return err
		}
		res.Decision = decision
		if !decision.Allowed {
			return nil
		}

		rec := &models.SpendingRecord{
			ID:                   uuid.NewString(),
			UserID:               userID,
			Amount:               amount,
			Description:          description,
			TransactionTimestamp: now,
		}
		if err := g.d.Repos.Spending(tx).Append(ctx, rec); err != nil {
			return persistence("append spending record", err)
		}
		res.Record = rec

		if u := decision.CurrentUsage; u != nil {
			u.Daily = u.Daily.Add(amount)
			u.Monthly = u.Monthly.Add(amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Record != nil {
		g.d.Logger.Info(ctx, "spend recorded", "user_id", userID, "amount", amount.String(), "record_id", res.Record.ID)
	} else {
		g.d.Logger.Info(ctx, "spend denied", "user_id", userID, "amount", amount.String(), "code", res.Decision.Violation.Code)
	}
	return &res, nil
}

func (g *SpendingGuard) evaluate(ctx context.Context, db dbx.DBTX, bundle *models.RestrictionBundle, userID string, amount decimal.Decimal, now time.Time) (*models.SpendingDecision, error) {
	if bundle == nil {
		return &models.SpendingDecision{Allowed: true}, nil
	}
	usage, err := g.ledger.Totals(ctx, db, userID, now)
	if err != nil {
		return nil, err
	}
	return decideSpend(bundle, usage, amount), nil
}

// decideSpend applies the caps: daily first, then monthly. Reaching a cap
// exactly is allowed.
func decideSpend(b *models.RestrictionBundle, usage models.Usage, amount decimal.Decimal) *models.SpendingDecision {
	d := &models.SpendingDecision{Allowed: true, CurrentUsage: &usage}

	switch {
	case usage.Daily.Add(amount).GreaterThan(b.DailySpendingLimit):
		d.Allowed = false
		d.Violation = &models.Violation{
			Code: models.ViolationDailyLimit,
			Message: fmt.Sprintf("daily spending limit of %s would be exceeded: %s spent today, %s requested",
				b.DailySpendingLimit, usage.Daily, amount),
		}
	case usage.Monthly.Add(amount).GreaterThan(b.MonthlySpendingLimit):
		d.Allowed = false
		d.Violation = &models.Violation{
			Code: models.ViolationMonthlyLimit,
			Message: fmt.Sprintf("monthly spending limit of %s would be exceeded: %s spent this month, %s requested",
				b.MonthlySpendingLimit, usage.Monthly, amount),
		}
	}
	return d
}

// maxMoney bounds amounts and limits to what NUMERIC(14,2) stores.
var maxMoney = decimal.New(1, 12)

// storableMoney reports whether d fits NUMERIC(14,2) without rounding.
func storableMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2)) && d.Abs().LessThan(maxMoney)
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", common.ErrValidation)
	}
	if !storableMoney(amount) {
		return fmt.Errorf("%w: amount must have at most 2 decimal places and be below %s", common.ErrValidation, maxMoney)
	}
	return nil
}

// ParseAmount parses a decimal amount given as text. An empty string is a
// validation error.
func ParseAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: amount is required", common.ErrValidation)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: amount is not a number", common.ErrValidation)
	}
	if err := validateAmount(amount); err != nil {
		return decimal.Decimal{}, err
	}
	return amount, nil
}
