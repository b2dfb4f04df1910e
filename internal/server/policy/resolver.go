package policy

import (
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/shopspring/decimal"
)

const (
	AdultAge     = 18
	OlderTeenAge = 16
	breakMinutes = 60
	dailyUseCap  = 180
)

var (
	youngDaily   = decimal.NewFromInt(1000)
	youngMonthly = decimal.NewFromInt(5000)
	teenDaily    = decimal.NewFromInt(2000)
	teenMonthly  = decimal.NewFromInt(10000)

	weekdayWindow = models.TimeWindow{
		Start: models.ClockTime{Hour: 6},
		End:   models.ClockTime{Hour: 22},
	}
	weekendWindow = models.TimeWindow{
		Start: models.ClockTime{Hour: 6},
		End:   models.ClockTime{Hour: 23},
	}
)

// Resolve returns the default bundle for age, or nil for adults.
func Resolve(age int) *models.RestrictionBundle {
	if age >= AdultAge {
		return nil
	}

	b := &models.RestrictionBundle{
		DailySpendingLimit:   youngDaily,
		MonthlySpendingLimit: youngMonthly,
		TimeRestrictions: models.TimeRestrictions{
			Weekday: weekdayWindow,
			Weekend: weekendWindow,
		},
		RequiredBreaks: models.RequiredBreaks{
			ContinuousMinutes: breakMinutes,
			DailyMinutes:      dailyUseCap,
		},
	}
	if age >= OlderTeenAge {
		b.DailySpendingLimit = teenDaily
		b.MonthlySpendingLimit = teenMonthly
	}
	return b
}

// Merge returns a copy of defaults with every non-nil override field
// replacing the matching field wholesale. A nil defaults yields nil.
func Merge(defaults *models.RestrictionBundle, o *models.RestrictionOverrides) *models.RestrictionBundle {
	if defaults == nil {
		return nil
	}
	out := *defaults
	if o == nil {
		return &out
	}
	if o.MonthlySpendingLimit != nil {
		out.MonthlySpendingLimit = *o.MonthlySpendingLimit
	}
	if o.DailySpendingLimit != nil {
		out.DailySpendingLimit = *o.DailySpendingLimit
	}
	if o.TimeRestrictions != nil {
		out.TimeRestrictions = *o.TimeRestrictions
	}
	if o.RequiredBreaks != nil {
		out.RequiredBreaks = *o.RequiredBreaks
	}
	return &out
}
