// Package models holds the records persisted by the ageguard server and the
// decision values its guards return.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BundleSource records who wrote a RestrictionBundle.
type BundleSource string

const (
	SourceConsent  BundleSource = "consent"
	SourceOverride BundleSource = "override"
)

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" in 24-hour form.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ClockTimeOf returns the time of day of t in loc.
func ClockTimeOf(t time.Time, loc *time.Location) ClockTime {
	t = t.In(loc)
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

// Encode returns hour*100+minute, so 06:00 is 600 and 22:01 is 2201.
func (c ClockTime) Encode() int {
	return c.Hour*100 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TimeWindow is an inclusive access window within one day.
type TimeWindow struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

// Contains reports whether c lies inside the window, bounds included.
func (w TimeWindow) Contains(c ClockTime) bool {
	v := c.Encode()
	return v >= w.Start.Encode() && v <= w.End.Encode()
}

func (w TimeWindow) String() string {
	return w.Start.String() + "-" + w.End.String()
}

type TimeRestrictions struct {
	Weekday TimeWindow `json:"weekday"`
	Weekend TimeWindow `json:"weekend"`
}

type RequiredBreaks struct {
	// ContinuousMinutes is the longest allowed session; 0 turns the rule off.
	ContinuousMinutes int `json:"continuousMinutes"`
	// DailyMinutes is reported to clients but not enforced by any guard.
	DailyMinutes int `json:"dailyMinutes"`
}

// RestrictionBundle is the set of spending, time-window and break rules in
// force for one user. A user has at most one; writes replace it wholesale.
type RestrictionBundle struct {
	UserID               string           `json:"userId,omitempty"`
	MonthlySpendingLimit decimal.Decimal  `json:"monthlySpendingLimit"`
	DailySpendingLimit   decimal.Decimal  `json:"dailySpendingLimit"`
	TimeRestrictions     TimeRestrictions `json:"timeRestrictions"`
	RequiredBreaks       RequiredBreaks   `json:"requiredBreaks"`
	Source               BundleSource     `json:"source,omitempty"`
	UpdatedAt            time.Time        `json:"updatedAt,omitzero"`
}

// WindowFor returns the weekend window when weekend is true, else the weekday one.
func (b *RestrictionBundle) WindowFor(weekend bool) TimeWindow {
	if weekend {
		return b.TimeRestrictions.Weekend
	}
	return b.TimeRestrictions.Weekday
}

// RestrictionOverrides carries caller-supplied replacements for a default
// bundle. Each non-nil field replaces the default field wholesale.
type RestrictionOverrides struct {
	MonthlySpendingLimit *decimal.Decimal  `json:"monthlySpendingLimit,omitempty"`
	DailySpendingLimit   *decimal.Decimal  `json:"dailySpendingLimit,omitempty"`
	TimeRestrictions     *TimeRestrictions `json:"timeRestrictions,omitempty"`
	RequiredBreaks       *RequiredBreaks   `json:"requiredBreaks,omitempty"`
}

// DecodeClockTime is the inverse of Encode.
func DecodeClockTime(v int) ClockTime {
	return ClockTime{Hour: v / 100, Minute: v % 100}
}
