package models

import "time"

// ViolationCode is the machine-checkable reason a guard denied.
type ViolationCode string

const (
	ViolationDailyLimit      ViolationCode = "daily_limit_exceeded"
	ViolationMonthlyLimit    ViolationCode = "monthly_limit_exceeded"
	ViolationOutsideWindow   ViolationCode = "outside_time_window"
	ViolationContinuousUsage ViolationCode = "continuous_usage_limit"
)

type Violation struct {
	Code    ViolationCode `json:"code"`
	Message string        `json:"message"`
}

type SpendingDecision struct {
	Allowed      bool       `json:"allowed"`
	Violation    *Violation `json:"violation,omitempty"`
	CurrentUsage *Usage     `json:"currentUsage,omitempty"`
}

type TimeDecision struct {
	Allowed      bool        `json:"allowed"`
	Violation    *Violation  `json:"violation,omitempty"`
	ActiveWindow *TimeWindow `json:"activeWindow,omitempty"`
}

type UsageDecision struct {
	Allowed        bool       `json:"allowed"`
	Violation      *Violation `json:"violation,omitempty"`
	ElapsedMinutes int        `json:"elapsedMinutes"`
	// SuggestedBreakMinutes is set only on deny.
	SuggestedBreakMinutes int `json:"suggestedBreakMinutes,omitempty"`
}

// AggregateResult collects every violation found by the guards, in the
// order they ran.
type AggregateResult struct {
	Allowed      bool        `json:"allowed"`
	Violations   []Violation `json:"violations"`
	CurrentUsage *Usage      `json:"currentUsage,omitempty"`
	CheckedAt    time.Time   `json:"checkedAt"`
}
