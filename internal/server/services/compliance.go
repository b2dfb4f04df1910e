package services

import (
	"time"

	"github.com/dmitrijs2005/ageguard/internal/server/auth"
)

// Compliance groups the services handed to the transports.
type Compliance struct {
	Spending     *SpendingGuard
	TimeWindow   *TimeWindowGuard
	Sessions     *SessionStore
	Usage        *ContinuousUsageGuard
	Checker      *RestrictionChecker
	Consent      *ConsentWorkflow
	Restrictions *RestrictionService
}

type ComplianceOptions struct {
	Tokens          *auth.ConsentTokens
	Notifier        ParentNotifier
	Archiver        EvidenceArchiver
	Consent         ConsentSettings
	BreakSuggestion time.Duration
}

func NewCompliance(d Deps, opts ComplianceOptions) *Compliance {
	d = d.withDefaults()

	sg := NewSpendingGuard(d)
	tw := NewTimeWindowGuard(d)
	ss := NewSessionStore(d)
	cu := NewContinuousUsageGuard(d, ss, opts.BreakSuggestion)

	return &Compliance{
		Spending:     sg,
		TimeWindow:   tw,
		Sessions:     ss,
		Usage:        cu,
		Checker:      NewRestrictionChecker(d, tw, cu, sg),
		Consent:      NewConsentWorkflow(d, opts.Tokens, opts.Notifier, opts.Archiver, opts.Consent),
		Restrictions: NewRestrictionService(d),
	}
}
