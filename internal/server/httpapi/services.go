package httpapi

import (
	"context"

	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/dmitrijs2005/ageguard/internal/server/services"
	"github.com/shopspring/decimal"
)

type SpendingGuard interface {
	Check(ctx context.Context, userID string, amount decimal.Decimal) (*models.SpendingDecision, error)
	Record(ctx context.Context, userID string, amount decimal.Decimal, description string) (*services.RecordResult, error)
}

type TimeWindowGuard interface {
	Check(ctx context.Context, userID string) (*models.TimeDecision, error)
}

type UsageGuard interface {
	Check(ctx context.Context, userID string) (*models.UsageDecision, error)
}

type Checker interface {
	Check(ctx context.Context, userID string, amount *decimal.Decimal) (*models.AggregateResult, error)
}

type SessionStore interface {
	Start(ctx context.Context, userID string) (*services.StartResult, error)
	End(ctx context.Context, userID, sessionID string) (*models.Session, error)
}

type ConsentWorkflow interface {
	Request(ctx context.Context, req models.ConsentRequest) (*models.ConsentRequestResult, error)
	Process(ctx context.Context, token string, agrees bool, overrides *models.RestrictionOverrides) (*models.ConsentOutcome, error)
}

type RestrictionService interface {
	Get(ctx context.Context, userID string) (*models.RestrictionBundle, error)
	AccountStatus(ctx context.Context, userID string) (*models.AccountStatus, error)
	CalculateAge(birthDate string) (*services.AgeResult, error)
}

// Services is everything the HTTP surface calls into.
type Services struct {
	Spending     SpendingGuard
	TimeWindow   TimeWindowGuard
	Usage        UsageGuard
	Checker      Checker
	Sessions     SessionStore
	Consent      ConsentWorkflow
	Restrictions RestrictionService
}

func FromCompliance(c *services.Compliance) Services {
	return Services{
		Spending:     c.Spending,
		TimeWindow:   c.TimeWindow,
		Usage:        c.Usage,
		Checker:      c.Checker,
		Sessions:     c.Sessions,
		Consent:      c.Consent,
		Restrictions: c.Restrictions,
	}
}
