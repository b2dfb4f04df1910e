package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/logging"
	"github.com/dmitrijs2005/ageguard/internal/server/auth"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/dmitrijs2005/ageguard/internal/server/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type fakeSpending struct {
	checkFn  func(userID string, amount decimal.Decimal) (*models.SpendingDecision, error)
	recordFn func(userID string, amount decimal.Decimal, desc string) (*services.RecordResult, error)
}

func (f *fakeSpending) Check(_ context.Context, userID string, amount decimal.Decimal) (*models.SpendingDecision, error) {
	return f.checkFn(userID, amount)
}

func (f *fakeSpending) Record(_ context.Context, userID string, amount decimal.Decimal, desc string) (*services.RecordResult, error) {
	return f.recordFn(userID, amount, desc)
}

type fakeTime struct {
	fn func(userID string) (*models.TimeDecision, error)
}

func (f *fakeTime) Check(_ context.Context, userID string) (*models.TimeDecision, error) {
	return f.fn(userID)
}

type fakeUsage struct {
	fn func(userID string) (*models.UsageDecision, error)
}

func (f *fakeUsage) Check(_ context.Context, userID string) (*models.UsageDecision, error) {
	return f.fn(userID)
}

type fakeChecker struct {
	fn func(userID string, amount *decimal.Decimal) (*models.AggregateResult, error)
}

func (f *fakeChecker) Check(_ context.Context, userID string, amount *decimal.Decimal) (*models.AggregateResult, error) {
	return f.fn(userID, amount)
}

type fakeSessions struct {
	startFn func(userID string) (*services.StartResult, error)
	endFn   func(userID, sessionID string) (*models.Session, error)
}

func (f *fakeSessions) Start(_ context.Context, userID string) (*services.StartResult, error) {
	return f.startFn(userID)
}

func (f *fakeSessions) End(_ context.Context, userID, sessionID string) (*models.Session, error) {
	return f.endFn(userID, sessionID)
}

type fakeConsent struct {
	requestFn func(req models.ConsentRequest) (*models.ConsentRequestResult, error)
	processFn func(token string, agrees bool, o *models.RestrictionOverrides) (*models.ConsentOutcome, error)
}

func (f *fakeConsent) Request(_ context.Context, req models.ConsentRequest) (*models.ConsentRequestResult, error) {
	return f.requestFn(req)
}

func (f *fakeConsent) Process(_ context.Context, token string, agrees bool, o *models.RestrictionOverrides) (*models.ConsentOutcome, error) {
	return f.processFn(token, agrees, o)
}

type fakeRestrictions struct {
	getFn    func(userID string) (*models.RestrictionBundle, error)
	statusFn func(userID string) (*models.AccountStatus, error)
	ageFn    func(birthDate string) (*services.AgeResult, error)
}

func (f *fakeRestrictions) Get(_ context.Context, userID string) (*models.RestrictionBundle, error) {
	return f.getFn(userID)
}

func (f *fakeRestrictions) AccountStatus(_ context.Context, userID string) (*models.AccountStatus, error) {
	return f.statusFn(userID)
}

func (f *fakeRestrictions) CalculateAge(birthDate string) (*services.AgeResult, error) {
	return f.ageFn(birthDate)
}

type fixture struct {
	spending     *fakeSpending
	time         *fakeTime
	usage        *fakeUsage
	checker      *fakeChecker
	sessions     *fakeSessions
	consent      *fakeConsent
	restrictions *fakeRestrictions
	srv          *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		spending:     &fakeSpending{},
		time:         &fakeTime{},
		usage:        &fakeUsage{},
		checker:      &fakeChecker{},
		sessions:     &fakeSessions{},
		consent:      &fakeConsent{},
		restrictions: &fakeRestrictions{},
	}
	f.srv = NewServer(":0", testSecret, Services{
		Spending:     f.spending,
		TimeWindow:   f.time,
		Usage:        f.usage,
		Checker:      f.checker,
		Sessions:     f.sessions,
		Consent:      f.consent,
		Restrictions: f.restrictions,
	}, logging.Nop())
	return f
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, "", testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

// do sends a request through the fiber app and decodes the JSON body into out
// when out is non-nil.
func (f *fixture) do(t *testing.T, method, target, authz, body string, out any) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}

	resp, err := f.srv.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func ptr[T any](v T) *T { return &v }

func generateWithSecret(userID string, secret []byte) (string, error) {
	return auth.GenerateToken(userID, "", secret, time.Hour)
}
