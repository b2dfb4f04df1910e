package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/ageguard/internal/clock"
	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/dbx"
	"github.com/dmitrijs2005/ageguard/internal/logging"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/consenttokens"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/restrictions"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/spending"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	_ "time/tzdata"
)

// memStore backs every fake repository. Fakes ignore the DBTX they are
// bound to; transactions are asserted through sqlmock expectations.
type memStore struct {
	mu       sync.Mutex
	bundles  map[string]models.RestrictionBundle
	records  []models.SpendingRecord
	sessions map[string]*models.Session
	tokens   map[string]*models.ConsentToken
	accounts map[string]models.AccountStatus

	lockedBundles []string

	bundleErr         error
	upsertErr         error
	totalsErr         error
	appendErr         error
	sessionErr        error
	createSessionHook func(s *models.Session) error
	tokenErr          error
	markErr           error
	accountErr        error
}

func newMemStore() *memStore {
	return &memStore{
		bundles:  map[string]models.RestrictionBundle{},
		sessions: map[string]*models.Session{},
		tokens:   map[string]*models.ConsentToken{},
		accounts: map[string]models.AccountStatus{},
	}
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Restrictions(dbx.DBTX) restrictions.Repository {
	return &fakeRestrictions{m.s}
}
func (m *fakeRepoManager) Spending(dbx.DBTX) spending.Repository { return &fakeSpending{m.s} }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository { return &fakeSessions{m.s} }
func (m *fakeRepoManager) ConsentTokens(dbx.DBTX) consenttokens.Repository {
	return &fakeTokens{m.s}
}
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository { return &fakeAccounts{m.s} }

type fakeRestrictions struct{ s *memStore }

func (f *fakeRestrictions) Get(_ context.Context, userID string) (*models.RestrictionBundle, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.bundleErr != nil {
		return nil, f.s.bundleErr
	}
	b, ok := f.s.bundles[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &b, nil
}

func (f *fakeRestrictions) GetForUpdate(ctx context.Context, userID string) (*models.RestrictionBundle, error) {
	f.s.mu.Lock()
	f.s.lockedBundles = append(f.s.lockedBundles, userID)
	f.s.mu.Unlock()
	return f.Get(ctx, userID)
}

func (f *fakeRestrictions) Upsert(_ context.Context, b *models.RestrictionBundle) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.upsertErr != nil {
		return f.s.upsertErr
	}
	f.s.bundles[b.UserID] = *b
	return nil
}

type fakeSpending struct{ s *memStore }

func (f *fakeSpending) Totals(_ context.Context, userID string, day, month spending.Period) (models.Usage, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.totalsErr != nil {
		return models.Usage{}, f.s.totalsErr
	}
	in := func(t time.Time, p spending.Period) bool { return !t.Before(p.From) && t.Before(p.To) }
	u := models.Usage{Daily: decimal.Zero, Monthly: decimal.Zero}
	for _, r := range f.s.records {
		if r.UserID != userID {
			continue
		}
		if in(r.TransactionTimestamp, day) {
			u.Daily = u.Daily.Add(r.Amount)
		}
		if in(r.TransactionTimestamp, month) {
			u.Monthly = u.Monthly.Add(r.Amount)
		}
	}
	return u, nil
}

func (f *fakeSpending) Append(_ context.Context, rec *models.SpendingRecord) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.appendErr != nil {
		return f.s.appendErr
	}
	f.s.records = append(f.s.records, *rec)
	return nil
}

type fakeSessions struct{ s *memStore }

func (f *fakeSessions) Create(_ context.Context, sess *models.Session) error {
	f.s.mu.Lock()
	hook := f.s.createSessionHook
	f.s.mu.Unlock()
	if hook != nil {
		if err := hook(sess); err != nil {
			return err
		}
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.sessionErr != nil {
		return f.s.sessionErr
	}
	cp := *sess
	cp.IsActive = true
	f.s.sessions[sess.ID] = &cp
	sess.IsActive = true
	return nil
}

func (f *fakeSessions) FindActive(_ context.Context, userID string) (*models.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.sessionErr != nil {
		return nil, f.s.sessionErr
	}
	for _, s := range f.s.sessions {
		if s.UserID == userID && s.IsActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessions) FindByID(_ context.Context, id string) (*models.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.sessionErr != nil {
		return nil, f.s.sessionErr
	}
	s, ok := f.s.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Close(_ context.Context, id string, end time.Time) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	s, ok := f.s.sessions[id]
	if !ok || !s.IsActive {
		return false, nil
	}
	s.IsActive = false
	s.EndTime = &end
	return true, nil
}

type fakeTokens struct{ s *memStore }

func (f *fakeTokens) Create(_ context.Context, t *models.ConsentToken) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.tokenErr != nil {
		return f.s.tokenErr
	}
	cp := *t
	f.s.tokens[t.TokenHash] = &cp
	return nil
}

func (f *fakeTokens) FindByHashForUpdate(_ context.Context, hash string) (*models.ConsentToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.tokenErr != nil {
		return nil, f.s.tokenErr
	}
	t, ok := f.s.tokens[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) MarkProcessed(_ context.Context, id string, decision models.ConsentDecision, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.markErr != nil {
		return f.s.markErr
	}
	for _, t := range f.s.tokens {
		if t.ID == id {
			if t.IsUsed {
				return common.ErrTokenUsed
			}
			t.IsUsed = true
			t.Decision = decision
			t.ProcessedAt = &at
			return nil
		}
	}
	return common.ErrTokenUsed
}

func (f *fakeTokens) SupersedePending(_ context.Context, childUserID string, at time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.tokenErr != nil {
		return 0, f.s.tokenErr
	}
	var n int64
	for _, t := range f.s.tokens {
		if t.ChildUserID == childUserID && !t.IsUsed && t.SupersededAt == nil {
			t.SupersededAt = &at
			n++
		}
	}
	return n, nil
}

func (s *memStore) tokensFor(childUserID string) []*models.ConsentToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ConsentToken
	for _, t := range s.tokens {
		if t.ChildUserID == childUserID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type fakeAccounts struct{ s *memStore }

func (f *fakeAccounts) Get(_ context.Context, userID string) (*models.AccountStatus, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	st, ok := f.s.accounts[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &st, nil
}

func (f *fakeAccounts) SetPurchasing(_ context.Context, userID string, enabled bool, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.accountErr != nil {
		return f.s.accountErr
	}
	f.s.accounts[userID] = models.AccountStatus{UserID: userID, PurchasingEnabled: enabled, UpdatedAt: at}
	return nil
}

// --- harness ---

var tokyo = mustLocation("Asia/Tokyo")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// at builds a Tokyo wall-clock time.
func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, tokyo)
}

type harness struct {
	store *memStore
	db    *sql.DB
	mock  sqlmock.Sqlmock
	clock *clock.FakeClock
	deps  Deps
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := newMemStore()
	clk := clock.Fake(now)
	return &harness{
		store: store,
		db:    db,
		mock:  mock,
		clock: clk,
		deps: Deps{
			DB:       db,
			Repos:    &fakeRepoManager{s: store},
			Clock:    clk,
			Location: tokyo,
			Logger:   logging.Nop(),
		},
	}
}

func (h *harness) expectTx(commit bool) {
	h.mock.ExpectBegin()
	if commit {
		h.mock.ExpectCommit()
	} else {
		h.mock.ExpectRollback()
	}
}

func (h *harness) setBundle(userID string, b *models.RestrictionBundle) {
	cp := *b
	cp.UserID = userID
	h.store.bundles[userID] = cp
}

func (h *harness) addSpend(userID string, amount int64, ts time.Time) {
	h.store.records = append(h.store.records, models.SpendingRecord{
		ID: "r", UserID: userID, Amount: decimal.NewFromInt(amount), TransactionTimestamp: ts,
	})
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
