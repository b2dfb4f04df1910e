package restrictions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
	"github.com/shopspring/decimal"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var bundleColumns = []string{
	"user_id", "monthly_spending_limit", "daily_spending_limit",
	"weekday_start", "weekday_end", "weekend_start", "weekend_end",
	"continuous_minutes", "daily_minutes", "source", "updated_at",
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	updated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)^\s*SELECT\s+user_id,.*FROM\s+restriction_bundles\s+WHERE\s+user_id\s*=\s*\$1$`).
		WithArgs("child-1").
		WillReturnRows(sqlmock.NewRows(bundleColumns).
			AddRow("child-1", "5000.00", "1000.00", 600, 2200, 600, 2300, 60, 180, "consent", updated))

	b, err := repo.Get(context.Background(), "child-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.DailySpendingLimit.Equal(decimal.NewFromInt(1000)) || !b.MonthlySpendingLimit.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected limits: %+v", b)
	}
	if b.TimeRestrictions.Weekday.End != (models.ClockTime{Hour: 22}) || b.TimeRestrictions.Weekend.End != (models.ClockTime{Hour: 23}) {
		t.Fatalf("unexpected windows: %+v", b.TimeRestrictions)
	}
	if b.RequiredBreaks.ContinuousMinutes != 60 || b.Source != models.SourceConsent || !b.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected bundle: %+v", b)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+restriction_bundles\s+WHERE\s+user_id\s*=\s*\$1\s+FOR\s+UPDATE$`).
		WithArgs("child-1").
		WillReturnRows(sqlmock.NewRows(bundleColumns).
			AddRow("child-1", "10000", "2000", 600, 2200, 600, 2300, 60, 180, "override", time.Now()))

	b, err := repo.GetForUpdate(context.Background(), "child-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Source != models.SourceOverride {
		t.Fatalf("source = %q", b.Source)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+restriction_bundles`).
		WithArgs("adult").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "adult")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+restriction_bundles`).
		WithArgs("u").
		WillReturnError(errors.New("conn reset"))

	_, err := repo.Get(context.Background(), "u")
	if err == nil || !regexp.MustCompile(`db error: .*conn reset`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	b := &models.RestrictionBundle{
		UserID:               "child-1",
		MonthlySpendingLimit: decimal.NewFromInt(5000),
		DailySpendingLimit:   decimal.NewFromInt(300),
		TimeRestrictions: models.TimeRestrictions{
			Weekday: models.TimeWindow{Start: models.ClockTime{Hour: 7, Minute: 30}, End: models.ClockTime{Hour: 21}},
			Weekend: models.TimeWindow{Start: models.ClockTime{Hour: 6}, End: models.ClockTime{Hour: 23}},
		},
		RequiredBreaks: models.RequiredBreaks{ContinuousMinutes: 45, DailyMinutes: 120},
		Source:         models.SourceConsent,
		UpdatedAt:      now,
	}

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+restriction_bundles.*ON\s+CONFLICT\s+\(user_id\)\s+DO\s+UPDATE`).
		WithArgs("child-1", b.MonthlySpendingLimit, b.DailySpendingLimit, 730, 2100, 600, 2300, 45, 120, "consent", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+restriction_bundles`).
		WillReturnError(errors.New("read-only"))

	err := repo.Upsert(context.Background(), &models.RestrictionBundle{UserID: "u"})
	if err == nil || !regexp.MustCompile(`db error: .*read-only`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
