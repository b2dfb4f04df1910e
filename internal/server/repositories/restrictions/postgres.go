package restrictions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/dbx"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX. Clock times are
// stored as hour*100+minute.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectBundle = `
	SELECT user_id, monthly_spending_limit, daily_spending_limit,
		weekday_start, weekday_end, weekend_start, weekend_end,
		continuous_minutes, daily_minutes, source, updated_at
	FROM restriction_bundles
	WHERE user_id = $1`

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.RestrictionBundle, error) {
	return r.get(ctx, selectBundle, userID)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, userID string) (*models.RestrictionBundle, error) {
	return r.get(ctx, selectBundle+" FOR UPDATE", userID)
}

func (r *PostgresRepository) get(ctx context.Context, query, userID string) (*models.RestrictionBundle, error) {
	var (
		b                              models.RestrictionBundle
		wdStart, wdEnd, weStart, weEnd int
		source                         string
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&b.UserID, &b.MonthlySpendingLimit, &b.DailySpendingLimit,
		&wdStart, &wdEnd, &weStart, &weEnd,
		&b.RequiredBreaks.ContinuousMinutes, &b.RequiredBreaks.DailyMinutes,
		&source, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	b.TimeRestrictions = models.TimeRestrictions{
		Weekday: models.TimeWindow{Start: models.DecodeClockTime(wdStart), End: models.DecodeClockTime(wdEnd)},
		Weekend: models.TimeWindow{Start: models.DecodeClockTime(weStart), End: models.DecodeClockTime(weEnd)},
	}
	b.Source = models.BundleSource(source)
	return &b, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, b *models.RestrictionBundle) error {
	query := `
		INSERT INTO restriction_bundles (user_id, monthly_spending_limit, daily_spending_limit,
			weekday_start, weekday_end, weekend_start, weekend_end,
			continuous_minutes, daily_minutes, source, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			monthly_spending_limit = EXCLUDED.monthly_spending_limit,
			daily_spending_limit = EXCLUDED.daily_spending_limit,
			weekday_start = EXCLUDED.weekday_start,
			weekday_end = EXCLUDED.weekday_end,
			weekend_start = EXCLUDED.weekend_start,
			weekend_end = EXCLUDED.weekend_end,
			continuous_minutes = EXCLUDED.continuous_minutes,
			daily_minutes = EXCLUDED.daily_minutes,
			source = EXCLUDED.source,
			updated_at = EXCLUDED.updated_at
	`
	tr := b.TimeRestrictions
	if _, err := r.db.ExecContext(ctx, query,
		b.UserID, b.MonthlySpendingLimit, b.DailySpendingLimit,
		tr.Weekday.Start.Encode(), tr.Weekday.End.Encode(), tr.Weekend.Start.Encode(), tr.Weekend.End.Encode(),
		b.RequiredBreaks.ContinuousMinutes, b.RequiredBreaks.DailyMinutes,
		string(b.Source), b.UpdatedAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
