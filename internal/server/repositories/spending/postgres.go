package spending

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ageguard/internal/dbx"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Totals reads both sums in one statement so they come from the same snapshot.
func (r *PostgresRepository) Totals(ctx context.Context, userID string, day, month Period) (models.Usage, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE transaction_timestamp >= $2 AND transaction_timestamp < $3), 0),
			COALESCE(SUM(amount), 0)
		FROM spending_records
		WHERE user_id = $1 AND transaction_timestamp >= $4 AND transaction_timestamp < $5
	`
	var u models.Usage
	if err := r.db.QueryRowContext(ctx, query, userID, day.From, day.To, month.From, month.To).
		Scan(&u.Daily, &u.Monthly); err != nil {
		return models.Usage{}, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Append(ctx context.Context, rec *models.SpendingRecord) error {
	query := `
		INSERT INTO spending_records (id, user_id, amount, description, transaction_timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Amount, rec.Description, rec.TransactionTimestamp); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
