package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/common"
	"github.com/dmitrijs2005/ageguard/internal/dbx"
	"github.com/dmitrijs2005/ageguard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.AccountStatus, error) {
	query := `
		SELECT user_id, purchasing_enabled, updated_at
		FROM account_status
		WHERE user_id = $1
	`
	var s models.AccountStatus
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.UserID, &s.PurchasingEnabled, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) SetPurchasing(ctx context.Context, userID string, enabled bool, at time.Time) error {
	query := `
		INSERT INTO account_status (user_id, purchasing_enabled, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			purchasing_enabled = EXCLUDED.purchasing_enabled,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, userID, enabled, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
