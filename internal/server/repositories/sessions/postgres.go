package sessions

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

func (r *PostgresRepository) Create(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, start_time, is_active)
		VALUES ($1, $2, $3, TRUE)
	`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.UserID, s.StartTime); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	s.IsActive = true
	return nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, userID string) (*models.Session, error) {
	query := `
		SELECT id, user_id, start_time, end_time, is_active
		FROM sessions
		WHERE user_id = $1 AND is_active
	`
	return r.findOne(ctx, query, userID)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, user_id, start_time, end_time, is_active
		FROM sessions
		WHERE id = $1
	`
	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg string) (*models.Session, error) {
	var (
		s   models.Session
		end sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&s.ID, &s.UserID, &s.StartTime, &end, &s.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if end.Valid {
		s.EndTime = &end.Time
	}
	return &s, nil
}

func (r *PostgresRepository) Close(ctx context.Context, id string, endTime time.Time) (bool, error) {
	query := `
		UPDATE sessions SET end_time = $2, is_active = FALSE
		WHERE id = $1 AND is_active
	`
	res, err := r.db.ExecContext(ctx, query, id, endTime)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}
