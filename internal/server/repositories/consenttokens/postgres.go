package consenttokens

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

func (r *PostgresRepository) Create(ctx context.Context, t *models.ConsentToken) error {
	query := `
		INSERT INTO consent_tokens (id, token_hash, parent_email, child_user_id, child_name, child_age, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.ExecContext(ctx, query,
		t.ID, t.TokenHash, t.ParentEmail, t.ChildUserID, t.ChildName, t.ChildAge, t.ExpiresAt, t.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByHashForUpdate(ctx context.Context, hash string) (*models.ConsentToken, error) {
	query := `
		SELECT id, token_hash, parent_email, child_user_id, child_name, child_age,
			expires_at, is_used, processed_at, decision, superseded_at, created_at
		FROM consent_tokens
		WHERE token_hash = $1
		FOR UPDATE
	`
	var (
		t                     models.ConsentToken
		processed, superseded sql.NullTime
		decision              string
	)
	err := r.db.QueryRowContext(ctx, query, hash).Scan(
		&t.ID, &t.TokenHash, &t.ParentEmail, &t.ChildUserID, &t.ChildName, &t.ChildAge,
		&t.ExpiresAt, &t.IsUsed, &processed, &decision, &superseded, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if processed.Valid {
		t.ProcessedAt = &processed.Time
	}
	if superseded.Valid {
		t.SupersededAt = &superseded.Time
	}
	t.Decision = models.ConsentDecision(decision)
	return &t, nil
}

func (r *PostgresRepository) MarkProcessed(ctx context.Context, id string, decision models.ConsentDecision, processedAt time.Time) error {
	query := `
		UPDATE consent_tokens SET is_used = TRUE, processed_at = $2, decision = $3
		WHERE id = $1 AND NOT is_used
	`
	res, err := r.db.ExecContext(ctx, query, id, processedAt, string(decision))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return common.ErrTokenUsed
	}
	return nil
}

func (r *PostgresRepository) SupersedePending(ctx context.Context, childUserID string, at time.Time) (int64, error) {
	query := `
		UPDATE consent_tokens SET superseded_at = $2
		WHERE child_user_id = $1 AND NOT is_used AND superseded_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, childUserID, at)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
