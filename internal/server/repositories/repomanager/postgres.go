// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ageguard/internal/dbx"
	"github.com/dmitrijs2005/ageguard/internal/server/migrations"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/consenttokens"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/restrictions"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/spending"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Restrictions(db dbx.DBTX) restrictions.Repository {
	return restrictions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Spending(db dbx.DBTX) spending.Repository {
	return spending.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ConsentTokens(db dbx.DBTX) consenttokens.Repository {
	return consenttokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
