package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ageguard/internal/dbx"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/consenttokens"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/restrictions"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/spending"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repository against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Restrictions(db dbx.DBTX) restrictions.Repository
	Spending(db dbx.DBTX) spending.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	ConsentTokens(db dbx.DBTX) consenttokens.Repository
	Accounts(db dbx.DBTX) accounts.Repository
}
