package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/orbitcheck/internal/dbx"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/events"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/operators"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/registrations"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// build the same set inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Events(db dbx.DBTX) events.Repository
	Registrations(db dbx.DBTX) registrations.Repository
	Operators(db dbx.DBTX) operators.Repository
}
