// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/migrations"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/abstractelements"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/concepts"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/devices"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/elements"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/pages"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/procedures"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/pushevents"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/showifs"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Procedures(db dbx.DBTX) procedures.Repository {
	return procedures.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Pages(db dbx.DBTX) pages.Repository {
	return pages.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Elements(db dbx.DBTX) elements.Repository {
	return elements.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AbstractElements(db dbx.DBTX) abstractelements.Repository {
	return abstractelements.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Concepts(db dbx.DBTX) concepts.Repository {
	return concepts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ShowIfs(db dbx.DBTX) showifs.Repository {
	return showifs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Devices(db dbx.DBTX) devices.Repository {
	return devices.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) PushEvents(db dbx.DBTX) pushevents.Repository {
	return pushevents.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations with goose.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
