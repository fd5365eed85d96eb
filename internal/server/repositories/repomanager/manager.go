package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
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
)

// RepositoryManager vends repositories bound to a handle, so the same code
// runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Procedures(db dbx.DBTX) procedures.Repository
	Pages(db dbx.DBTX) pages.Repository
	Elements(db dbx.DBTX) elements.Repository
	AbstractElements(db dbx.DBTX) abstractelements.Repository
	Concepts(db dbx.DBTX) concepts.Repository
	ShowIfs(db dbx.DBTX) showifs.Repository
	Devices(db dbx.DBTX) devices.Repository
	PushEvents(db dbx.DBTX) pushevents.Repository
}
