package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/repomanager"
)

// editor holds what the page, element and show-if services share: the
// ownership walk up the tree and last_modified propagation.
type editor struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func newEditor(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger, module string) editor {
	return editor{db: db, repomanager: m, logger: l.With("module", module), now: time.Now}
}

func (e *editor) procedure(ctx context.Context, db dbx.DBTX, owner, id int64) (*models.Procedure, error) {
	p, err := e.repomanager.Procedures(db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(p, owner); err != nil {
		return nil, err
	}
	return p, nil
}

// page loads a page and checks that owner owns its procedure.
func (e *editor) page(ctx context.Context, db dbx.DBTX, owner, id int64) (*models.Page, error) {
	pg, err := e.repomanager.Pages(db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := e.procedure(ctx, db, owner, pg.ProcedureID); err != nil {
		return nil, err
	}
	return pg, nil
}

// touchPage stamps the page and then its procedure.
func (e *editor) touchPage(ctx context.Context, tx dbx.DBTX, pageID int64, at time.Time) error {
	pages := e.repomanager.Pages(tx)
	if err := pages.Touch(ctx, pageID, at); err != nil {
		return err
	}
	pg, err := pages.Get(ctx, pageID)
	if err != nil {
		return err
	}
	return e.repomanager.Procedures(tx).Touch(ctx, pg.ProcedureID, at)
}

func (e *editor) touchProcedure(ctx context.Context, tx dbx.DBTX, procedureID int64, at time.Time) error {
	return e.repomanager.Procedures(tx).Touch(ctx, procedureID, at)
}

func (e *editor) touchConcept(ctx context.Context, tx dbx.DBTX, conceptID int64, at time.Time) error {
	return e.repomanager.Concepts(tx).Touch(ctx, conceptID, at)
}
