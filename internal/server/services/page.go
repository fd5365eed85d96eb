package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/repomanager"
)

// PageService edits pages. Every write also stamps the owning procedure.
type PageService struct {
	editor
}

func NewPageService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *PageService {
	return &PageService{editor: newEditor(db, m, l, "pages")}
}

func (s *PageService) Get(ctx context.Context, owner, id int64) (*models.Page, error) {
	return s.page(ctx, s.db, owner, id)
}

func (s *PageService) Create(ctx context.Context, owner, procedureID int64, displayIndex int) (*models.Page, error) {
	var out *models.Page
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.procedure(ctx, tx, owner, procedureID); err != nil {
			return err
		}
		now := s.now()
		pg, err := s.repomanager.Pages(tx).Create(ctx, &models.Page{
			ProcedureID: procedureID, DisplayIndex: displayIndex, CreatedAt: now, LastModified: now,
		})
		if err != nil {
			return err
		}
		out = pg
		return s.touchProcedure(ctx, tx, procedureID, now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Move sets the page's display index.
func (s *PageService) Move(ctx context.Context, owner, id int64, displayIndex int) (*models.Page, error) {
	var out *models.Page
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pg, err := s.page(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		now := s.now()
		pg.DisplayIndex = displayIndex
		pg.LastModified = now
		if err := s.repomanager.Pages(tx).Update(ctx, pg); err != nil {
			return err
		}
		out = pg
		return s.touchProcedure(ctx, tx, pg.ProcedureID, now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the page with its elements and show-if rules.
func (s *PageService) Delete(ctx context.Context, owner, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		pg, err := s.page(ctx, tx, owner, id)
		if err != nil {
			return err
		}
		if err := s.repomanager.Pages(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.touchProcedure(ctx, tx, pg.ProcedureID, s.now())
	})
}
