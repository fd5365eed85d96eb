package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/repomanager"
)

// ShowIfService edits page visibility rules. Conditions are stored verbatim.
type ShowIfService struct {
	editor
}

func NewShowIfService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *ShowIfService {
	return &ShowIfService{editor: newEditor(db, m, l, "showifs")}
}

func (s *ShowIfService) Create(ctx context.Context, owner, pageID int64, conditions string) (*models.ShowIf, error) {
	var out *models.ShowIf
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.page(ctx, tx, owner, pageID); err != nil {
			return err
		}
		now := s.now()
		si, err := s.repomanager.ShowIfs(tx).Create(ctx, &models.ShowIf{
			PageID: pageID, Conditions: conditions, CreatedAt: now, LastModified: now,
		})
		if err != nil {
			return err
		}
		out = si
		return s.touchPage(ctx, tx, pageID, now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ShowIfService) Update(ctx context.Context, owner, id int64, conditions string) (*models.ShowIf, error) {
	var out *models.ShowIf
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		si, err := s.repomanager.ShowIfs(tx).Get(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.page(ctx, tx, owner, si.PageID); err != nil {
			return err
		}
		now := s.now()
		si.Conditions = conditions
		si.LastModified = now
		if err := s.repomanager.ShowIfs(tx).Update(ctx, si); err != nil {
			return err
		}
		out = si
		return s.touchPage(ctx, tx, si.PageID, now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ShowIfService) Delete(ctx context.Context, owner, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		si, err := s.repomanager.ShowIfs(tx).Get(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.page(ctx, tx, owner, si.PageID); err != nil {
			return err
		}
		if err := s.repomanager.ShowIfs(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.touchPage(ctx, tx, si.PageID, s.now())
	})
}
