package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/repomanager"
)

// ElementService edits page elements. Writes stamp the page and the procedure.
type ElementService struct {
	editor
}

func NewElementService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *ElementService {
	return &ElementService{editor: newEditor(db, m, l, "elements")}
}

func (s *ElementService) Get(ctx context.Context, owner, id int64) (*models.Element, error) {
	e, err := s.repomanager.Elements(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.page(ctx, s.db, owner, e.PageID); err != nil {
		return nil, err
	}
	return e, nil
}

// Create adds e to its page. The element type must be a known one.
func (s *ElementService) Create(ctx context.Context, owner int64, e *models.Element) (*models.Element, error) {
	if err := e.ElementType.Validate(); err != nil {
		return nil, err
	}

	var out *models.Element
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.page(ctx, tx, owner, e.PageID); err != nil {
			return err
		}
		now := s.now()
		e.ID = 0
		e.CreatedAt = now
		e.LastModified = now
		created, err := s.repomanager.Elements(tx).Create(ctx, e)
		if err != nil {
			return err
		}
		out = created
		return s.touchPage(ctx, tx, e.PageID, now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the element's fields. The page it belongs to cannot change.
func (s *ElementService) Update(ctx context.Context, owner int64, e *models.Element) (*models.Element, error) {
	if err := e.ElementType.Validate(); err != nil {
		return nil, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := s.repomanager.Elements(tx).Get(ctx, e.ID)
		if err != nil {
			return err
		}
		if _, err := s.page(ctx, tx, owner, current.PageID); err != nil {
			return err
		}
		now := s.now()
		e.PageID = current.PageID
		e.CreatedAt = current.CreatedAt
		e.LastModified = now
		if err := s.repomanager.Elements(tx).Update(ctx, e); err != nil {
			return err
		}
		return s.touchPage(ctx, tx, e.PageID, now)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ElementService) Delete(ctx context.Context, owner, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		e, err := s.repomanager.Elements(tx).Get(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.page(ctx, tx, owner, e.PageID); err != nil {
			return err
		}
		if err := s.repomanager.Elements(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.touchPage(ctx, tx, e.PageID, s.now())
	})
}
