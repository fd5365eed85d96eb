package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ConceptService manages the shared concept dictionary and the abstract
// element templates attached to concepts.
type ConceptService struct {
	editor
}

func NewConceptService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *ConceptService {
	return &ConceptService{editor: newEditor(db, m, l, "concepts")}
}

func (s *ConceptService) Create(ctx context.Context, c *models.Concept) (*models.Concept, error) {
	if err := c.DataType.Validate(); err != nil {
		return nil, err
	}
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	now := s.now()
	c.ID = 0
	c.CreatedAt = now
	c.LastModified = now
	return s.repomanager.Concepts(s.db).Create(ctx, c)
}

func (s *ConceptService) Get(ctx context.Context, id int64) (*models.Concept, error) {
	return s.repomanager.Concepts(s.db).Get(ctx, id)
}

func (s *ConceptService) List(ctx context.Context) ([]*models.Concept, error) {
	return s.repomanager.Concepts(s.db).List(ctx)
}

func (s *ConceptService) Update(ctx context.Context, c *models.Concept) (*models.Concept, error) {
	if err := c.DataType.Validate(); err != nil {
		return nil, err
	}
	c.LastModified = s.now()
	if err := s.repomanager.Concepts(s.db).Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the concept together with its abstract elements and any
// elements bound to it.
func (s *ConceptService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Concepts(s.db).Delete(ctx, id)
}

func (s *ConceptService) AbstractElements(ctx context.Context, conceptID int64) ([]*models.AbstractElement, error) {
	return s.repomanager.AbstractElements(s.db).ListByConcept(ctx, conceptID)
}

func (s *ConceptService) GetAbstractElement(ctx context.Context, id int64) (*models.AbstractElement, error) {
	return s.repomanager.AbstractElements(s.db).Get(ctx, id)
}

// CreateAbstractElement stores a template and stamps its concept.
func (s *ConceptService) CreateAbstractElement(ctx context.Context, e *models.AbstractElement) (*models.AbstractElement, error) {
	if err := e.ElementType.Validate(); err != nil {
		return nil, err
	}

	var out *models.AbstractElement
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()
		e.ID = 0
		e.CreatedAt = now
		e.LastModified = now
		created, err := s.repomanager.AbstractElements(tx).Create(ctx, e)
		if err != nil {
			return err
		}
		out = created
		return s.touchConcept(ctx, tx, e.ConceptID, now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ConceptService) UpdateAbstractElement(ctx context.Context, e *models.AbstractElement) (*models.AbstractElement, error) {
	if err := e.ElementType.Validate(); err != nil {
		return nil, err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := s.repomanager.AbstractElements(tx).Get(ctx, e.ID)
		if err != nil {
			return err
		}
		now := s.now()
		e.ConceptID = current.ConceptID
		e.CreatedAt = current.CreatedAt
		e.LastModified = now
		if err := s.repomanager.AbstractElements(tx).Update(ctx, e); err != nil {
			return err
		}
		return s.touchConcept(ctx, tx, e.ConceptID, now)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ConceptService) DeleteAbstractElement(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		e, err := s.repomanager.AbstractElements(tx).Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repomanager.AbstractElements(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.touchConcept(ctx, tx, e.ConceptID, s.now())
	})
}
