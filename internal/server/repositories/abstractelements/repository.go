package abstractelements

import (
	"context"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.AbstractElement) (*models.AbstractElement, error)
	Get(ctx context.Context, id int64) (*models.AbstractElement, error)
	ListByConcept(ctx context.Context, conceptID int64) ([]*models.AbstractElement, error)
	Update(ctx context.Context, e *models.AbstractElement) error
	Delete(ctx context.Context, id int64) error
}
