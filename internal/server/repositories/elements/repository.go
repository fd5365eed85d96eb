package elements

import (
	"context"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.Element) (*models.Element, error)
	Get(ctx context.Context, id int64) (*models.Element, error)
	ListByPage(ctx context.Context, pageID int64) ([]*models.Element, error)
	Update(ctx context.Context, e *models.Element) error
	Delete(ctx context.Context, id int64) error
}
