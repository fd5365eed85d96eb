package pages

import (
	"context"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Page) (*models.Page, error)
	Get(ctx context.Context, id int64) (*models.Page, error)
	ListByProcedure(ctx context.Context, procedureID int64) ([]*models.Page, error)
	Update(ctx context.Context, p *models.Page) error
	Delete(ctx context.Context, id int64) error
	Touch(ctx context.Context, id int64, at time.Time) error
}
