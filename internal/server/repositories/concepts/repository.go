package concepts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Concept) (*models.Concept, error)
	Get(ctx context.Context, id int64) (*models.Concept, error)
	List(ctx context.Context) ([]*models.Concept, error)
	Update(ctx context.Context, c *models.Concept) error
	Delete(ctx context.Context, id int64) error
	Touch(ctx context.Context, id int64, at time.Time) error
}
