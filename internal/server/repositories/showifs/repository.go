package showifs

import (
	"context"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.ShowIf) (*models.ShowIf, error)
	Get(ctx context.Context, id int64) (*models.ShowIf, error)
	ListByPage(ctx context.Context, pageID int64) ([]*models.ShowIf, error)
	Update(ctx context.Context, s *models.ShowIf) error
	Delete(ctx context.Context, id int64) error
}
