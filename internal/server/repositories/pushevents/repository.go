package pushevents

import (
	"context"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.PushEvent) (*models.PushEvent, error)
	ListByProcedure(ctx context.Context, procedureID int64) ([]*models.PushEvent, error)
}
