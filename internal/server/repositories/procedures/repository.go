package procedures

import (
	"context"
	"time"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *models.Procedure) (*models.Procedure, error)
	Get(ctx context.Context, id int64) (*models.Procedure, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Procedure, error)
	ListVersions(ctx context.Context, id uuid.UUID) ([]*models.Procedure, error)
	Update(ctx context.Context, p *models.Procedure) error
	Delete(ctx context.Context, id int64) error
	Touch(ctx context.Context, id int64, at time.Time) error
	LockUUID(ctx context.Context, id uuid.UUID) error
	MaxVersion(ctx context.Context, id uuid.UUID) (int, error)
}
