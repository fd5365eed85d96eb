package devices

import (
	"context"

	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
)

type Repository interface {
	Register(ctx context.Context, registrationID string) (*models.Device, error)
	Unregister(ctx context.Context, registrationID string) error
	List(ctx context.Context) ([]*models.Device, error)
}
