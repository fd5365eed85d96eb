package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/repomanager"
)

// DeviceService keeps the registry of push tokens.
type DeviceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDeviceService(db *sql.DB, m repomanager.RepositoryManager) *DeviceService {
	return &DeviceService{db: db, repomanager: m}
}

// Register is idempotent: a known token returns its existing row.
func (s *DeviceService) Register(ctx context.Context, registrationID string) (*models.Device, error) {
	registrationID = strings.TrimSpace(registrationID)
	if registrationID == "" {
		return nil, fmt.Errorf("%w: empty registration id", common.ErrValidation)
	}
	return s.repomanager.Devices(s.db).Register(ctx, registrationID)
}

func (s *DeviceService) Unregister(ctx context.Context, registrationID string) error {
	return s.repomanager.Devices(s.db).Unregister(ctx, registrationID)
}

func (s *DeviceService) List(ctx context.Context) ([]*models.Device, error) {
	return s.repomanager.Devices(s.db).List(ctx)
}

// ListTokens returns every registration token.
func (s *DeviceService) ListTokens(ctx context.Context) ([]string, error) {
	devices, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.RegistrationID)
	}
	return tokens, nil
}
