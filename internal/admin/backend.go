package admin

import (
	"context"

	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/config"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/models"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/services"
)

// CoreBackend runs commands against a server core. Commands act as the
// administrator, so ownership checks are skipped unless an owner is given.
type CoreBackend struct {
	core *server.Core
}

// OpenCore is the Opener used by the spbctl binary.
func OpenCore(l logging.Logger) Opener {
	return func(ctx context.Context, opts *RootOptions) (Backend, error) {
		cfg := config.LoadConfigFrom(opts.ConfigArgs())
		core, err := server.NewCore(ctx, cfg, l)
		if err != nil {
			return nil, err
		}
		return &CoreBackend{core: core}, nil
	}
}

func (b *CoreBackend) Migrate(ctx context.Context) error {
	return b.core.Repomanager.RunMigrations(ctx, b.core.DB)
}

func (b *CoreBackend) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	return b.core.Users.Register(ctx, username, password)
}

func (b *CoreBackend) RegisterDevice(ctx context.Context, token string) (*models.Device, error) {
	return b.core.Devices.Register(ctx, token)
}

func (b *CoreBackend) ValidateProcedure(ctx context.Context, id int64) error {
	return b.core.Procedures.Validate(ctx, 0, id)
}

func (b *CoreBackend) PublishProcedure(ctx context.Context, owner, id int64) (*services.PublishResult, error) {
	return b.core.Publisher.Publish(ctx, owner, id)
}

func (b *CoreBackend) ProcedureTree(ctx context.Context, id int64) (*models.ProcedureTree, error) {
	return b.core.Procedures.Tree(ctx, 0, id)
}

func (b *CoreBackend) MediaUploadURL(ctx context.Context, kind, contentType string) (string, string, error) {
	return b.core.Media.UploadURL(ctx, kind, contentType)
}

func (b *CoreBackend) Close() error {
	return b.core.Close()
}
