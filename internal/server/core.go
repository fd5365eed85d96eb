package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/procedurebuilder/internal/dbx"
	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/config"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/push"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/services"
	"github.com/hibiken/asynq"
)

// Core is the database handle plus every service built on it. Both the
// server and the admin CLI start from a Core.
type Core struct {
	Config      *config.Config
	Logger      logging.Logger
	DB          *sql.DB
	Repomanager repomanager.RepositoryManager

	Users      *services.UserService
	Procedures *services.ProcedureService
	Publisher  *services.PublishService
	Pages      *services.PageService
	Elements   *services.ElementService
	ShowIfs    *services.ShowIfService
	Concepts   *services.ConceptService
	Devices    *services.DeviceService
	Media      *services.MediaService

	Fanout *push.Fanout
	queue  *asynq.Client
}

// newNotifier picks FCM when credentials are configured.
var newNotifier = func(ctx context.Context, cfg *config.Config, l logging.Logger) (push.Notifier, error) {
	if cfg.FCMCredentialsFile == "" {
		l.Warn(ctx, "FCM credentials not configured, push notifications disabled")
		return push.NewDisabledNotifier(l), nil
	}
	return push.NewFCMNotifier(ctx, cfg.FCMCredentialsFile)
}

// NewCore opens the database, applies migrations and wires the services.
func NewCore(ctx context.Context, cfg *config.Config, l logging.Logger) (*Core, error) {
	db, err := dbx.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	c, err := newCore(ctx, cfg, l, db, m)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func newCore(ctx context.Context, cfg *config.Config, l logging.Logger, db *sql.DB, m repomanager.RepositoryManager) (*Core, error) {
	c := &Core{Config: cfg, Logger: l, DB: db, Repomanager: m}

	c.Users = services.NewUserService(db, m, cfg)
	c.Procedures = services.NewProcedureService(db, m, l)
	c.Pages = services.NewPageService(db, m, l)
	c.Elements = services.NewElementService(db, m, l)
	c.ShowIfs = services.NewShowIfService(db, m, l)
	c.Concepts = services.NewConceptService(db, m, l)
	c.Devices = services.NewDeviceService(db, m)
	c.Media = services.NewMediaService(cfg)

	notifier, err := newNotifier(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("push notifier: %w", err)
	}
	c.Fanout = push.NewFanout(c.Devices, notifier, l)

	var dispatcher push.Dispatcher
	switch cfg.PushMode {
	case config.PushModeQueue:
		c.queue = asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		dispatcher = push.NewQueueDispatcher(c.queue, l)
	case config.PushModeInline, "":
		dispatcher = push.NewInlineDispatcher(c.Fanout)
	default:
		return nil, fmt.Errorf("unknown push mode %q", cfg.PushMode)
	}

	c.Publisher = services.NewPublishService(db, m, c.Procedures, dispatcher, cfg.FetchURLBase, l)
	return c, nil
}

// Queued reports whether notifications go through the asynq queue.
func (c *Core) Queued() bool {
	return c.queue != nil
}

func (c *Core) Close() error {
	if c.queue != nil {
		_ = c.queue.Close()
	}
	return c.DB.Close()
}
