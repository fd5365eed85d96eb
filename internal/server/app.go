// Package server wires configuration, storage, services and the network
// endpoints of the procedure builder, and runs them until shutdown.
package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/config"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/httpapi"
	"github.com/dmitrijs2005/procedurebuilder/internal/server/push"

	gs "github.com/dmitrijs2005/procedurebuilder/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	core   *Core
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	core, err := NewCore(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	return &App{config: c, logger: logger, core: core}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) httpServices() httpapi.Services {
	c := app.core
	return httpapi.Services{
		Users:      c.Users,
		Procedures: c.Procedures,
		Publisher:  c.Publisher,
		Pages:      c.Pages,
		Elements:   c.Elements,
		ShowIfs:    c.ShowIfs,
		Concepts:   c.Concepts,
		Devices:    c.Devices,
		Media:      c.Media,
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.httpServices())
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.core.DB)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startPushWorker(ctx context.Context, cancelFunc context.CancelFunc) {
	w := push.NewWorker(app.config.RedisAddr, app.core.Fanout, app.logger)
	if err := w.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "push_mode", app.config.PushMode)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.core.Queued() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startPushWorker(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.core.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
