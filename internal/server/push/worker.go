package push

import (
	"context"

	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/hibiken/asynq"
)

// Worker consumes queued notifications.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger logging.Logger
}

func NewWorker(redisAddr string, f *Fanout, l logging.Logger) *Worker {
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{Concurrency: 4})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNewProcedure, HandleNewProcedureTask(f))

	return &Worker{server: srv, mux: mux, logger: l.With("module", "push_worker")}
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.logger.Info(ctx, "push worker started")

	<-ctx.Done()

	w.logger.Info(ctx, "stopping push worker...")
	w.server.Shutdown()
	return nil
}
