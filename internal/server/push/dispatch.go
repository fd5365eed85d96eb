package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
	"github.com/hibiken/asynq"
)

// TypeNewProcedure is the asynq task type for queued notifications.
const TypeNewProcedure = "push:new_procedure"

// Dispatcher starts delivery of a notification. The returned Response is nil
// when delivery happens asynchronously.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload Payload) (*Response, error)
}

// InlineDispatcher delivers within the caller's request.
type InlineDispatcher struct {
	fanout *Fanout
}

func NewInlineDispatcher(f *Fanout) *InlineDispatcher {
	return &InlineDispatcher{fanout: f}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, payload Payload) (*Response, error) {
	return d.fanout.Send(ctx, payload)
}

// Enqueuer is the part of *asynq.Client the queue dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher hands notifications to an asynq worker.
type QueueDispatcher struct {
	client Enqueuer
	logger logging.Logger
}

func NewQueueDispatcher(c Enqueuer, l logging.Logger) *QueueDispatcher {
	return &QueueDispatcher{client: c, logger: l.With("module", "push")}
}

func NewNewProcedureTask(payload Payload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNewProcedure, b), nil
}

// Dispatch enqueues a single-attempt task; a failed multicast is not retried.
func (d *QueueDispatcher) Dispatch(ctx context.Context, payload Payload) (*Response, error) {
	task, err := NewNewProcedureTask(payload)
	if err != nil {
		return nil, err
	}
	info, err := d.client.EnqueueContext(ctx, task, asynq.MaxRetry(0))
	if err != nil {
		return nil, fmt.Errorf("enqueue push: %w", err)
	}
	d.logger.Debug(ctx, "push enqueued", "task_id", info.ID, "procedure_id", payload.ProcedureID)
	return nil, nil
}

// HandleNewProcedureTask returns the worker handler for TypeNewProcedure tasks.
func HandleNewProcedureTask(f *Fanout) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p Payload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		_, err := f.Send(ctx, p)
		return err
	}
}
