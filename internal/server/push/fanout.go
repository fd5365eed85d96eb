package push

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
)

// TokenLister returns the registration tokens of every known device.
type TokenLister interface {
	ListTokens(ctx context.Context) ([]string, error)
}

// Fanout collects all device tokens and hands them to the notifier in one call.
type Fanout struct {
	devices  TokenLister
	notifier Notifier
	logger   logging.Logger
}

func NewFanout(devices TokenLister, notifier Notifier, l logging.Logger) *Fanout {
	return &Fanout{devices: devices, notifier: notifier, logger: l.With("module", "push")}
}

// Send notifies every device about payload. With no devices registered the
// notifier is not called and an empty response is returned.
func (f *Fanout) Send(ctx context.Context, payload Payload) (*Response, error) {
	tokens, err := f.devices.ListTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if len(tokens) == 0 {
		f.logger.Debug(ctx, "no devices registered, skipping push", "procedure_id", payload.ProcedureID)
		return &Response{}, nil
	}

	resp, err := f.notifier.SendMulticast(ctx, tokens, payload)
	if err != nil {
		return resp, err
	}

	f.logger.Info(ctx, "push sent",
		"procedure_id", payload.ProcedureID,
		"devices", len(tokens),
		"success", resp.SuccessCount,
		"failure", resp.FailureCount)

	return resp, nil
}
