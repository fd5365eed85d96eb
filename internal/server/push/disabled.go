package push

import (
	"context"

	"github.com/dmitrijs2005/procedurebuilder/internal/logging"
)

// DisabledNotifier stands in when no FCM credentials are configured.
type DisabledNotifier struct {
	logger logging.Logger
}

func NewDisabledNotifier(l logging.Logger) *DisabledNotifier {
	return &DisabledNotifier{logger: l.With("module", "push")}
}

func (n *DisabledNotifier) SendMulticast(ctx context.Context, tokens []string, payload Payload) (*Response, error) {
	n.logger.Warn(ctx, "push delivery disabled, dropping notification",
		"procedure_id", payload.ProcedureID, "devices", len(tokens))
	return nil, ErrDisabled
}
