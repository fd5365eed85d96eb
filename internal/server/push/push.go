// Package push delivers "new procedure" notifications to registered devices.
//
// A publish produces exactly one multicast request covering every known
// device token. Delivery is best effort: there is no retry, and callers log
// failures instead of failing the publish.
package push

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/procedurebuilder/internal/common"
)

// ErrDisabled is returned by notifiers that have no delivery backend.
var ErrDisabled = errors.New("push delivery disabled")

// Payload is the data message sent to devices.
type Payload struct {
	Type        string `json:"type"`
	ProcedureID int64  `json:"procedureId"`
	FetchURL    string `json:"fetchUrl"`
}

// NewProcedurePayload builds the payload announcing a published procedure.
func NewProcedurePayload(procedureID int64, fetchURL string) Payload {
	return Payload{Type: common.PushTypeNewProcedure, ProcedureID: procedureID, FetchURL: fetchURL}
}

// Data renders the payload as an FCM data map. All values are strings.
func (p Payload) Data() map[string]string {
	return map[string]string{
		"type":        p.Type,
		"procedureId": strconv.FormatInt(p.ProcedureID, 10),
		"fetchUrl":    p.FetchURL,
	}
}

// Response summarizes one multicast request.
type Response struct {
	SuccessCount int
	FailureCount int
	// FailedTokens lists the tokens the provider rejected.
	FailedTokens []string
}

// Notifier sends one payload to many device tokens in a single call.
type Notifier interface {
	SendMulticast(ctx context.Context, tokens []string, payload Payload) (*Response, error)
}
