package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// fcmBatchLimit is the largest token list FCM accepts per multicast message.
const fcmBatchLimit = 500

type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMNotifier sends data messages through Firebase Cloud Messaging.
type FCMNotifier struct {
	client multicastSender
}

// newMessagingClient is a seam for tests.
var newMessagingClient = func(ctx context.Context, credentialsFile string) (multicastSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return client, nil
}

// NewFCMNotifier loads service account credentials from credentialsFile.
func NewFCMNotifier(ctx context.Context, credentialsFile string) (*FCMNotifier, error) {
	client, err := newMessagingClient(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}
	return &FCMNotifier{client: client}, nil
}

// SendMulticast sends payload to every token. Token lists longer than the
// FCM limit are split; the first transport error aborts the send.
func (n *FCMNotifier) SendMulticast(ctx context.Context, tokens []string, payload Payload) (*Response, error) {
	resp := &Response{}
	data := payload.Data()

	for start := 0; start < len(tokens); start += fcmBatchLimit {
		end := min(start+fcmBatchLimit, len(tokens))
		batch := tokens[start:end]

		br, err := n.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Data:   data,
		})
		if err != nil {
			return resp, fmt.Errorf("fcm multicast: %w", err)
		}

		resp.SuccessCount += br.SuccessCount
		resp.FailureCount += br.FailureCount
		for i, r := range br.Responses {
			if !r.Success && i < len(batch) {
				resp.FailedTokens = append(resp.FailedTokens, batch[i])
			}
		}
	}

	return resp, nil
}
