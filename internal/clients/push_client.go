package clients

import (
	"context"
	"errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrPushDisabled signals that push delivery is not configured for this
// deployment, as opposed to configured delivery failing.
var ErrPushDisabled = errors.New("push delivery disabled")

// Notification is one push payload.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// PushClient delivers push notifications to registered device tokens.
type PushClient interface {
	// SendMulticast delivers the notification to all tokens and returns
	// how many deliveries succeeded. Per-token failures are tolerated; an
	// error is returned only when nothing could be delivered.
	SendMulticast(ctx context.Context, tokens []string, n Notification) (int, error)
}

// FCM caps one multicast call at 500 tokens.
const multicastLimit = 500

// fcmSender is the slice of the FCM messaging client the push client uses.
type fcmSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type fcmClient struct {
	messaging fcmSender
	logger    *zap.Logger
}

// NewFCMClient initializes Firebase Cloud Messaging from a service account
// credentials file.
func NewFCMClient(ctx context.Context, credentialsFile string, logger *zap.Logger) (PushClient, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &fcmClient{messaging: client, logger: logger}, nil
}

func (c *fcmClient) SendMulticast(ctx context.Context, tokens []string, n Notification) (int, error) {
	delivered := 0
	var lastErr error

	for start := 0; start < len(tokens); start += multicastLimit {
		end := start + multicastLimit
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		resp, err := c.messaging.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: n.Data,
		})
		if err != nil {
			// The batch call itself failed; fall back to one token at a
			// time rather than dropping the whole batch.
			c.logger.Warn("multicast send failed, falling back per token", zap.Error(err))
			delivered += c.sendEach(ctx, batch, n, &lastErr)
			continue
		}
		delivered += resp.SuccessCount
	}

	if delivered == 0 && lastErr != nil {
		return 0, lastErr
	}
	return delivered, nil
}

func (c *fcmClient) sendEach(ctx context.Context, tokens []string, n Notification, lastErr *error) int {
	delivered := 0
	for _, token := range tokens {
		_, err := c.messaging.Send(ctx, &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: n.Data,
		})
		if err != nil {
			*lastErr = err
			continue
		}
		delivered++
	}
	return delivered
}

// NoopPushClient is used when FCM credentials are not configured.
type NoopPushClient struct{}

// SendMulticast drops the notification and reports delivery as disabled so
// callers do not mistake it for a failed send.
func (NoopPushClient) SendMulticast(ctx context.Context, tokens []string, n Notification) (int, error) {
	return 0, ErrPushDisabled
}
