package push

import (
	"context"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Notifier delivers push notifications to a device token. Delivery is best
// effort: errors are logged and swallowed.
type Notifier interface {
	Send(ctx context.Context, deviceToken, title, body string, data map[string]string)
}

// Noop drops every notification.
type Noop struct{}

func (Noop) Send(context.Context, string, string, string, map[string]string) {}

// FCMNotifier sends notifications through Firebase Cloud Messaging.
type FCMNotifier struct {
	client *messaging.Client
}

func NewFCMNotifier(ctx context.Context, credentialsFile string) (*FCMNotifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &FCMNotifier{client: client}, nil
}

func (n *FCMNotifier) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) {
	msg := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := n.client.Send(ctx, msg); err != nil {
		slog.Error("fcm send failed", "error", err)
	}
}
