package mailer

import (
	"context"
	"errors"

	"github.com/oksasatya/auth-microservice/pkg/helpers"
)

// QueueNotifier delivers verification codes by enqueueing an EmailJob for the
// email worker. It implements application.Notifier.
type QueueNotifier struct {
	Pub     *helpers.RabbitPublisher
	Enabled bool
}

func NewQueueNotifier(pub *helpers.RabbitPublisher, enabled bool) *QueueNotifier {
	return &QueueNotifier{Pub: pub, Enabled: enabled}
}

func (n *QueueNotifier) SendVerificationCode(ctx context.Context, email, name, code string) error {
	if n == nil || !n.Enabled {
		return errors.New("email sending disabled")
	}
	if n.Pub == nil {
		return errors.New("email queue unavailable")
	}
	job := EmailJob{
		To:       email,
		Template: TemplateVerificationCode,
		Data: map[string]any{
			"Name": name,
			"Code": code,
		},
	}
	return n.Pub.PublishJSON(ctx, job)
}
