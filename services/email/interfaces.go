package email

import (
	"context"

	"plan-payment-api/models"
	"plan-payment-api/queue"
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// NotificationStore is the persistence side of the email_notifications table.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.EmailNotification) (*models.EmailNotification, error)
	GetNotification(ctx context.Context, id string) (*models.EmailNotification, error)
	MarkNotificationSent(ctx context.Context, id string) error
	RecordNotificationFailure(ctx context.Context, id string, cause error, final bool) error
}

type JobQueue interface {
	Enqueue(ctx context.Context, jobType queue.JobType, data map[string]interface{}) (*queue.Job, error)
}
