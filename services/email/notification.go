package email

import (
	"context"
	"fmt"
	"log"

	"plan-payment-api/models"
	"plan-payment-api/queue"
)

// NotificationService records confirmation emails and hands their delivery to
// the job queue. Delivery itself runs in the worker through Deliver.
type NotificationService struct {
	store  NotificationStore
	jobs   JobQueue
	sender EmailSender
}

func NewNotificationService(store NotificationStore, jobs JobQueue, sender EmailSender) *NotificationService {
	return &NotificationService{
		store:  store,
		jobs:   jobs,
		sender: sender,
	}
}

// Send stores the notification as PENDING and enqueues its delivery.
func (s *NotificationService) Send(ctx context.Context, n *models.EmailNotification) (*models.EmailNotification, error) {
	stored, err := s.store.CreateNotification(ctx, n)
	if err != nil {
		return nil, err
	}

	if _, err := s.jobs.Enqueue(ctx, queue.JobTypeSendNotification, map[string]interface{}{
		"notification_id": stored.ID,
	}); err != nil {
		log.Printf("Notification %s stored but not queued: %v", stored.ID, err)
		return nil, fmt.Errorf("failed to queue notification %s: %w", stored.ID, err)
	}

	return stored, nil
}

// Deliver sends a stored notification over SMTP and records the outcome.
// final marks the last delivery attempt; a failure then moves the row to FAILED.
func (s *NotificationService) Deliver(ctx context.Context, id string, final bool) error {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return err
	}

	if n.Status == models.EmailStatusSent {
		log.Printf("Notification %s already sent, skipping", id)
		return nil
	}

	body := RenderNotification(n.Subject, n.Content)
	if sendErr := s.sender.SendEmail(ctx, n.Recipient, n.Subject, body); sendErr != nil {
		if err := s.store.RecordNotificationFailure(ctx, id, sendErr, final); err != nil {
			log.Printf("Error recording failure for notification %s: %v", id, err)
		}
		return fmt.Errorf("failed to send notification %s: %w", id, sendErr)
	}

	if err := s.store.MarkNotificationSent(ctx, id); err != nil {
		// The mail went out; a retry would send it twice.
		log.Printf("Notification %s sent but status not updated: %v", id, err)
		return nil
	}

	log.Printf("Notification %s sent to %s", id, n.Recipient)
	return nil
}
