package models

import "time"

type EmailStatus string

const (
	EmailStatusPending EmailStatus = "PENDING"
	EmailStatusSent    EmailStatus = "SENT"
	EmailStatusFailed  EmailStatus = "FAILED"
)

type EmailNotification struct {
	ID        string      `json:"id"`
	PaymentID string      `json:"paymentId,omitempty"`
	UserID    string      `json:"userId,omitempty"`
	Recipient string      `json:"recipient"`
	Subject   string      `json:"subject"`
	Content   string      `json:"content"`
	Status    EmailStatus `json:"status"`
	Attempts  int         `json:"attempts"`
	LastError string      `json:"lastError,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	SentAt    *time.Time  `json:"sentAt,omitempty"`
}
