package database

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"

    "plan-payment-api/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

func (c *Connection) CreateNotification(ctx context.Context, n *models.EmailNotification) (*models.EmailNotification, error) {
    ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()

    stored := *n
    stored.ID = uuid.New().String()
    stored.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
    if stored.Status == "" {
        stored.Status = models.EmailStatusPending
    }

    _, err := c.db.ExecContext(ctx, `
        INSERT INTO email_notifications (
            id, payment_id, user_id, recipient, subject, content,
            status, attempts, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        stored.ID,
        nullString(stored.PaymentID),
        nullString(stored.UserID),
        stored.Recipient,
        stored.Subject,
        stored.Content,
        string(stored.Status),
        stored.Attempts,
        stored.CreatedAt,
    )
    if err != nil {
        return nil, fmt.Errorf("failed to save notification: %w", err)
    }

    return &stored, nil
}

func (c *Connection) GetNotification(ctx context.Context, id string) (*models.EmailNotification, error) {
    ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()

    var n models.EmailNotification
    var paymentID, userID, lastError sql.NullString
    var status string
    var sentAt sql.NullTime

    err := c.db.QueryRowContext(ctx, `
        SELECT id, payment_id, user_id, recipient, subject, content,
               status, attempts, last_error, created_at, sent_at
        FROM email_notifications
        WHERE id = ?`, id).Scan(
        &n.ID,
        &paymentID,
        &userID,
        &n.Recipient,
        &n.Subject,
        &n.Content,
        &status,
        &n.Attempts,
        &lastError,
        &n.CreatedAt,
        &sentAt,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrNotificationNotFound
        }
        return nil, fmt.Errorf("error getting notification %s: %w", id, err)
    }

    n.PaymentID = paymentID.String
    n.UserID = userID.String
    n.LastError = lastError.String
    n.Status = models.EmailStatus(status)
    if sentAt.Valid {
        t := sentAt.Time
        n.SentAt = &t
    }
    return &n, nil
}

func (c *Connection) MarkNotificationSent(ctx context.Context, id string) error {
    return c.updateNotification(ctx, `
        UPDATE email_notifications
        SET status = ?, attempts = attempts + 1, last_error = NULL, sent_at = ?
        WHERE id = ?`,
        string(models.EmailStatusSent), time.Now().UTC(), id)
}

// RecordNotificationFailure counts a failed delivery attempt. The row only
// moves to FAILED when final is set; otherwise it stays PENDING for a retry.
func (c *Connection) RecordNotificationFailure(ctx context.Context, id string, cause error, final bool) error {
    status := models.EmailStatusPending
    if final {
        status = models.EmailStatusFailed
    }
    return c.updateNotification(ctx, `
        UPDATE email_notifications
        SET status = ?, attempts = attempts + 1, last_error = ?
        WHERE id = ?`,
        string(status), cause.Error(), id)
}

func (c *Connection) updateNotification(ctx context.Context, query string, args ...interface{}) error {
    ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()

    result, err := c.db.ExecContext(ctx, query, args...)
    if err != nil {
        return fmt.Errorf("error updating notification: %w", err)
    }

    rows, err := result.RowsAffected()
    if err != nil {
        return fmt.Errorf("error getting rows affected: %w", err)
    }
    if rows == 0 {
        return ErrNotificationNotFound
    }
    return nil
}
