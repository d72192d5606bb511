package database

import (
    "context"
    "database/sql"
    "encoding/json"
    "fmt"
    "log"
    "time"

    "github.com/google/uuid"

    "plan-payment-api/models"
)

const insertPaymentQuery = `
    INSERT INTO payments (
        id, amount, payment_method, cpf, name, recipient,
        plan, user_id, installments, payer_address,
        zip_code, street_name, street_number, neighborhood, city, federal_unit,
        status, external_id, created_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// CreatePayment stores a new payment record and returns it with its id and
// creation time filled in.
func (c *Connection) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
    ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()

    if !payment.Status.IsValid() {
        return nil, fmt.Errorf("invalid payment status %q", payment.Status)
    }

    stored := *payment
    stored.ID = uuid.New().String()
    stored.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

    var payerAddress sql.NullString
    if stored.Payer != nil && stored.Payer.Address != nil {
        raw, err := json.Marshal(stored.Payer.Address)
        if err != nil {
            return nil, fmt.Errorf("failed to encode payer address: %w", err)
        }
        payerAddress = sql.NullString{String: string(raw), Valid: true}
    }

    _, err := c.db.ExecContext(ctx, insertPaymentQuery,
        stored.ID,
        stored.Amount,
        string(stored.PaymentMethod),
        stored.CPF,
        stored.Name,
        stored.Recipient,
        stored.Plan,
        stored.UserID,
        stored.Installments,
        payerAddress,
        nullString(stored.ZipCode),
        nullString(stored.StreetName),
        nullString(stored.StreetNumber),
        nullString(stored.Neighborhood),
        nullString(stored.City),
        nullString(stored.FederalUnit),
        string(stored.Status),
        stored.ExternalID,
        stored.CreatedAt,
    )
    if err != nil {
        log.Printf("Error saving payment for external id %s: %v", stored.ExternalID, err)
        return nil, fmt.Errorf("failed to save payment: %w", err)
    }

    log.Printf("Successfully saved payment %s (external id %s)", stored.ID, stored.ExternalID)
    return &stored, nil
}

func nullString(s string) sql.NullString {
    return sql.NullString{String: s, Valid: s != ""}
}
