// models/payment_status.go
package models

type PaymentStatus string

const (
    PaymentStatusPending PaymentStatus = "PENDING"

    PaymentStatusPaid PaymentStatus = "PAID"

    PaymentStatusFailed PaymentStatus = "FAILED"
)

func (ps PaymentStatus) IsValid() bool {
    return ps == PaymentStatusPending || ps == PaymentStatusPaid || ps == PaymentStatusFailed
}
