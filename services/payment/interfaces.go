package payment

import (
    "context"

    "plan-payment-api/models"
    "plan-payment-api/services/payment/mercadopago"
)

type SchemaValidator interface {
    Validate(ctx context.Context, req models.PaymentRequest) error
}

type Gateway interface {
    Charge(ctx context.Context, req mercadopago.PaymentRequest) (*mercadopago.PaymentResponse, error)
}

type PaymentRepository interface {
    CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
}

type Notifier interface {
    Send(ctx context.Context, notification *models.EmailNotification) (*models.EmailNotification, error)
}
