package payment

import (
    "context"
    "errors"
    "fmt"
    "log"
    "strconv"

    "plan-payment-api/models"
    "plan-payment-api/services/payment/mercadopago"
    "plan-payment-api/utils"
)

const (
    ConfirmationSubject = "Confirmação de Pagamento"
    confirmationContent = "Obrigado por seu pagamento. Você adquiriu o plano: %s."
)

type Service struct {
    validator SchemaValidator
    gateway   Gateway
    payments  PaymentRepository
    notifier  Notifier
}

// Result is everything a completed run produced.
type Result struct {
    Payment      *models.Payment              `json:"payment"`
    Notification *models.EmailNotification    `json:"emailNotification"`
    Gateway      *mercadopago.PaymentResponse `json:"mercadoPago"`
}

func NewService(validator SchemaValidator, gateway Gateway, payments PaymentRepository, notifier Notifier) *Service {
    return &Service{
        validator: validator,
        gateway:   gateway,
        payments:  payments,
        notifier:  notifier,
    }
}

type requestIDKey struct{}

// WithRequestID tags the context so the workflow logs can be correlated with
// the HTTP request that started them.
func WithRequestID(ctx context.Context, requestID string) context.Context {
    return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
    if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
        return id
    }
    return "-"
}

// CreatePayment runs the whole workflow: validation, schema check, charge,
// persistence and notification, in that order. The first failure stops the
// run and is returned as *Error. Nothing is compensated: once the charge is
// accepted a later failure leaves it in place (see Error.Committed).
func (s *Service) CreatePayment(ctx context.Context, req models.PaymentRequest) (*Result, error) {
    requestID := requestIDFrom(ctx)
    state := StateValidating

    fail := func(kind, err error) (*Result, error) {
        log.Printf("[RequestID: %s] Payment workflow failed at %s: %v", requestID, state, err)
        return nil, &Error{State: state, Kind: kind, Err: err}
    }
    enter := func(next State) {
        state = next
        log.Printf("[RequestID: %s] Payment workflow entering %s", requestID, state)
    }

    log.Printf("[RequestID: %s] Payment workflow entering %s", requestID, state)
    payer, err := validateRequest(req)
    if err != nil {
        return fail(err, err)
    }

    enter(StateStructuralValidating)
    if err := s.validator.Validate(ctx, req); err != nil {
        return fail(ErrSchema, err)
    }

    enter(StateCharging)
    chargeReq, err := BuildChargeRequest(req, payer)
    if err != nil {
        return fail(err, err)
    }
    charge, err := s.gateway.Charge(ctx, chargeReq)
    if err != nil {
        return fail(ErrGateway, err)
    }
    if charge == nil {
        return fail(ErrGateway, errors.New("gateway returned no payment"))
    }
    externalID := strconv.FormatInt(charge.ID, 10)
    log.Printf("[RequestID: %s] Charge accepted by gateway with id %s (status %s)",
        requestID, externalID, charge.Status)

    enter(StatePersisting)
    payment, err := s.payments.CreatePayment(ctx, &models.Payment{
        PaymentData: req.PaymentData,
        Status:      models.PaymentStatusPending,
        ExternalID:  externalID,
    })
    if err != nil {
        log.Printf("[RequestID: %s] CRITICAL: gateway charge %s has no local payment record, manual reconciliation required (user %s, plan %s)",
            requestID, externalID, req.UserID, req.Plan)
        return fail(ErrStorage, err)
    }

    enter(StateNotifying)
    notification, err := s.notifier.Send(ctx, &models.EmailNotification{
        PaymentID: payment.ID,
        UserID:    req.UserID,
        Recipient: req.Recipient,
        Subject:   ConfirmationSubject,
        Content:   fmt.Sprintf(confirmationContent, req.Plan),
        Status:    models.EmailStatusPending,
    })
    if err != nil {
        return fail(ErrNotification, err)
    }

    enter(StateCompleted)
    return &Result{
        Payment:      payment,
        Notification: notification,
        Gateway:      charge,
    }, nil
}

// validateRequest checks the CPF and the name and builds the payer.
func validateRequest(req models.PaymentRequest) (mercadopago.Payer, error) {
    if req.CPF == "" {
        return mercadopago.Payer{}, ErrMissingIdentityNumber
    }
    if !utils.IsValidCPF(utils.RemoveCPFPunctuation(req.CPF)) {
        return mercadopago.Payer{}, ErrInvalidIdentityNumber
    }
    return BuildPayer(req.PaymentData)
}
