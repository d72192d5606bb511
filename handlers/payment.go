package handlers

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "net/http"

    "github.com/google/uuid"

    "plan-payment-api/middleware"
    "plan-payment-api/models"
    "plan-payment-api/schema"
    "plan-payment-api/services/payment"
    "plan-payment-api/services/payment/mercadopago"
    "plan-payment-api/utils"
)

const maxRequestBody = 1 << 20

type PaymentCreator interface {
    CreatePayment(ctx context.Context, req models.PaymentRequest) (*payment.Result, error)
}

type PaymentHandler struct {
    payments PaymentCreator
}

func NewPaymentHandler(payments PaymentCreator) (*PaymentHandler, error) {
    if payments == nil {
        return nil, fmt.Errorf("payment service is required")
    }
    return &PaymentHandler{payments: payments}, nil
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
    requestID := uuid.New().String()
    log.Printf("[RequestID: %s] Starting payment creation", requestID)

    var req models.PaymentRequest
    decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
    if err := decoder.Decode(&req); err != nil {
        log.Printf("[RequestID: %s] Invalid request body: %v", requestID, err)
        utils.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
        return
    }

    if user := middleware.GetUserFromContext(r.Context()); user != nil && user.UserID != req.UserID {
        log.Printf("[RequestID: %s] Token subject %s does not match userId %s", requestID, user.UserID, req.UserID)
        utils.SendErrorResponse(w, http.StatusForbidden, "userId does not match the authenticated user")
        return
    }

    ctx := payment.WithRequestID(r.Context(), requestID)
    result, err := h.payments.CreatePayment(ctx, req)
    if err != nil {
        status, response := errorResponse(err)
        if payment.IsCommitted(err) {
            log.Printf("[RequestID: %s] Payment charged but workflow failed: %v", requestID, err)
        }
        utils.SendJSONResponse(w, status, response)
        return
    }

    log.Printf("[RequestID: %s] Payment %s created (external id %s)", requestID, result.Payment.ID, result.Payment.ExternalID)
    utils.SendJSONResponse(w, http.StatusCreated, models.APIResponse{
        Status:  "success",
        Message: "Payment created successfully",
        Data:    result,
    })
}

// errorResponse maps a workflow failure to the HTTP status and body the
// client sees.
func errorResponse(err error) (int, models.APIResponse) {
    response := models.APIResponse{Status: "error"}

    switch {
    case errors.Is(err, payment.ErrMissingIdentityNumber),
        errors.Is(err, payment.ErrInvalidIdentityNumber),
        errors.Is(err, payment.ErrMissingName),
        errors.Is(err, payment.ErrTokenRequired):
        response.Message = err.Error()
        var perr *payment.Error
        if errors.As(err, &perr) && perr.Kind != nil {
            response.Message = perr.Kind.Error()
        }
        return http.StatusBadRequest, response

    case errors.Is(err, payment.ErrSchema):
        var verr *schema.ValidationError
        if errors.As(err, &verr) {
            response.Message = "Invalid payment request"
            response.Data = map[string][]string{"violations": verr.Violations}
            return http.StatusBadRequest, response
        }
        response.Message = "Could not validate payment request"
        return http.StatusInternalServerError, response

    case errors.Is(err, payment.ErrGateway):
        response.Message = "Payment was not accepted by the gateway"
        var apiErr *mercadopago.APIError
        if errors.As(err, &apiErr) && apiErr.Message != "" {
            response.Message = fmt.Sprintf("%s: %s", response.Message, apiErr.Message)
        }
        return http.StatusBadGateway, response

    case errors.Is(err, payment.ErrStorage):
        response.Message = "Payment was charged but could not be recorded; it will be reconciled"
        return http.StatusInternalServerError, response

    case errors.Is(err, payment.ErrNotification):
        response.Message = "Payment was charged and recorded but the confirmation email could not be queued"
        return http.StatusInternalServerError, response
    }

    response.Message = "Internal server error"
    return http.StatusInternalServerError, response
}
