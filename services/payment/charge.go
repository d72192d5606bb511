package payment

import (
	"encoding/json"

	"plan-payment-api/models"
	"plan-payment-api/services/payment/mercadopago"
)

// BuildChargeRequest assembles the gateway request. Card brands must carry a
// token; every other method never sends one.
func BuildChargeRequest(req models.PaymentRequest, payer mercadopago.Payer) (mercadopago.PaymentRequest, error) {
	body := mercadopago.PaymentRequest{
		TransactionAmount: json.Number(req.Amount.String()),
		PaymentMethodID:   string(req.PaymentMethod),
		Payer:             payer,
		Description:       "Plano: " + req.Plan,
		Metadata: mercadopago.Metadata{
			UserID: req.UserID,
			Plan:   req.Plan,
		},
		Installments: req.InstallmentCount(),
	}

	if req.PaymentMethod.IsCard() {
		if req.Token == "" {
			return mercadopago.PaymentRequest{}, ErrTokenRequired
		}
		body.Token = req.Token
	}

	return body, nil
}
