package payment

import (
	"strings"

	"plan-payment-api/models"
	"plan-payment-api/services/payment/mercadopago"
	"plan-payment-api/utils"
)

const (
	IdentificationTypeCPF = "CPF"
	lastNamePlaceholder   = "-"
)

// BuildPayer maps the request into the gateway payer. The CPF must already be
// validated; only its digits are sent.
func BuildPayer(data models.PaymentData) (mercadopago.Payer, error) {
	firstName, lastName, ok := splitName(data.Name)
	if !ok {
		return mercadopago.Payer{}, ErrMissingName
	}

	payer := mercadopago.Payer{
		Email:     data.Recipient,
		FirstName: firstName,
		LastName:  lastName,
		Identification: mercadopago.Identification{
			Type:   IdentificationTypeCPF,
			Number: utils.RemoveCPFPunctuation(data.CPF),
		},
	}

	// payer.address vence os campos soltos
	if data.Payer != nil && data.Payer.Address != nil {
		payer.Address = gatewayAddress(data.Payer.Address)
	} else if addr, ok := data.FlatAddress(); ok {
		payer.Address = gatewayAddress(addr)
	}

	return payer, nil
}

func splitName(name string) (first, last string, ok bool) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", "", false
	}
	last = strings.Join(parts[1:], " ")
	if last == "" {
		last = lastNamePlaceholder
	}
	return parts[0], last, true
}

func gatewayAddress(a *models.Address) *mercadopago.Address {
	return &mercadopago.Address{
		ZipCode:      a.ZipCode,
		StreetName:   a.StreetName,
		StreetNumber: a.StreetNumber,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		FederalUnit:  a.FederalUnit,
	}
}
