package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodVisa         PaymentMethod = "visa"
	PaymentMethodMaster       PaymentMethod = "master"
	PaymentMethodAmex         PaymentMethod = "amex"
	PaymentMethodPix          PaymentMethod = "pix"
	PaymentMethodBoleto       PaymentMethod = "bolbradesco"
	PaymentMethodLottery      PaymentMethod = "pec"
	PaymentMethodAccountMoney PaymentMethod = "account_money"
)

// IsCard reports whether the method charges a tokenized card.
func (m PaymentMethod) IsCard() bool {
	switch m {
	case PaymentMethodVisa, PaymentMethodMaster, PaymentMethodAmex:
		return true
	}
	return false
}

type Address struct {
	ZipCode      string `json:"zip_code,omitempty"`
	StreetName   string `json:"street_name,omitempty"`
	StreetNumber string `json:"street_number,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	FederalUnit  string `json:"federal_unit,omitempty"`
}

type PayerInput struct {
	Address *Address `json:"address,omitempty"`
}

// PaymentData holds every request field that may be stored. The card token is
// kept out of it so a persisted payment can never carry one.
type PaymentData struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CPF           string          `json:"cpf"`
	Name          string          `json:"name"`
	Recipient     string          `json:"recipient"`
	Plan          string          `json:"plan"`
	UserID        string          `json:"userId"`
	Installments  int             `json:"installments,omitempty"`
	Payer         *PayerInput     `json:"payer,omitempty"`

	ZipCode      string `json:"zip_code,omitempty"`
	StreetName   string `json:"street_name,omitempty"`
	StreetNumber string `json:"street_number,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	FederalUnit  string `json:"federal_unit,omitempty"`
}

type PaymentRequest struct {
	PaymentData
	Token string `json:"token,omitempty"`
}

// FlatAddress builds an address from the flat fields. It only succeeds when
// every one of them is filled.
func (d PaymentData) FlatAddress() (*Address, bool) {
	if d.ZipCode == "" || d.StreetName == "" || d.StreetNumber == "" ||
		d.Neighborhood == "" || d.City == "" || d.FederalUnit == "" {
		return nil, false
	}
	return &Address{
		ZipCode:      d.ZipCode,
		StreetName:   d.StreetName,
		StreetNumber: d.StreetNumber,
		Neighborhood: d.Neighborhood,
		City:         d.City,
		FederalUnit:  d.FederalUnit,
	}, true
}

// InstallmentCount returns the requested installments, 1 when unset.
func (d PaymentData) InstallmentCount() int {
	if d.Installments <= 0 {
		return 1
	}
	return d.Installments
}

type Payment struct {
	ID string `json:"id"`
	PaymentData
	Status     PaymentStatus `json:"status"`
	ExternalID string        `json:"externalId"`
	CreatedAt  time.Time     `json:"createdAt"`
}
