package mercadopago

import (
    "encoding/json"
    "fmt"
    "strings"
)

type Identification struct {
    Type   string `json:"type"`
    Number string `json:"number"`
}

type Address struct {
    ZipCode      string `json:"zip_code,omitempty"`
    StreetName   string `json:"street_name,omitempty"`
    StreetNumber string `json:"street_number,omitempty"`
    Neighborhood string `json:"neighborhood,omitempty"`
    City         string `json:"city,omitempty"`
    FederalUnit  string `json:"federal_unit,omitempty"`
}

type Payer struct {
    Email          string         `json:"email"`
    FirstName      string         `json:"first_name"`
    LastName       string         `json:"last_name"`
    Identification Identification `json:"identification"`
    Address        *Address       `json:"address,omitempty"`
}

type Metadata struct {
    UserID string `json:"userId"`
    Plan   string `json:"plan"`
}

// PaymentRequest is the body of POST /v1/payments.
type PaymentRequest struct {
    TransactionAmount json.Number `json:"transaction_amount"`
    PaymentMethodID   string      `json:"payment_method_id"`
    Payer             Payer       `json:"payer"`
    Description       string      `json:"description"`
    Metadata          Metadata    `json:"metadata"`
    Installments      int         `json:"installments"`
    Token             string      `json:"token,omitempty"`
}

// PaymentResponse keeps the fields the service reads and the raw body, which
// is returned to API callers untouched.
type PaymentResponse struct {
    ID           int64           `json:"id"`
    Status       string          `json:"status"`
    StatusDetail string          `json:"status_detail"`
    DateCreated  string          `json:"date_created"`
    Raw          json.RawMessage `json:"-"`
}

func (r PaymentResponse) MarshalJSON() ([]byte, error) {
    if len(r.Raw) > 0 {
        return r.Raw, nil
    }
    type plain PaymentResponse
    return json.Marshal(plain(r))
}

type Cause struct {
    Code        interface{} `json:"code"`
    Description string      `json:"description"`
}

type errorResponse struct {
    Message string  `json:"message"`
    Error   string  `json:"error"`
    Status  int     `json:"status"`
    Cause   []Cause `json:"cause"`
}

// APIError is returned for every non-2xx answer from Mercado Pago.
type APIError struct {
    StatusCode int
    Code       string
    Message    string
    Causes     []Cause
}

func (e *APIError) Error() string {
    msg := fmt.Sprintf("mercadopago: status %d", e.StatusCode)
    if e.Code != "" {
        msg += " (" + e.Code + ")"
    }
    if e.Message != "" {
        msg += ": " + e.Message
    }
    if len(e.Causes) > 0 {
        parts := make([]string, 0, len(e.Causes))
        for _, c := range e.Causes {
            parts = append(parts, fmt.Sprintf("%v %s", c.Code, c.Description))
        }
        msg += " [" + strings.Join(parts, "; ") + "]"
    }
    return msg
}
