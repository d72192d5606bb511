package mercadopago

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
)

const (
    DefaultBaseURL = "https://api.mercadopago.com"
    PaymentsPath   = "/v1/payments"
    RequestTimeout = 30 * time.Second

    IdempotencyHeader = "X-Idempotency-Key"
)

type Client struct {
    accessToken     string
    baseURL         string
    idempotencyKeys bool
    client          *http.Client
}

// NewClient builds a client for the payments API. When idempotencyKeys is set
// every Charge call carries a fresh X-Idempotency-Key.
func NewClient(accessToken, baseURL string, idempotencyKeys bool) *Client {
    if baseURL == "" {
        baseURL = DefaultBaseURL
    }

    transport := &http.Transport{
        MaxIdleConns:        100,
        MaxIdleConnsPerHost: 20,
        MaxConnsPerHost:     100,
        IdleConnTimeout:     90 * time.Second,
        TLSHandshakeTimeout: 10 * time.Second,
    }

    return &Client{
        accessToken:     accessToken,
        baseURL:         strings.TrimRight(baseURL, "/"),
        idempotencyKeys: idempotencyKeys,
        client: &http.Client{
            Timeout:   RequestTimeout,
            Transport: transport,
        },
    }
}

// Charge creates a payment. Any transport failure or non-2xx status is an error;
// a 2xx answer is returned as is, whatever the payment status inside it.
func (c *Client) Charge(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
    startTime := time.Now()

    jsonPayload, err := json.Marshal(req)
    if err != nil {
        return nil, fmt.Errorf("error marshaling payment request: %w", err)
    }

    ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
    defer cancel()

    httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PaymentsPath, bytes.NewBuffer(jsonPayload))
    if err != nil {
        return nil, fmt.Errorf("error creating request: %w", err)
    }

    httpReq.Header.Set("Content-Type", "application/json")
    httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
    if c.idempotencyKeys {
        httpReq.Header.Set(IdempotencyHeader, uuid.New().String())
    }

    log.Printf("Sending payment request to Mercado Pago: method=%s plan=%s",
        req.PaymentMethodID, req.Metadata.Plan)

    resp, err := c.client.Do(httpReq)
    if err != nil {
        return nil, fmt.Errorf("error making request: %w", err)
    }
    defer resp.Body.Close()

    respBody, err := io.ReadAll(resp.Body)
    if err != nil {
        return nil, fmt.Errorf("error reading response body: %w", err)
    }

    log.Printf("Mercado Pago response received in %v with status %d",
        time.Since(startTime), resp.StatusCode)

    cleanBody := bytes.TrimPrefix(respBody, []byte("\ufeff"))

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        apiErr := &APIError{StatusCode: resp.StatusCode}
        var body errorResponse
        if err := json.Unmarshal(cleanBody, &body); err == nil {
            apiErr.Code = body.Error
            apiErr.Message = body.Message
            apiErr.Causes = body.Cause
        } else {
            apiErr.Message = strings.TrimSpace(string(cleanBody))
        }
        return nil, apiErr
    }

    var payment PaymentResponse
    if err := json.Unmarshal(cleanBody, &payment); err != nil {
        return nil, fmt.Errorf("error decoding response: %w, response body: %s", err, string(respBody))
    }
    if payment.ID == 0 {
        return nil, fmt.Errorf("mercadopago response without payment id: %s", string(respBody))
    }
    payment.Raw = json.RawMessage(cleanBody)

    return &payment, nil
}
