package mercadopago

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "sync"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func sampleRequest() PaymentRequest {
    return PaymentRequest{
        TransactionAmount: json.Number("99.90"),
        PaymentMethodID:   "pix",
        Payer: Payer{
            Email:          "maria@example.com",
            FirstName:      "Maria",
            LastName:       "Silva",
            Identification: Identification{Type: "CPF", Number: "52998224725"},
        },
        Description:  "Plano: premium",
        Metadata:     Metadata{UserID: "user-1", Plan: "premium"},
        Installments: 1,
    }
}

func TestCharge_Success(t *testing.T) {
    var mu sync.Mutex
    var gotBody map[string]interface{}
    var gotHeaders http.Header

    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        mu.Lock()
        defer mu.Unlock()
        assert.Equal(t, http.MethodPost, r.Method)
        assert.Equal(t, PaymentsPath, r.URL.Path)
        gotHeaders = r.Header.Clone()
        body, _ := io.ReadAll(r.Body)
        require.NoError(t, json.Unmarshal(body, &gotBody))

        w.WriteHeader(http.StatusCreated)
        io.WriteString(w, `{"id": 123456789, "status": "pending", "status_detail": "pending_waiting_transfer", "point_of_interaction": {"type": "PIX"}}`)
    }))
    defer srv.Close()

    client := NewClient("TEST-token", srv.URL, false)
    resp, err := client.Charge(context.Background(), sampleRequest())
    require.NoError(t, err)

    mu.Lock()
    defer mu.Unlock()
    assert.Equal(t, int64(123456789), resp.ID)
    assert.Equal(t, "pending", resp.Status)
    assert.Equal(t, "pending_waiting_transfer", resp.StatusDetail)
    assert.Contains(t, string(resp.Raw), "point_of_interaction")

    assert.Equal(t, "Bearer TEST-token", gotHeaders.Get("Authorization"))
    assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
    assert.Empty(t, gotHeaders.Get(IdempotencyHeader))

    assert.Equal(t, 99.90, gotBody["transaction_amount"])
    assert.Equal(t, "pix", gotBody["payment_method_id"])
    _, hasToken := gotBody["token"]
    assert.False(t, hasToken, "token must be omitted when empty")
}

func TestCharge_IdempotencyKeyPerCall(t *testing.T) {
    var mu sync.Mutex
    var keys []string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        mu.Lock()
        keys = append(keys, r.Header.Get(IdempotencyHeader))
        mu.Unlock()
        w.WriteHeader(http.StatusCreated)
        io.WriteString(w, `{"id": 1, "status": "pending"}`)
    }))
    defer srv.Close()

    client := NewClient("TEST-token", srv.URL, true)
    for i := 0; i < 2; i++ {
        _, err := client.Charge(context.Background(), sampleRequest())
        require.NoError(t, err)
    }

    mu.Lock()
    defer mu.Unlock()
    require.Len(t, keys, 2)
    assert.NotEmpty(t, keys[0])
    assert.NotEqual(t, keys[0], keys[1])
}

func TestCharge_APIError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusBadRequest)
        io.WriteString(w, `{"message": "invalid payer identification", "error": "bad_request", "status": 400, "cause": [{"code": 2067, "description": "Invalid user identification number."}]}`)
    }))
    defer srv.Close()

    client := NewClient("TEST-token", srv.URL, false)
    resp, err := client.Charge(context.Background(), sampleRequest())
    assert.Nil(t, resp)
    require.Error(t, err)

    var apiErr *APIError
    require.True(t, errors.As(err, &apiErr))
    assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
    assert.Equal(t, "bad_request", apiErr.Code)
    assert.Equal(t, "invalid payer identification", apiErr.Message)
    require.Len(t, apiErr.Causes, 1)
    assert.Contains(t, apiErr.Error(), "Invalid user identification number.")
}

func TestCharge_NonJSONError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusBadGateway)
        io.WriteString(w, "upstream unavailable")
    }))
    defer srv.Close()

    _, err := NewClient("TEST-token", srv.URL, false).Charge(context.Background(), sampleRequest())

    var apiErr *APIError
    require.True(t, errors.As(err, &apiErr))
    assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
    assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestCharge_MissingID(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusOK)
        io.WriteString(w, `{"status": "pending"}`)
    }))
    defer srv.Close()

    _, err := NewClient("TEST-token", srv.URL, false).Charge(context.Background(), sampleRequest())
    assert.Error(t, err)
}

func TestCharge_ContextCanceled(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusCreated)
        io.WriteString(w, `{"id": 1}`)
    }))
    defer srv.Close()

    ctx, cancel := context.WithCancel(context.Background())
    cancel()

    _, err := NewClient("TEST-token", srv.URL, false).Charge(ctx, sampleRequest())
    assert.ErrorIs(t, err, context.Canceled)
}

func TestPaymentResponse_MarshalJSONUsesRaw(t *testing.T) {
    raw := `{"id":42,"status":"approved","extra":true}`
    out, err := json.Marshal(PaymentResponse{ID: 42, Raw: json.RawMessage(raw)})
    require.NoError(t, err)
    assert.JSONEq(t, raw, string(out))

    out, err = json.Marshal(PaymentResponse{ID: 7, Status: "pending"})
    require.NoError(t, err)
    assert.JSONEq(t, `{"id":7,"status":"pending","status_detail":"","date_created":""}`, string(out))
}
