package database

import (
    "context"
    "database/sql"
    "errors"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "plan-payment-api/models"
)

func TestCreateNotification_DefaultsToPending(t *testing.T) {
    conn, mock := newMockConnection(t)

    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO email_notifications")).
        WithArgs(
            sqlmock.AnyArg(),
            "payment-1",
            "user-1",
            "maria@example.com",
            "Confirmação de Pagamento",
            "Obrigado por seu pagamento. Você adquiriu o plano: basic.",
            "PENDING",
            int64(0),
            sqlmock.AnyArg(),
        ).
        WillReturnResult(sqlmock.NewResult(0, 1))

    stored, err := conn.CreateNotification(context.Background(), &models.EmailNotification{
        PaymentID: "payment-1",
        UserID:    "user-1",
        Recipient: "maria@example.com",
        Subject:   "Confirmação de Pagamento",
        Content:   "Obrigado por seu pagamento. Você adquiriu o plano: basic.",
    })
    require.NoError(t, err)
    assert.NotEmpty(t, stored.ID)
    assert.Equal(t, models.EmailStatusPending, stored.Status)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotification(t *testing.T) {
    conn, mock := newMockConnection(t)
    created := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

    rows := sqlmock.NewRows([]string{
        "id", "payment_id", "user_id", "recipient", "subject", "content",
        "status", "attempts", "last_error", "created_at", "sent_at",
    }).AddRow("n-1", "payment-1", nil, "maria@example.com", "Assunto", "Corpo", "PENDING", int64(2), "timeout", created, nil)

    mock.ExpectQuery(regexp.QuoteMeta("FROM email_notifications")).WithArgs("n-1").WillReturnRows(rows)

    n, err := conn.GetNotification(context.Background(), "n-1")
    require.NoError(t, err)
    assert.Equal(t, "payment-1", n.PaymentID)
    assert.Empty(t, n.UserID)
    assert.Equal(t, models.EmailStatusPending, n.Status)
    assert.Equal(t, 2, n.Attempts)
    assert.Equal(t, "timeout", n.LastError)
    assert.Equal(t, created, n.CreatedAt)
    assert.Nil(t, n.SentAt)
}

func TestGetNotification_NotFound(t *testing.T) {
    conn, mock := newMockConnection(t)
    mock.ExpectQuery(regexp.QuoteMeta("FROM email_notifications")).WithArgs("missing").WillReturnError(sql.ErrNoRows)

    _, err := conn.GetNotification(context.Background(), "missing")
    assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestMarkNotificationSent(t *testing.T) {
    conn, mock := newMockConnection(t)
    mock.ExpectExec(regexp.QuoteMeta("UPDATE email_notifications")).
        WithArgs("SENT", sqlmock.AnyArg(), "n-1").
        WillReturnResult(sqlmock.NewResult(0, 1))

    assert.NoError(t, conn.MarkNotificationSent(context.Background(), "n-1"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkNotificationSent_NoRows(t *testing.T) {
    conn, mock := newMockConnection(t)
    mock.ExpectExec(regexp.QuoteMeta("UPDATE email_notifications")).
        WillReturnResult(sqlmock.NewResult(0, 0))

    assert.ErrorIs(t, conn.MarkNotificationSent(context.Background(), "n-1"), ErrNotificationNotFound)
}

func TestRecordNotificationFailure(t *testing.T) {
    cases := []struct {
        final  bool
        status string
    }{
        {false, "PENDING"},
        {true, "FAILED"},
    }
    for _, tc := range cases {
        conn, mock := newMockConnection(t)
        mock.ExpectExec(regexp.QuoteMeta("UPDATE email_notifications")).
            WithArgs(tc.status, "smtp: 421 try later", "n-1").
            WillReturnResult(sqlmock.NewResult(0, 1))

        err := conn.RecordNotificationFailure(context.Background(), "n-1", errors.New("smtp: 421 try later"), tc.final)
        assert.NoError(t, err)
        assert.NoError(t, mock.ExpectationsWereMet())
    }
}
