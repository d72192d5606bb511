package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-payment-api/models"
	"plan-payment-api/queue"
)

type fakeStore struct {
	created  []*models.EmailNotification
	byID     map[string]*models.EmailNotification
	sent     []string
	failures []bool
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]*models.EmailNotification{}}
}

func (f *fakeStore) CreateNotification(_ context.Context, n *models.EmailNotification) (*models.EmailNotification, error) {
	if f.err != nil {
		return nil, f.err
	}
	stored := *n
	stored.ID = "n-1"
	stored.Status = models.EmailStatusPending
	f.created = append(f.created, &stored)
	f.byID[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeStore) GetNotification(_ context.Context, id string) (*models.EmailNotification, error) {
	n, ok := f.byID[id]
	if !ok {
		return nil, errors.New("notification not found")
	}
	return n, nil
}

func (f *fakeStore) MarkNotificationSent(_ context.Context, id string) error {
	f.sent = append(f.sent, id)
	f.byID[id].Status = models.EmailStatusSent
	return nil
}

func (f *fakeStore) RecordNotificationFailure(_ context.Context, id string, _ error, final bool) error {
	f.failures = append(f.failures, final)
	if final {
		f.byID[id].Status = models.EmailStatusFailed
	}
	return nil
}

type fakeJobs struct {
	jobs []map[string]interface{}
	err  error
}

func (f *fakeJobs) Enqueue(_ context.Context, jobType queue.JobType, data map[string]interface{}) (*queue.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.jobs = append(f.jobs, data)
	return &queue.Job{ID: "job-1", Type: jobType, Data: data}, nil
}

type fakeSender struct {
	to, subject, body string
	calls             int
	err               error
}

func (f *fakeSender) SendEmail(_ context.Context, to, subject, body string) error {
	f.calls++
	f.to, f.subject, f.body = to, subject, body
	return f.err
}

func confirmation() *models.EmailNotification {
	return &models.EmailNotification{
		PaymentID: "payment-1",
		UserID:    "user-1",
		Recipient: "maria@example.com",
		Subject:   "Confirmação de Pagamento",
		Content:   "Obrigado por seu pagamento. Você adquiriu o plano: basic.",
	}
}

func TestSend_StoresAndQueues(t *testing.T) {
	store, jobs := newFakeStore(), &fakeJobs{}
	svc := NewNotificationService(store, jobs, &fakeSender{})

	n, err := svc.Send(context.Background(), confirmation())
	require.NoError(t, err)

	assert.Equal(t, "n-1", n.ID)
	assert.Equal(t, models.EmailStatusPending, n.Status)
	require.Len(t, jobs.jobs, 1)
	assert.Equal(t, "n-1", jobs.jobs[0]["notification_id"])
}

func TestSend_StoreFailure(t *testing.T) {
	storeErr := errors.New("db down")
	store, jobs := newFakeStore(), &fakeJobs{}
	store.err = storeErr
	svc := NewNotificationService(store, jobs, &fakeSender{})

	_, err := svc.Send(context.Background(), confirmation())
	assert.Same(t, storeErr, err)
	assert.Empty(t, jobs.jobs)
}

func TestSend_QueueFailure(t *testing.T) {
	queueErr := errors.New("redis down")
	svc := NewNotificationService(newFakeStore(), &fakeJobs{err: queueErr}, &fakeSender{})

	_, err := svc.Send(context.Background(), confirmation())
	assert.ErrorIs(t, err, queueErr)
}

func TestDeliver_Success(t *testing.T) {
	store, sender := newFakeStore(), &fakeSender{}
	svc := NewNotificationService(store, &fakeJobs{}, sender)
	_, err := svc.Send(context.Background(), confirmation())
	require.NoError(t, err)

	require.NoError(t, svc.Deliver(context.Background(), "n-1", false))

	assert.Equal(t, "maria@example.com", sender.to)
	assert.Equal(t, "Confirmação de Pagamento", sender.subject)
	assert.Contains(t, sender.body, "Você adquiriu o plano: basic.")
	assert.Equal(t, []string{"n-1"}, store.sent)

	// Redelivery of an already sent notification is a no-op.
	require.NoError(t, svc.Deliver(context.Background(), "n-1", false))
	assert.Equal(t, 1, sender.calls)
}

func TestDeliver_FailureRecorded(t *testing.T) {
	smtpErr := errors.New("421 service not available")
	store, sender := newFakeStore(), &fakeSender{err: smtpErr}
	svc := NewNotificationService(store, &fakeJobs{}, sender)
	_, err := svc.Send(context.Background(), confirmation())
	require.NoError(t, err)

	err = svc.Deliver(context.Background(), "n-1", false)
	assert.ErrorIs(t, err, smtpErr)
	assert.Equal(t, models.EmailStatusPending, store.byID["n-1"].Status)

	err = svc.Deliver(context.Background(), "n-1", true)
	assert.ErrorIs(t, err, smtpErr)
	assert.Equal(t, []bool{false, true}, store.failures)
	assert.Equal(t, models.EmailStatusFailed, store.byID["n-1"].Status)
	assert.Empty(t, store.sent)
}

func TestRenderNotification_Escapes(t *testing.T) {
	body := RenderNotification("Confirmação", "plano <b>pro</b> & mais")

	assert.Contains(t, body, "<title>Confirmação</title>")
	assert.Contains(t, body, "plano &lt;b&gt;pro&lt;/b&gt; &amp; mais")
	assert.Contains(t, body, `width="100%"`)
}

func TestSMTPHeaders(t *testing.T) {
	s := NewSMTPService(SMTPConfig{From: "no-reply@example.com", FromName: "Planos"})
	h := s.headers("maria@example.com", "Confirmação de Pagamento")

	assert.True(t, strings.HasPrefix(h, "From: Planos <no-reply@example.com>\r\n"))
	assert.Contains(t, h, "To: maria@example.com\r\n")
	assert.Contains(t, h, "Subject: =?utf-8?q?Confirma=C3=A7=C3=A3o_de_Pagamento?=\r\n")
	assert.True(t, strings.HasSuffix(h, "\r\n\r\n"))
}
