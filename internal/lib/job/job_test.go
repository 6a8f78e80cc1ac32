package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/deppfellow/edufinance/internal/lib/email"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	welcomeTo string
	welcome   email.WelcomeData
	receiptTo string
	receipt   email.ReceiptData
	err       error
}

func (f *fakeMailer) SendWelcomeEmail(_ context.Context, to string, data email.WelcomeData) error {
	f.welcomeTo, f.welcome = to, data
	return f.err
}

func (f *fakeMailer) SendPaymentReceipt(_ context.Context, to string, data email.ReceiptData) error {
	f.receiptTo, f.receipt = to, data
	return f.err
}

type fakeReconciler struct {
	report model.ReconcileReport
	err    error
	calls  int
}

func (f *fakeReconciler) Reconcile(context.Context) (model.ReconcileReport, error) {
	f.calls++
	return f.report, f.err
}

func newTestService() *JobService {
	logger := zerolog.Nop()
	return &JobService{logger: &logger}
}

func TestNewPaymentReceiptTask(t *testing.T) {
	task, err := NewPaymentReceiptTask(ReceiptEmailPayload{To: "p@example.com", TransactionID: "tx-1", Amount: "10.00"})
	require.NoError(t, err)

	assert.Equal(t, TaskPaymentReceipt, task.Type())

	var decoded ReceiptEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, "10.00", decoded.Amount)
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	j := newTestService()
	mailer := &fakeMailer{}
	j.mailer = mailer

	task, err := NewWelcomeEmailTask(WelcomeEmailPayload{To: "ana@example.com", FirstName: "Ana", Role: "rector"})
	require.NoError(t, err)

	require.NoError(t, j.handleWelcomeEmailTask(context.Background(), task))
	assert.Equal(t, "ana@example.com", mailer.welcomeTo)
	assert.Equal(t, "Ana", mailer.welcome.FirstName)
	assert.Equal(t, "rector", mailer.welcome.Role)
}

func TestHandleWelcomeEmailTask_BadPayloadSkipsRetry(t *testing.T) {
	j := newTestService()
	j.mailer = &fakeMailer{}

	err := j.handleWelcomeEmailTask(context.Background(), asynq.NewTask(TaskWelcome, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlePaymentReceiptTask(t *testing.T) {
	j := newTestService()
	mailer := &fakeMailer{}
	j.mailer = mailer

	task, err := NewPaymentReceiptTask(ReceiptEmailPayload{
		To:          "parent@example.com",
		StudentName: "Ana Lopez",
		EventName:   "Raffle",
		Kind:        "payment",
		Outstanding: "5.00",
	})
	require.NoError(t, err)

	require.NoError(t, j.handlePaymentReceiptTask(context.Background(), task))
	assert.Equal(t, "parent@example.com", mailer.receiptTo)
	assert.Equal(t, "Raffle", mailer.receipt.EventName)
	assert.Equal(t, "5.00", mailer.receipt.Outstanding)
}

func TestHandlePaymentReceiptTask_MailerError(t *testing.T) {
	j := newTestService()
	j.mailer = &fakeMailer{err: errors.New("provider down")}

	task, err := NewPaymentReceiptTask(ReceiptEmailPayload{To: "parent@example.com"})
	require.NoError(t, err)

	assert.Error(t, j.handlePaymentReceiptTask(context.Background(), task))
}

func TestHandleReconcileTask(t *testing.T) {
	j := newTestService()

	require.NoError(t, j.handleReconcileTask(context.Background(), NewReconcileTask()), "no reconciler is a no-op")

	rec := &fakeReconciler{report: model.ReconcileReport{Events: 4, Drifted: 1}}
	j.SetReconciler(rec)
	require.NoError(t, j.handleReconcileTask(context.Background(), NewReconcileTask()))
	assert.Equal(t, 1, rec.calls)

	rec.err = errors.New("db gone")
	assert.Error(t, j.handleReconcileTask(context.Background(), NewReconcileTask()))
}
