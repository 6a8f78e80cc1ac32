package job

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/edufinance/internal/lib/email"
	"github.com/hibiken/asynq"
)

const (
	TaskWelcome        = "email:welcome"
	TaskPaymentReceipt = "email:payment_receipt"
	TaskReconcile      = "ledger:reconcile"
)

// ReconcileSchedule is the cron spec of the ledger reconciliation.
const ReconcileSchedule = "@daily"

type WelcomeEmailPayload struct {
	To              string `json:"to"`
	FirstName       string `json:"first_name"`
	InstitutionName string `json:"institution_name"`
	Role            string `json:"role"`
}

func NewWelcomeEmailTask(p WelcomeEmailPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// ReceiptEmailPayload carries preformatted amounts so the worker needs no
// database access.
type ReceiptEmailPayload struct {
	To            string `json:"to"`
	GuardianName  string `json:"guardian_name"`
	StudentName   string `json:"student_name"`
	EventName     string `json:"event_name"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	Reference     string `json:"reference"`
	PaidAmount    string `json:"paid_amount"`
	Outstanding   string `json:"outstanding"`
	RecordedAt    string `json:"recorded_at"`
	TransactionID string `json:"transaction_id"`
}

func (p ReceiptEmailPayload) templateData() email.ReceiptData {
	return email.ReceiptData{
		GuardianName:  p.GuardianName,
		StudentName:   p.StudentName,
		EventName:     p.EventName,
		Kind:          p.Kind,
		Amount:        p.Amount,
		Method:        p.Method,
		Reference:     p.Reference,
		PaidAmount:    p.PaidAmount,
		Outstanding:   p.Outstanding,
		RecordedAt:    p.RecordedAt,
		TransactionID: p.TransactionID,
	}
}

// NewPaymentReceiptTask goes to the critical queue; the task id is the
// transaction id so a receipt is enqueued at most once.
func NewPaymentReceiptTask(p ReceiptEmailPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Queue("critical"),
		asynq.Timeout(30 * time.Second),
	}
	if p.TransactionID != "" {
		opts = append(opts, asynq.TaskID("receipt:"+p.TransactionID))
	}

	return asynq.NewTask(TaskPaymentReceipt, payload, opts...), nil
}

func NewReconcileTask() *asynq.Task {
	return asynq.NewTask(
		TaskReconcile,
		nil,
		asynq.MaxRetry(1),
		asynq.Queue("low"),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(time.Hour),
	)
}
