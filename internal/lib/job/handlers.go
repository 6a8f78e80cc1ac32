package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/edufinance/internal/config"
	"github.com/deppfellow/edufinance/internal/lib/email"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Mailer sends the rendered emails.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to string, data email.WelcomeData) error
	SendPaymentReceipt(ctx context.Context, to string, data email.ReceiptData) error
}

// Reconciler recomputes cached ledger totals.
type Reconciler interface {
	Reconcile(ctx context.Context) (model.ReconcileReport, error)
}

// InitHandlers builds the Resend mailer. Call it before Start.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	j.mailer = email.NewClient(cfg, logger)
}

// SetReconciler installs the ledger reconciler used by the scheduled task.
func (j *JobService) SetReconciler(r Reconciler) {
	j.reconciler = r
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcome, j.handleWelcomeEmailTask)
	mux.HandleFunc(TaskPaymentReceipt, j.handlePaymentReceiptTask)
	mux.HandleFunc(TaskReconcile, j.handleReconcileTask)
	return mux
}

func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w: %w", err, asynq.SkipRetry)
	}
	if j.mailer == nil {
		return fmt.Errorf("mailer not initialized")
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("processing welcome email task")

	err := j.mailer.SendWelcomeEmail(ctx, p.To, email.WelcomeData{
		FirstName:       p.FirstName,
		InstitutionName: p.InstitutionName,
		Role:            p.Role,
	})
	if err != nil {
		j.logger.Error().
			Str("type", "welcome").
			Str("to", p.To).
			Err(err).
			Msg("failed to send welcome email")
		return err
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("to", p.To).
		Msg("sent welcome email")

	return nil
}

func (j *JobService) handlePaymentReceiptTask(ctx context.Context, t *asynq.Task) error {
	var p ReceiptEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal receipt payload: %w: %w", err, asynq.SkipRetry)
	}
	if j.mailer == nil {
		return fmt.Errorf("mailer not initialized")
	}

	log := j.logger.With().
		Str("type", "payment_receipt").
		Str("transaction_id", p.TransactionID).
		Logger()

	if err := j.mailer.SendPaymentReceipt(ctx, p.To, p.templateData()); err != nil {
		log.Error().Err(err).Msg("failed to send payment receipt")
		return err
	}

	log.Info().Msg("sent payment receipt")
	return nil
}

func (j *JobService) handleReconcileTask(ctx context.Context, _ *asynq.Task) error {
	if j.reconciler == nil {
		j.logger.Warn().Msg("ledger reconciler not configured, skipping")
		return nil
	}

	report, err := j.reconciler.Reconcile(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("ledger reconciliation failed")
		return err
	}

	event := j.logger.Info()
	if report.Drifted > 0 {
		event = j.logger.Warn()
	}
	event.
		Int("events", report.Events).
		Int("drifted", report.Drifted).
		Msg("ledger reconciliation finished")

	return nil
}
