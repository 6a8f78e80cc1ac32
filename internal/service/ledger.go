package service

import (
	"context"

	"github.com/deppfellow/edufinance/internal/lib/job"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/repository"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
)

type ledgerStore interface {
	Record(ctx context.Context, m model.LedgerMovement) (*model.LedgerReceipt, error)
	ListTransactions(ctx context.Context, institutionID, eventID uuid.UUID, f repository.TransactionFilter) ([]model.EventTransaction, int, error)
	Reconcile(ctx context.Context) (model.ReconcileReport, error)
}

// LedgerService records payments and refunds against event participations.
type LedgerService struct {
	server *server.Server
	ledger ledgerStore
	events eventGetter
	cache  dashboardCache
	jobs   taskEnqueuer
}

func NewLedgerService(s *server.Server, ledger ledgerStore, events eventGetter, jobs taskEnqueuer) *LedgerService {
	return &LedgerService{server: s, ledger: ledger, events: events, cache: s.Cache, jobs: jobs}
}

func (s *LedgerService) RecordPayment(ctx context.Context, p model.Principal, institutionID uuid.UUID, req *model.PaymentRequest) (*model.LedgerReceipt, error) {
	return s.record(ctx, p, institutionID, req, model.TransactionPayment)
}

// RecordRefund returns money to a participant; it never exceeds what was
// paid.
func (s *LedgerService) RecordRefund(ctx context.Context, p model.Principal, institutionID uuid.UUID, req *model.PaymentRequest) (*model.LedgerReceipt, error) {
	return s.record(ctx, p, institutionID, req, model.TransactionRefund)
}

func (s *LedgerService) record(ctx context.Context, p model.Principal, institutionID uuid.UUID, req *model.PaymentRequest, kind model.TransactionType) (*model.LedgerReceipt, error) {
	movement := req.Movement(kind, p.UserID)
	movement.InstitutionID = institutionID

	receipt, err := s.ledger.Record(ctx, movement)
	if err != nil {
		return nil, domainError(err)
	}

	logFor(ctx, s.server.Logger).Info().
		Str("transaction_id", receipt.Transaction.ID.String()).
		Str("event_id", movement.EventID.String()).
		Str("participation_id", movement.ParticipationID.String()).
		Str("type", string(kind)).
		Str("amount", movement.Amount.StringFixed(2)).
		Str("status", string(receipt.Participation.Status)).
		Msg("ledger movement recorded")

	invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	s.enqueueReceipt(ctx, receipt)

	return receipt, nil
}

func (s *LedgerService) enqueueReceipt(ctx context.Context, receipt *model.LedgerReceipt) {
	if s.jobs == nil || receipt.Student == nil || receipt.Student.GuardianEmail == nil {
		return
	}

	if err := s.jobs.EnqueuePaymentReceipt(ctx, receiptPayload(receipt)); err != nil {
		logFor(ctx, s.server.Logger).Error().
			Err(err).
			Str("transaction_id", receipt.Transaction.ID.String()).
			Msg("failed to enqueue payment receipt")
	}
}

func receiptPayload(r *model.LedgerReceipt) job.ReceiptEmailPayload {
	tx := r.Transaction
	payload := job.ReceiptEmailPayload{
		To:            *r.Student.GuardianEmail,
		StudentName:   r.Student.FullName(),
		Kind:          string(tx.Type),
		Amount:        tx.Amount.StringFixed(2),
		Method:        string(tx.Method),
		PaidAmount:    r.Participation.PaidAmount.StringFixed(2),
		Outstanding:   r.Participation.Outstanding().StringFixed(2),
		RecordedAt:    tx.CreatedAt.UTC().Format("2006-01-02 15:04 MST"),
		TransactionID: tx.ID.String(),
	}
	if r.Student.GuardianName != nil {
		payload.GuardianName = *r.Student.GuardianName
	}
	if r.Event != nil {
		payload.EventName = r.Event.Name
	}
	if tx.Reference != nil {
		payload.Reference = *tx.Reference
	}
	return payload
}

func (s *LedgerService) ListTransactions(ctx context.Context, institutionID uuid.UUID, req *model.ListTransactionsRequest) (model.Page[model.EventTransaction], error) {
	params := req.ListParams.Normalize()

	if _, err := s.events.GetByID(ctx, institutionID, req.UUID()); err != nil {
		return model.Page[model.EventTransaction]{}, err
	}

	items, total, err := s.ledger.ListTransactions(ctx, institutionID, req.UUID(), repository.TransactionFilter{
		Type:   model.TransactionType(req.Type),
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return model.Page[model.EventTransaction]{}, err
	}
	return model.NewPage(items, total, params), nil
}

// Reconcile recomputes event totals from the participations. It runs from
// the scheduled job.
func (s *LedgerService) Reconcile(ctx context.Context) (model.ReconcileReport, error) {
	return s.ledger.Reconcile(ctx)
}
