package repository

import (
	"context"

	"github.com/deppfellow/edufinance/internal/database"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, institution_id, event_id, participation_id, student_id, account_id, type,
	amount, method, reference, notes, balance_after, recorded_by, created_at`

// LedgerRepository moves money: it is the only writer of paid amounts,
// account balances and event totals.
type LedgerRepository struct {
	server *server.Server
}

func NewLedgerRepository(s *server.Server) *LedgerRepository {
	return &LedgerRepository{server: s}
}

// Record applies a payment or refund in a single transaction. The event
// row is locked before the participation row so concurrent movements on the
// same event serialize in a fixed order.
func (r *LedgerRepository) Record(ctx context.Context, m model.LedgerMovement) (*model.LedgerReceipt, error) {
	receipt := &model.LedgerReceipt{}

	err := database.WithTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+eventColumns+` FROM events
			WHERE institution_id = $1 AND id = $2 FOR UPDATE`, m.InstitutionID, m.EventID)
		event, err := one[model.Event](rows, err, "events")
		if err != nil {
			return err
		}
		if !event.Status.AcceptsPayments() {
			return model.ErrEventNotActive
		}

		rows, err = tx.Query(ctx, `SELECT `+participationColumns+` FROM event_participations
			WHERE institution_id = $1 AND event_id = $2 AND id = $3 FOR UPDATE`,
			m.InstitutionID, m.EventID, m.ParticipationID)
		participation, err := one[model.EventParticipation](rows, err, "event_participations")
		if err != nil {
			return err
		}

		delta := m.Amount
		switch m.Type {
		case model.TransactionRefund:
			err = participation.ApplyRefund(m.Amount)
			delta = m.Amount.Neg()
		default:
			err = participation.ApplyPayment(m.Amount)
		}
		if err != nil {
			return err
		}

		rows, err = tx.Query(ctx, `UPDATE event_participations
			SET paid_amount = $2, status = $3
			WHERE id = $1
			RETURNING `+participationColumns,
			participation.ID, participation.PaidAmount, participation.Status)
		participation, err = one[model.EventParticipation](rows, err, "event_participations")
		if err != nil {
			return err
		}

		if m.AccountID != nil {
			if err := adjustBalance(ctx, tx, m.InstitutionID, *m.AccountID, delta); err != nil {
				return err
			}
		}

		rows, err = tx.Query(ctx, `
			INSERT INTO event_transactions (institution_id, event_id, participation_id, student_id, account_id,
			                                type, amount, method, reference, notes, balance_after, recorded_by)
			VALUES (@institution_id, @event_id, @participation_id, @student_id, @account_id,
			        @type, @amount, @method, @reference, @notes, @balance_after, @recorded_by)
			RETURNING `+transactionColumns,
			pgx.NamedArgs{
				"institution_id":   m.InstitutionID,
				"event_id":         m.EventID,
				"participation_id": participation.ID,
				"student_id":       participation.StudentID,
				"account_id":       m.AccountID,
				"type":             m.Type,
				"amount":           m.Amount,
				"method":           m.Method,
				"reference":        m.Reference,
				"notes":            m.Notes,
				"balance_after":    participation.PaidAmount,
				"recorded_by":      m.RecordedBy,
			})
		transaction, err := one[model.EventTransaction](rows, err, "event_transactions")
		if err != nil {
			return err
		}

		total, err := recomputeEventTotal(ctx, tx, event.ID)
		if err != nil {
			return err
		}
		event.TotalCollected = total

		rows, err = tx.Query(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, participation.StudentID)
		student, err := one[model.Student](rows, err, "students")
		if err != nil {
			return err
		}

		receipt.Transaction = *transaction
		receipt.Participation = *participation
		receipt.EventTotal = total
		receipt.Event = event
		receipt.Student = student
		return nil
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

func recomputeEventTotal(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE events
		SET total_collected = (
			SELECT COALESCE(SUM(paid_amount), 0) FROM event_participations WHERE event_id = $1
		)
		WHERE id = $1
		RETURNING total_collected`, eventID).Scan(&total)
	return total, err
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	Type   model.TransactionType
	Limit  int
	Offset int
}

const transactionWhere = `
	WHERE institution_id = @institution_id AND event_id = @event_id
	  AND (@type::text IS NULL OR type = @type)`

func (r *LedgerRepository) ListTransactions(ctx context.Context, institutionID, eventID uuid.UUID, f TransactionFilter) ([]model.EventTransaction, int, error) {
	args := pgx.NamedArgs{
		"institution_id": institutionID,
		"event_id":       eventID,
		"type":           optional(string(f.Type)),
		"limit":          f.Limit,
		"offset":         f.Offset,
	}

	var total int
	if err := r.server.DB.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_transactions`+transactionWhere, args).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+transactionColumns+` FROM event_transactions`+transactionWhere+`
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`, args)
	items, err := many[model.EventTransaction](rows, err, "event_transactions")
	return items, total, err
}

// Reconcile rewrites total_collected of every event whose cached total
// differs from the sum of its participations. Every event row is locked
// first, in the same event-first order Record uses, so the sums are read
// only after in-flight movements have committed.
func (r *LedgerRepository) Reconcile(ctx context.Context) (model.ReconcileReport, error) {
	var report model.ReconcileReport

	err := database.WithTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `SELECT id FROM events ORDER BY id FOR UPDATE`)
		if err != nil {
			return err
		}
		report.Events = int(tag.RowsAffected())

		tag, err = tx.Exec(ctx, `
			UPDATE events e
			SET total_collected = t.collected
			FROM (
				SELECT ev.id, COALESCE(SUM(p.paid_amount), 0) AS collected
				FROM events ev
				LEFT JOIN event_participations p ON p.event_id = ev.id
				GROUP BY ev.id
			) t
			WHERE e.id = t.id AND e.total_collected <> t.collected`)
		if err != nil {
			return err
		}
		report.Drifted = int(tag.RowsAffected())
		return nil
	})

	return report, err
}
