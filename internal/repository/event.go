package repository

import (
	"context"

	"github.com/deppfellow/edufinance/internal/database"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, institution_id, category_id, name, type, description, event_date,
	target_amount, amount_per_participant, total_collected, status, created_by, created_at, updated_at`

type EventRepository struct {
	server *server.Server
}

func NewEventRepository(s *server.Server) *EventRepository {
	return &EventRepository{server: s}
}

func eventArgs(e *model.Event) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":                     e.ID,
		"institution_id":         e.InstitutionID,
		"category_id":            e.CategoryID,
		"name":                   e.Name,
		"type":                   e.Type,
		"description":            e.Description,
		"event_date":             e.EventDate,
		"target_amount":          e.TargetAmount,
		"amount_per_participant": e.AmountPerParticipant,
		"status":                 e.Status,
		"created_by":             e.CreatedBy,
	}
}

func (r *EventRepository) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		INSERT INTO events (institution_id, category_id, name, type, description, event_date,
		                    target_amount, amount_per_participant, status, created_by)
		VALUES (@institution_id, @category_id, @name, @type, @description, @event_date,
		        @target_amount, @amount_per_participant, @status, @created_by)
		RETURNING `+eventColumns,
		eventArgs(e))
	return one[model.Event](rows, err, "events")
}

func (r *EventRepository) GetByID(ctx context.Context, institutionID, id uuid.UUID) (*model.Event, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE institution_id = $1 AND id = $2`,
		institutionID, id)
	return one[model.Event](rows, err, "events")
}

const eventFilterWhere = `
	WHERE institution_id = @institution_id
	  AND (@status::text IS NULL OR status = @status)
	  AND (@type::text IS NULL OR type = @type)`

func (r *EventRepository) List(ctx context.Context, institutionID uuid.UUID, f model.EventFilter) ([]model.Event, int, error) {
	args := pgx.NamedArgs{
		"institution_id": institutionID,
		"status":         optional(string(f.Status)),
		"type":           optional(string(f.Type)),
		"limit":          f.Limit,
		"offset":         f.Offset,
	}

	var total int
	if err := r.server.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`+eventFilterWhere, args).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+eventColumns+` FROM events`+eventFilterWhere+`
		ORDER BY event_date DESC NULLS LAST, created_at DESC
		LIMIT @limit OFFSET @offset`, args)
	items, err := many[model.Event](rows, err, "events")
	return items, total, err
}

// Update writes the editable columns; total_collected belongs to the ledger.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) (*model.Event, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		UPDATE events
		SET category_id = @category_id, name = @name, type = @type, description = @description,
		    event_date = @event_date, target_amount = @target_amount,
		    amount_per_participant = @amount_per_participant, status = @status
		WHERE institution_id = @institution_id AND id = @id
		RETURNING `+eventColumns,
		eventArgs(e))
	return one[model.Event](rows, err, "events")
}

// Delete removes an event and its participations unless a ledger
// transaction exists, in which case model.ErrEventHasTransactions is returned.
func (r *EventRepository) Delete(ctx context.Context, institutionID, id uuid.UUID) error {
	return database.WithTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		var hasTransactions bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM event_transactions WHERE event_id = e.id)
			FROM events e
			WHERE e.institution_id = $1 AND e.id = $2
			FOR UPDATE`, institutionID, id).Scan(&hasTransactions)
		if err != nil {
			if isNoRows(err) {
				return notFound("events")
			}
			return err
		}
		if hasTransactions {
			return model.ErrEventHasTransactions
		}

		// event_participations cascade.
		return execOne(ctx, tx, "events", `DELETE FROM events WHERE id = $1`, id)
	})
}

func (r *EventRepository) Summary(ctx context.Context, institutionID, id uuid.UUID) (*model.EventSummary, error) {
	event, err := r.GetByID(ctx, institutionID, id)
	if err != nil {
		return nil, err
	}

	summary := &model.EventSummary{EventID: id}
	err = r.server.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'partial'),
		       COUNT(*) FILTER (WHERE status = 'paid'),
		       COALESCE(SUM(expected_amount), 0),
		       COALESCE(SUM(paid_amount), 0)
		FROM event_participations
		WHERE institution_id = $1 AND event_id = $2`, institutionID, id).Scan(
		&summary.Participants,
		&summary.Pending,
		&summary.Partial,
		&summary.Paid,
		&summary.TotalExpected,
		&summary.TotalCollected,
	)
	if err != nil {
		return nil, err
	}

	summary.Finish(event.TargetAmount)
	return summary, nil
}
