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

const participationColumns = `id, institution_id, event_id, student_id, expected_amount, paid_amount,
	status, created_at, updated_at`

type ParticipationRepository struct {
	server *server.Server
}

func NewParticipationRepository(s *server.Server) *ParticipationRepository {
	return &ParticipationRepository{server: s}
}

// EnrollSelection picks the students to enroll: explicit ids, or every
// active student (optionally of one grade) when StudentIDs is empty.
type EnrollSelection struct {
	StudentIDs []uuid.UUID
	Grade      string
	Expected   decimal.Decimal
}

// Enroll inserts participations for the selected students of the
// institution. Students already enrolled are left untouched and counted as
// skipped; explicit ids of no student in the institution come back as
// unknown.
func (r *ParticipationRepository) Enroll(ctx context.Context, institutionID, eventID uuid.UUID, sel EnrollSelection) (model.EnrollResult, error) {
	var result model.EnrollResult

	err := database.WithTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		var status model.EventStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM events WHERE institution_id = $1 AND id = $2 FOR SHARE`,
			institutionID, eventID).Scan(&status)
		if err != nil {
			if isNoRows(err) {
				return notFound("events")
			}
			return err
		}
		if !status.AcceptsEnrollment() {
			return model.ErrEventClosedForEnroll
		}

		args := pgx.NamedArgs{
			"institution_id": institutionID,
			"event_id":       eventID,
			"expected":       sel.Expected,
			"student_ids":    sel.StudentIDs,
			"grade":          optional(sel.Grade),
			"explicit":       len(sel.StudentIDs) > 0,
		}

		const candidates = `
			FROM students s
			WHERE s.institution_id = @institution_id
			  AND CASE WHEN @explicit::boolean
			           THEN s.id = ANY(@student_ids::uuid[])
			           ELSE s.status = 'active' AND (@grade::text IS NULL OR s.grade = @grade)
			      END`

		rows, err := tx.Query(ctx, `SELECT s.id`+candidates, args)
		if err != nil {
			return err
		}
		matched, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO event_participations (institution_id, event_id, student_id, expected_amount, paid_amount, status)
			SELECT @institution_id::uuid, @event_id::uuid, s.id, @expected::numeric, 0,
			       CASE WHEN @expected::numeric = 0 THEN 'paid' ELSE 'pending' END`+candidates+`
			ON CONFLICT ON CONSTRAINT unique_event_participations_student DO NOTHING`, args)
		if err != nil {
			return err
		}

		result = model.TallyEnrollment(sel.StudentIDs, matched, int(tag.RowsAffected()))
		return nil
	})

	return result, err
}

// ParticipantFilter narrows a participant listing.
type ParticipantFilter struct {
	Status model.ParticipationStatus
	Limit  int
	Offset int
}

const participantWhere = `
	WHERE p.institution_id = @institution_id AND p.event_id = @event_id
	  AND (@status::text IS NULL OR p.status = @status)`

func (r *ParticipationRepository) ListParticipants(ctx context.Context, institutionID, eventID uuid.UUID, f ParticipantFilter) ([]model.Participant, int, error) {
	args := pgx.NamedArgs{
		"institution_id": institutionID,
		"event_id":       eventID,
		"status":         optional(string(f.Status)),
		"limit":          f.Limit,
		"offset":         f.Offset,
	}

	var total int
	if err := r.server.DB.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_participations p`+participantWhere, args).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.server.DB.Pool.Query(ctx, `
		SELECT p.id, p.institution_id, p.event_id, p.student_id, p.expected_amount, p.paid_amount,
		       p.status, p.created_at, p.updated_at,
		       s.document_number, s.first_name, s.last_name, s.grade, s.section
		FROM event_participations p
		JOIN students s ON s.id = p.student_id`+participantWhere+`
		ORDER BY s.grade, s.last_name, s.first_name
		LIMIT @limit OFFSET @offset`, args)
	items, err := many[model.Participant](rows, err, "event_participations")
	return items, total, err
}

// Remove deletes a participation that never received money.
func (r *ParticipationRepository) Remove(ctx context.Context, institutionID, eventID, id uuid.UUID) error {
	return database.WithTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		var hasPayments bool
		err := tx.QueryRow(ctx, `
			SELECT p.paid_amount > 0
			       OR EXISTS (SELECT 1 FROM event_transactions t WHERE t.participation_id = p.id)
			FROM event_participations p
			WHERE p.institution_id = $1 AND p.event_id = $2 AND p.id = $3
			FOR UPDATE`, institutionID, eventID, id).Scan(&hasPayments)
		if err != nil {
			if isNoRows(err) {
				return notFound("event_participations")
			}
			return err
		}
		if hasPayments {
			return model.ErrParticipantHasPayments
		}
		return execOne(ctx, tx, "event_participations", `DELETE FROM event_participations WHERE id = $1`, id)
	})
}
