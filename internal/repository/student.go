package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/edufinance/internal/database"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const studentColumns = `id, institution_id, document_number, first_name, last_name, grade, section,
	guardian_name, guardian_phone, guardian_email, status, created_at, updated_at`

// studentCopyColumns are the columns written by the bulk import.
var studentCopyColumns = []string{
	"institution_id", "document_number", "first_name", "last_name", "grade", "section",
	"guardian_name", "guardian_phone", "guardian_email", "status",
}

type StudentRepository struct {
	server *server.Server
}

func NewStudentRepository(s *server.Server) *StudentRepository {
	return &StudentRepository{server: s}
}

func (r *StudentRepository) Create(ctx context.Context, s *model.Student) (*model.Student, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		INSERT INTO students (institution_id, document_number, first_name, last_name, grade, section,
		                      guardian_name, guardian_phone, guardian_email, status)
		VALUES (@institution_id, @document_number, @first_name, @last_name, @grade, @section,
		        @guardian_name, @guardian_phone, @guardian_email, @status)
		RETURNING `+studentColumns,
		studentArgs(s))
	return one[model.Student](rows, err, "students")
}

func studentArgs(s *model.Student) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":              s.ID,
		"institution_id":  s.InstitutionID,
		"document_number": s.DocumentNumber,
		"first_name":      s.FirstName,
		"last_name":       s.LastName,
		"grade":           s.Grade,
		"section":         s.Section,
		"guardian_name":   s.GuardianName,
		"guardian_phone":  s.GuardianPhone,
		"guardian_email":  s.GuardianEmail,
		"status":          s.Status,
	}
}

func (r *StudentRepository) GetByID(ctx context.Context, institutionID, id uuid.UUID) (*model.Student, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students WHERE institution_id = $1 AND id = $2`,
		institutionID, id)
	return one[model.Student](rows, err, "students")
}

const studentFilterWhere = `
	WHERE institution_id = @institution_id
	  AND (@grade::text IS NULL OR grade = @grade)
	  AND (@status::text IS NULL OR status = @status)
	  AND (@search::text IS NULL
	       OR document_number ILIKE '%' || @search || '%'
	       OR (first_name || ' ' || last_name) ILIKE '%' || @search || '%')`

func (r *StudentRepository) List(ctx context.Context, institutionID uuid.UUID, f model.StudentFilter) ([]model.Student, int, error) {
	args := pgx.NamedArgs{
		"institution_id": institutionID,
		"grade":          optional(f.Grade),
		"status":         optional(string(f.Status)),
		"search":         optional(f.Search),
		"limit":          f.Limit,
		"offset":         f.Offset,
	}

	var total int
	if err := r.server.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`+studentFilterWhere, args).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+studentColumns+` FROM students`+studentFilterWhere+`
		ORDER BY grade, last_name, first_name
		LIMIT @limit OFFSET @offset`, args)
	items, err := many[model.Student](rows, err, "students")
	return items, total, err
}

// ListAll returns the whole roster in export order.
func (r *StudentRepository) ListAll(ctx context.Context, institutionID uuid.UUID) ([]model.Student, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+studentColumns+` FROM students
		WHERE institution_id = $1
		ORDER BY grade, section NULLS FIRST, last_name, first_name`, institutionID)
	return many[model.Student](rows, err, "students")
}

func (r *StudentRepository) Update(ctx context.Context, s *model.Student) (*model.Student, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		UPDATE students
		SET document_number = @document_number, first_name = @first_name, last_name = @last_name,
		    grade = @grade, section = @section, guardian_name = @guardian_name,
		    guardian_phone = @guardian_phone, guardian_email = @guardian_email, status = @status
		WHERE institution_id = @institution_id AND id = @id
		RETURNING `+studentColumns,
		studentArgs(s))
	return one[model.Student](rows, err, "students")
}

// Delete removes a student together with its unpaid participations. It
// fails with model.ErrStudentHasPayments when money was ever recorded.
func (r *StudentRepository) Delete(ctx context.Context, institutionID, id uuid.UUID) error {
	return database.WithTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		var exists, hasPayments bool
		err := tx.QueryRow(ctx, `
			SELECT TRUE,
			       EXISTS (SELECT 1 FROM event_participations p
			               WHERE p.student_id = s.id AND p.paid_amount > 0)
			       OR EXISTS (SELECT 1 FROM event_transactions t WHERE t.student_id = s.id)
			FROM students s
			WHERE s.institution_id = $1 AND s.id = $2
			FOR UPDATE`, institutionID, id).Scan(&exists, &hasPayments)
		if err != nil {
			if isNoRows(err) {
				return notFound("students")
			}
			return err
		}
		if hasPayments {
			return model.ErrStudentHasPayments
		}

		if _, err := tx.Exec(ctx, `DELETE FROM event_participations WHERE student_id = $1`, id); err != nil {
			return err
		}
		return execOne(ctx, tx, "students", `DELETE FROM students WHERE institution_id = $1 AND id = $2`, institutionID, id)
	})
}

// ExistingDocuments returns which of docs are already registered.
func (r *StudentRepository) ExistingDocuments(ctx context.Context, institutionID uuid.UUID, docs []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(docs) == 0 {
		return found, nil
	}

	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT document_number FROM students WHERE institution_id = $1 AND document_number = ANY($2)`,
		institutionID, docs)
	if err != nil {
		return nil, err
	}
	existing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect documents: %w", err)
	}
	for _, d := range existing {
		found[d] = true
	}
	return found, nil
}

// InsertMany bulk-loads students with COPY inside one transaction; either
// all rows are stored or none.
func (r *StudentRepository) InsertMany(ctx context.Context, students []*model.Student) (int, error) {
	if len(students) == 0 {
		return 0, nil
	}

	var inserted int64
	err := database.WithTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"students"},
			studentCopyColumns,
			pgx.CopyFromSlice(len(students), func(i int) ([]any, error) {
				s := students[i]
				return []any{
					s.InstitutionID, s.DocumentNumber, s.FirstName, s.LastName, s.Grade, s.Section,
					s.GuardianName, s.GuardianPhone, s.GuardianEmail, string(s.Status),
				}, nil
			}),
		)
		inserted = n
		return err
	})
	return int(inserted), err
}
