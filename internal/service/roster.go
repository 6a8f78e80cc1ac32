package service

import (
	"context"
	"errors"
	"io"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/lib/roster"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
)

type rosterStore interface {
	ListAll(ctx context.Context, institutionID uuid.UUID) ([]model.Student, error)
	ExistingDocuments(ctx context.Context, institutionID uuid.UUID, docs []string) (map[string]bool, error)
	InsertMany(ctx context.Context, students []*model.Student) (int, error)
}

type RosterService struct {
	server   *server.Server
	students rosterStore
	cache    dashboardCache
}

func NewRosterService(s *server.Server, students rosterStore) *RosterService {
	return &RosterService{server: s, students: students, cache: s.Cache}
}

// Import loads a roster CSV. Rows that fail validation, repeat a document
// of the same file or match an existing student are reported; the rest are
// inserted together.
func (s *RosterService) Import(ctx context.Context, institutionID uuid.UUID, r io.Reader) (*model.ImportResult, error) {
	batch, err := roster.Parse(r, institutionID)
	if err != nil {
		return nil, rosterError(err)
	}

	existing, err := s.students.ExistingDocuments(ctx, institutionID, batch.Documents())
	if err != nil {
		return nil, err
	}
	batch.DropExisting(existing)

	imported, err := s.students.InsertMany(ctx, batch.Students)
	if err != nil {
		return nil, err
	}

	result := batch.Result(imported)
	logFor(ctx, s.server.Logger).Info().
		Str("institution_id", institutionID.String()).
		Int("rows", batch.Rows).
		Int("imported", result.Imported).
		Int("failed", result.Failed).
		Msg("student roster imported")

	if imported > 0 {
		invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	}
	return &result, nil
}

// Export writes every student of the institution in the import layout.
func (s *RosterService) Export(ctx context.Context, institutionID uuid.UUID, w io.Writer) error {
	students, err := s.students.ListAll(ctx, institutionID)
	if err != nil {
		return err
	}
	return roster.Write(w, students)
}

func rosterError(err error) error {
	switch {
	case errors.Is(err, roster.ErrEmptyFile):
		return errs.NewBadRequestError("The file has no data rows", true, errs.Code("EMPTY_FILE"), nil, nil)
	case errors.Is(err, roster.ErrBadHeader):
		return errs.NewBadRequestError(err.Error(), true, errs.Code("INVALID_HEADER"), nil, nil)
	case errors.Is(err, roster.ErrTooManyRows):
		return errs.NewBadRequestError(err.Error(), true, errs.Code("TOO_MANY_ROWS"), nil, nil)
	case errors.Is(err, roster.ErrMalformed):
		return errs.NewBadRequestError(err.Error(), true, errs.Code("MALFORMED_CSV"), nil, nil)
	}
	return err
}
