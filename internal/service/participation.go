package service

import (
	"context"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/repository"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
)

type participationStore interface {
	Enroll(ctx context.Context, institutionID, eventID uuid.UUID, sel repository.EnrollSelection) (model.EnrollResult, error)
	ListParticipants(ctx context.Context, institutionID, eventID uuid.UUID, f repository.ParticipantFilter) ([]model.Participant, int, error)
	Remove(ctx context.Context, institutionID, eventID, id uuid.UUID) error
}

type eventGetter interface {
	GetByID(ctx context.Context, institutionID, id uuid.UUID) (*model.Event, error)
}

type ParticipationService struct {
	server         *server.Server
	participations participationStore
	events         eventGetter
	cache          dashboardCache
}

func NewParticipationService(s *server.Server, participations participationStore, events eventGetter) *ParticipationService {
	return &ParticipationService{server: s, participations: participations, events: events, cache: s.Cache}
}

// Enroll adds students to an event. The expected amount defaults to the
// event's amount per participant.
func (s *ParticipationService) Enroll(ctx context.Context, institutionID uuid.UUID, req *model.EnrollRequest) (*model.EnrollResult, error) {
	event, err := s.events.GetByID(ctx, institutionID, req.UUID())
	if err != nil {
		return nil, err
	}

	sel := repository.EnrollSelection{Expected: event.AmountPerParticipant}
	if req.ExpectedAmount != nil {
		sel.Expected = req.ExpectedAmount.Round(2)
	}
	if req.AllActive {
		if req.Grade != nil {
			sel.Grade = model.CleanString(*req.Grade)
		}
	} else {
		sel.StudentIDs = req.StudentUUIDs()
	}

	result, err := s.participations.Enroll(ctx, institutionID, event.ID, sel)
	if err != nil {
		return nil, domainError(err)
	}

	logFor(ctx, s.server.Logger).Info().
		Str("event_id", event.ID.String()).
		Int("enrolled", result.Enrolled).
		Int("skipped", result.Skipped).
		Int("unknown", len(result.Unknown)).
		Msg("students enrolled")

	if result.Enrolled > 0 {
		invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	}
	return &result, nil
}

func (s *ParticipationService) List(ctx context.Context, institutionID uuid.UUID, req *model.ListParticipantsRequest) (model.Page[model.Participant], error) {
	params := req.ListParams.Normalize()

	if _, err := s.events.GetByID(ctx, institutionID, req.UUID()); err != nil {
		return model.Page[model.Participant]{}, err
	}

	items, total, err := s.participations.ListParticipants(ctx, institutionID, req.UUID(), repository.ParticipantFilter{
		Status: model.ParticipationStatus(req.Status),
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return model.Page[model.Participant]{}, err
	}
	return model.NewPage(items, total, params), nil
}

// Remove drops a participant that has not paid anything.
func (s *ParticipationService) Remove(ctx context.Context, institutionID uuid.UUID, req *model.ParticipationParam) error {
	if err := s.participations.Remove(ctx, institutionID, req.UUID(), req.ParticipationUUID()); err != nil {
		return domainError(err)
	}
	invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	return nil
}
