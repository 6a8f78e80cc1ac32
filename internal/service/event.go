package service

import (
	"context"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/sqlerr"
	"github.com/google/uuid"
)

type eventStore interface {
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	GetByID(ctx context.Context, institutionID, id uuid.UUID) (*model.Event, error)
	List(ctx context.Context, institutionID uuid.UUID, f model.EventFilter) ([]model.Event, int, error)
	Update(ctx context.Context, e *model.Event) (*model.Event, error)
	Delete(ctx context.Context, institutionID, id uuid.UUID) error
	Summary(ctx context.Context, institutionID, id uuid.UUID) (*model.EventSummary, error)
}

type categoryGetter interface {
	GetByID(ctx context.Context, institutionID, id uuid.UUID) (*model.Category, error)
}

type EventService struct {
	server     *server.Server
	events     eventStore
	categories categoryGetter
	cache      dashboardCache
}

func NewEventService(s *server.Server, events eventStore, categories categoryGetter) *EventService {
	return &EventService{server: s, events: events, categories: categories, cache: s.Cache}
}

func (s *EventService) List(ctx context.Context, institutionID uuid.UUID, req *model.ListEventsRequest) (model.Page[model.Event], error) {
	params := req.ListParams.Normalize()

	items, total, err := s.events.List(ctx, institutionID, model.EventFilter{
		Status: model.EventStatus(req.Status),
		Type:   model.EventType(req.Type),
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return model.Page[model.Event]{}, err
	}
	return model.NewPage(items, total, params), nil
}

func (s *EventService) Get(ctx context.Context, institutionID, id uuid.UUID) (*model.Event, error) {
	return s.events.GetByID(ctx, institutionID, id)
}

func (s *EventService) Create(ctx context.Context, p model.Principal, institutionID uuid.UUID, req *model.CreateEventRequest) (*model.Event, error) {
	event := req.ToEvent(institutionID, p.UserID)
	if err := s.checkCategory(ctx, institutionID, event.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.events.Create(ctx, event)
	if err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	return created, nil
}

func (s *EventService) Update(ctx context.Context, institutionID uuid.UUID, req *model.UpdateEventRequest) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, institutionID, req.UUID())
	if err != nil {
		return nil, err
	}
	req.ApplyTo(event)

	if err := s.checkCategory(ctx, institutionID, event.CategoryID); err != nil {
		return nil, err
	}

	updated, err := s.events.Update(ctx, event)
	if err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	return updated, nil
}

// Delete removes an event and its participations. Events with recorded
// money must be cancelled instead.
func (s *EventService) Delete(ctx context.Context, institutionID, id uuid.UUID) error {
	if err := s.events.Delete(ctx, institutionID, id); err != nil {
		return domainError(err)
	}
	invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	return nil
}

func (s *EventService) Summary(ctx context.Context, institutionID, id uuid.UUID) (*model.EventSummary, error) {
	return s.events.Summary(ctx, institutionID, id)
}

// checkCategory rejects categories of other institutions.
func (s *EventService) checkCategory(ctx context.Context, institutionID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.categories.GetByID(ctx, institutionID, *id)
	if sqlerr.IsNotFound(err) {
		return errs.NewBadRequestError("Category does not exist", true, errs.Code("INVALID_CATEGORY"),
			[]errs.FieldError{{Field: "category_id", Error: "does not exist"}}, nil)
	}
	return err
}
