package handler

import (
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	Handler
	events *service.EventService
	ledger *service.LedgerService
}

func NewEventHandler(s *server.Server, events *service.EventService, ledger *service.LedgerService) *EventHandler {
	return &EventHandler{Handler: NewHandler(s), events: events, ledger: ledger}
}

func (h *EventHandler) List(c echo.Context, req *model.ListEventsRequest) (model.Page[model.Event], error) {
	inst, err := tenant(c)
	if err != nil {
		return model.Page[model.Event]{}, err
	}
	return h.events.List(c.Request().Context(), inst, req)
}

func (h *EventHandler) Get(c echo.Context, req *model.IDParam) (*model.Event, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.events.Get(c.Request().Context(), inst, req.UUID())
}

func (h *EventHandler) Create(c echo.Context, req *model.CreateEventRequest) (*model.Event, error) {
	p, err := principal(c)
	if err != nil {
		return nil, err
	}
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.events.Create(c.Request().Context(), p, inst, req)
}

func (h *EventHandler) Update(c echo.Context, req *model.UpdateEventRequest) (*model.Event, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.events.Update(c.Request().Context(), inst, req)
}

func (h *EventHandler) Delete(c echo.Context, req *model.IDParam) error {
	inst, err := tenant(c)
	if err != nil {
		return err
	}
	return h.events.Delete(c.Request().Context(), inst, req.UUID())
}

func (h *EventHandler) Summary(c echo.Context, req *model.IDParam) (*model.EventSummary, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.events.Summary(c.Request().Context(), inst, req.UUID())
}

func (h *EventHandler) Transactions(c echo.Context, req *model.ListTransactionsRequest) (model.Page[model.EventTransaction], error) {
	inst, err := tenant(c)
	if err != nil {
		return model.Page[model.EventTransaction]{}, err
	}
	return h.ledger.ListTransactions(c.Request().Context(), inst, req)
}
