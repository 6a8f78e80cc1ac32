package handler

import (
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
	"github.com/labstack/echo/v4"
)

// ParticipationHandler serves enrollment and the payment ledger of one
// event's participants.
type ParticipationHandler struct {
	Handler
	participations *service.ParticipationService
	ledger         *service.LedgerService
}

func NewParticipationHandler(s *server.Server, participations *service.ParticipationService, ledger *service.LedgerService) *ParticipationHandler {
	return &ParticipationHandler{Handler: NewHandler(s), participations: participations, ledger: ledger}
}

func (h *ParticipationHandler) List(c echo.Context, req *model.ListParticipantsRequest) (model.Page[model.Participant], error) {
	inst, err := tenant(c)
	if err != nil {
		return model.Page[model.Participant]{}, err
	}
	return h.participations.List(c.Request().Context(), inst, req)
}

func (h *ParticipationHandler) Enroll(c echo.Context, req *model.EnrollRequest) (*model.EnrollResult, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.participations.Enroll(c.Request().Context(), inst, req)
}

func (h *ParticipationHandler) Remove(c echo.Context, req *model.ParticipationParam) error {
	inst, err := tenant(c)
	if err != nil {
		return err
	}
	return h.participations.Remove(c.Request().Context(), inst, req)
}

func (h *ParticipationHandler) RecordPayment(c echo.Context, req *model.PaymentRequest) (*model.LedgerReceipt, error) {
	p, err := principal(c)
	if err != nil {
		return nil, err
	}
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.ledger.RecordPayment(c.Request().Context(), p, inst, req)
}

func (h *ParticipationHandler) RecordRefund(c echo.Context, req *model.PaymentRequest) (*model.LedgerReceipt, error) {
	p, err := principal(c)
	if err != nil {
		return nil, err
	}
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.ledger.RecordRefund(c.Request().Context(), p, inst, req)
}
