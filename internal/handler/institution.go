package handler

import (
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
	"github.com/labstack/echo/v4"
)

type InstitutionHandler struct {
	Handler
	institutions *service.InstitutionService
}

func NewInstitutionHandler(s *server.Server, institutions *service.InstitutionService) *InstitutionHandler {
	return &InstitutionHandler{Handler: NewHandler(s), institutions: institutions}
}

func (h *InstitutionHandler) List(c echo.Context, req *model.ListParams) (model.Page[model.Institution], error) {
	p, err := principal(c)
	if err != nil {
		return model.Page[model.Institution]{}, err
	}
	return h.institutions.List(c.Request().Context(), p, *req)
}

func (h *InstitutionHandler) Get(c echo.Context, req *model.IDParam) (*model.Institution, error) {
	p, err := principal(c)
	if err != nil {
		return nil, err
	}
	return h.institutions.Get(c.Request().Context(), p, req.UUID())
}

func (h *InstitutionHandler) Create(c echo.Context, req *model.CreateInstitutionRequest) (*model.Institution, error) {
	return h.institutions.Create(c.Request().Context(), req)
}

func (h *InstitutionHandler) Update(c echo.Context, req *model.UpdateInstitutionRequest) (*model.Institution, error) {
	return h.institutions.Update(c.Request().Context(), req)
}

// Deactivate answers DELETE; institutions are never removed.
func (h *InstitutionHandler) Deactivate(c echo.Context, req *model.IDParam) error {
	return h.institutions.Deactivate(c.Request().Context(), req.UUID())
}
