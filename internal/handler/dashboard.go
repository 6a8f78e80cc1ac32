package handler

import (
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
	"github.com/labstack/echo/v4"
)

type DashboardHandler struct {
	Handler
	dashboard *service.DashboardService
}

func NewDashboardHandler(s *server.Server, dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{Handler: NewHandler(s), dashboard: dashboard}
}

func (h *DashboardHandler) Stats(c echo.Context, _ *model.EmptyRequest) (*model.DashboardStats, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.dashboard.Stats(c.Request().Context(), inst)
}
