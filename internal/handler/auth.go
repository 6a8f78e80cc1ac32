package handler

import (
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(s *server.Server, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Handler: NewHandler(s), auth: auth}
}

func (h *AuthHandler) Login(c echo.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	return h.auth.Login(c.Request().Context(), req)
}

func (h *AuthHandler) Refresh(c echo.Context, req *model.RefreshRequest) (*model.TokenPair, error) {
	return h.auth.Refresh(c.Request().Context(), req)
}

func (h *AuthHandler) Me(c echo.Context, _ *model.EmptyRequest) (*model.User, error) {
	p, err := principal(c)
	if err != nil {
		return nil, err
	}
	return h.auth.Me(c.Request().Context(), p)
}

func (h *AuthHandler) ChangePassword(c echo.Context, req *model.ChangePasswordRequest) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return h.auth.ChangePassword(c.Request().Context(), p, req)
}
