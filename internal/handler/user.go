package handler

import (
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
	"github.com/labstack/echo/v4"
)

// UserHandler runs behind OptionalTenant: a super admin without a selected
// institution sees users of every tenant.
type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{Handler: NewHandler(s), users: users}
}

func (h *UserHandler) List(c echo.Context, req *model.ListUsersRequest) (model.Page[model.User], error) {
	return h.users.List(c.Request().Context(), optionalTenant(c), req)
}

func (h *UserHandler) Get(c echo.Context, req *model.IDParam) (*model.User, error) {
	p, err := principal(c)
	if err != nil {
		return nil, err
	}
	return h.users.Get(c.Request().Context(), p, req.UUID())
}

func (h *UserHandler) Create(c echo.Context, req *model.CreateUserRequest) (*model.User, error) {
	p, err := principal(c)
	if err != nil {
		return nil, err
	}
	return h.users.Create(c.Request().Context(), p, optionalTenant(c), req)
}

func (h *UserHandler) Update(c echo.Context, req *model.UpdateUserRequest) (*model.User, error) {
	p, err := principal(c)
	if err != nil {
		return nil, err
	}
	return h.users.Update(c.Request().Context(), p, req)
}

func (h *UserHandler) Deactivate(c echo.Context, req *model.IDParam) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return h.users.Deactivate(c.Request().Context(), p, req.UUID())
}
