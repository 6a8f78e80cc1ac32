package handler

import (
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
	"github.com/labstack/echo/v4"
)

// FinanceHandler serves the institution's money accounts and transaction
// categories.
type FinanceHandler struct {
	Handler
	accounts   *service.AccountService
	categories *service.CategoryService
}

func NewFinanceHandler(s *server.Server, accounts *service.AccountService, categories *service.CategoryService) *FinanceHandler {
	return &FinanceHandler{Handler: NewHandler(s), accounts: accounts, categories: categories}
}

func (h *FinanceHandler) ListAccounts(c echo.Context, _ *model.EmptyRequest) ([]model.Account, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.accounts.List(c.Request().Context(), inst)
}

func (h *FinanceHandler) CreateAccount(c echo.Context, req *model.CreateAccountRequest) (*model.Account, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.accounts.Create(c.Request().Context(), inst, req)
}

func (h *FinanceHandler) UpdateAccount(c echo.Context, req *model.UpdateAccountRequest) (*model.Account, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.accounts.Update(c.Request().Context(), inst, req)
}

func (h *FinanceHandler) DeleteAccount(c echo.Context, req *model.IDParam) error {
	inst, err := tenant(c)
	if err != nil {
		return err
	}
	return h.accounts.Delete(c.Request().Context(), inst, req.UUID())
}

func (h *FinanceHandler) ListCategories(c echo.Context, _ *model.EmptyRequest) ([]model.Category, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.categories.List(c.Request().Context(), inst)
}

func (h *FinanceHandler) CreateCategory(c echo.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.categories.Create(c.Request().Context(), inst, req)
}

func (h *FinanceHandler) UpdateCategory(c echo.Context, req *model.UpdateCategoryRequest) (*model.Category, error) {
	inst, err := tenant(c)
	if err != nil {
		return nil, err
	}
	return h.categories.Update(c.Request().Context(), inst, req)
}

func (h *FinanceHandler) DeleteCategory(c echo.Context, req *model.IDParam) error {
	inst, err := tenant(c)
	if err != nil {
		return err
	}
	return h.categories.Delete(c.Request().Context(), inst, req.UUID())
}
