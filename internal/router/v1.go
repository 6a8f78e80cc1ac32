package router

import (
	"net/http"

	"github.com/deppfellow/edufinance/internal/handler"
	"github.com/deppfellow/edufinance/internal/middleware"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/labstack/echo/v4"
)

// registerV1Routes mounts the API. Every authenticated role may read
// inside its institution; writes are gated per permission.
func registerV1Routes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	auth := m.Auth
	can := auth.RequirePermission

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", handler.Handle(h.Auth.Handler, h.Auth.Login, http.StatusOK, &model.LoginRequest{}), m.RateLimit.Login())
	authGroup.POST("/refresh", handler.Handle(h.Auth.Handler, h.Auth.Refresh, http.StatusOK, &model.RefreshRequest{}), m.RateLimit.Login())
	authGroup.GET("/me", handler.Handle(h.Auth.Handler, h.Auth.Me, http.StatusOK, &model.EmptyRequest{}), auth.RequireAuth)
	authGroup.PUT("/password", handler.HandleNoContent(h.Auth.Handler, h.Auth.ChangePassword, http.StatusNoContent, &model.ChangePasswordRequest{}), auth.RequireAuth)

	institutions := v1.Group("/institutions", auth.RequireAuth)
	ih := h.Institutions
	institutions.GET("", handler.Handle(ih.Handler, ih.List, http.StatusOK, &model.ListParams{}))
	institutions.POST("", handler.Handle(ih.Handler, ih.Create, http.StatusCreated, &model.CreateInstitutionRequest{}), can(model.PermManageInstitutions))
	institutions.GET("/:id", handler.Handle(ih.Handler, ih.Get, http.StatusOK, &model.IDParam{}))
	institutions.PUT("/:id", handler.Handle(ih.Handler, ih.Update, http.StatusOK, &model.UpdateInstitutionRequest{}), can(model.PermManageInstitutions))
	institutions.DELETE("/:id", handler.HandleNoContent(ih.Handler, ih.Deactivate, http.StatusNoContent, &model.IDParam{}), can(model.PermManageInstitutions))

	users := v1.Group("/users", auth.RequireAuth, auth.OptionalTenant, can(model.PermManageUsers))
	uh := h.Users
	users.GET("", handler.Handle(uh.Handler, uh.List, http.StatusOK, &model.ListUsersRequest{}))
	users.POST("", handler.Handle(uh.Handler, uh.Create, http.StatusCreated, &model.CreateUserRequest{}))
	users.GET("/:id", handler.Handle(uh.Handler, uh.Get, http.StatusOK, &model.IDParam{}))
	users.PUT("/:id", handler.Handle(uh.Handler, uh.Update, http.StatusOK, &model.UpdateUserRequest{}))
	users.DELETE("/:id", handler.HandleNoContent(uh.Handler, uh.Deactivate, http.StatusNoContent, &model.IDParam{}))

	tenant := func(prefix string) *echo.Group {
		return v1.Group(prefix, auth.RequireAuth, auth.RequireTenant)
	}
	registerStudentRoutes(tenant("/students"), h.Students, can)
	registerEventRoutes(tenant("/events"), h.Events, h.Participations, can)
	registerFinanceRoutes(tenant("/accounts"), tenant("/categories"), h.Finance, can)

	dh := h.Dashboard
	tenant("/dashboard").GET("/stats", handler.Handle(dh.Handler, dh.Stats, http.StatusOK, &model.EmptyRequest{}))
}

type permissionGate func(model.Permission) echo.MiddlewareFunc

func registerStudentRoutes(g *echo.Group, sh *handler.StudentHandler, can permissionGate) {
	g.GET("", handler.Handle(sh.Handler, sh.List, http.StatusOK, &model.ListStudentsRequest{}))
	g.POST("", handler.Handle(sh.Handler, sh.Create, http.StatusCreated, &model.CreateStudentRequest{}), can(model.PermWriteStudents))
	g.POST("/import", handler.Handle(sh.Handler, sh.Import, http.StatusOK, &model.EmptyRequest{}), can(model.PermWriteStudents))
	g.GET("/export", handler.HandleFile(sh.Handler, sh.Export, http.StatusOK, &model.EmptyRequest{}, "students.csv", "text/csv; charset=utf-8"))
	g.GET("/:id", handler.Handle(sh.Handler, sh.Get, http.StatusOK, &model.IDParam{}))
	g.PUT("/:id", handler.Handle(sh.Handler, sh.Update, http.StatusOK, &model.UpdateStudentRequest{}), can(model.PermWriteStudents))
	g.DELETE("/:id", handler.HandleNoContent(sh.Handler, sh.Delete, http.StatusNoContent, &model.IDParam{}), can(model.PermDeleteStudents))
}

func registerEventRoutes(g *echo.Group, eh *handler.EventHandler, ph *handler.ParticipationHandler, can permissionGate) {
	g.GET("", handler.Handle(eh.Handler, eh.List, http.StatusOK, &model.ListEventsRequest{}))
	g.POST("", handler.Handle(eh.Handler, eh.Create, http.StatusCreated, &model.CreateEventRequest{}), can(model.PermManageEvents))
	g.GET("/:id", handler.Handle(eh.Handler, eh.Get, http.StatusOK, &model.IDParam{}))
	g.PUT("/:id", handler.Handle(eh.Handler, eh.Update, http.StatusOK, &model.UpdateEventRequest{}), can(model.PermManageEvents))
	g.DELETE("/:id", handler.HandleNoContent(eh.Handler, eh.Delete, http.StatusNoContent, &model.IDParam{}), can(model.PermManageEvents))
	g.GET("/:id/summary", handler.Handle(eh.Handler, eh.Summary, http.StatusOK, &model.IDParam{}))
	g.GET("/:id/transactions", handler.Handle(eh.Handler, eh.Transactions, http.StatusOK, &model.ListTransactionsRequest{}))

	g.GET("/:id/participants", handler.Handle(ph.Handler, ph.List, http.StatusOK, &model.ListParticipantsRequest{}))
	g.POST("/:id/participants", handler.Handle(ph.Handler, ph.Enroll, http.StatusCreated, &model.EnrollRequest{}), can(model.PermManageEvents))
	g.DELETE("/:id/participants/:participation_id", handler.HandleNoContent(ph.Handler, ph.Remove, http.StatusNoContent, &model.ParticipationParam{}), can(model.PermManageEvents))
	g.POST("/:id/participants/:participation_id/payments", handler.Handle(ph.Handler, ph.RecordPayment, http.StatusCreated, &model.PaymentRequest{}), can(model.PermRecordPayments))
	g.POST("/:id/participants/:participation_id/refunds", handler.Handle(ph.Handler, ph.RecordRefund, http.StatusCreated, &model.PaymentRequest{}), can(model.PermRefundPayments))
}

func registerFinanceRoutes(accounts, categories *echo.Group, fh *handler.FinanceHandler, can permissionGate) {
	manage := can(model.PermManageFinance)

	accounts.GET("", handler.Handle(fh.Handler, fh.ListAccounts, http.StatusOK, &model.EmptyRequest{}))
	accounts.POST("", handler.Handle(fh.Handler, fh.CreateAccount, http.StatusCreated, &model.CreateAccountRequest{}), manage)
	accounts.PUT("/:id", handler.Handle(fh.Handler, fh.UpdateAccount, http.StatusOK, &model.UpdateAccountRequest{}), manage)
	accounts.DELETE("/:id", handler.HandleNoContent(fh.Handler, fh.DeleteAccount, http.StatusNoContent, &model.IDParam{}), manage)

	categories.GET("", handler.Handle(fh.Handler, fh.ListCategories, http.StatusOK, &model.EmptyRequest{}))
	categories.POST("", handler.Handle(fh.Handler, fh.CreateCategory, http.StatusCreated, &model.CreateCategoryRequest{}), manage)
	categories.PUT("/:id", handler.Handle(fh.Handler, fh.UpdateCategory, http.StatusOK, &model.UpdateCategoryRequest{}), manage)
	categories.DELETE("/:id", handler.HandleNoContent(fh.Handler, fh.DeleteCategory, http.StatusNoContent, &model.IDParam{}), manage)
}
