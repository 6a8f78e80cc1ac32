package handler

import (
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health         *HealthHandler
	OpenAPI        *OpenAPIHandler
	Auth           *AuthHandler
	Institutions   *InstitutionHandler
	Users          *UserHandler
	Students       *StudentHandler
	Events         *EventHandler
	Participations *ParticipationHandler
	Finance        *FinanceHandler
	Dashboard      *DashboardHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(s),
		OpenAPI:        NewOpenAPIHandler(s),
		Auth:           NewAuthHandler(s, services.Auth),
		Institutions:   NewInstitutionHandler(s, services.Institutions),
		Users:          NewUserHandler(s, services.Users),
		Students:       NewStudentHandler(s, services.Students, services.Roster),
		Events:         NewEventHandler(s, services.Events, services.Ledger),
		Participations: NewParticipationHandler(s, services.Participations, services.Ledger),
		Finance:        NewFinanceHandler(s, services.Accounts, services.Categories),
		Dashboard:      NewDashboardHandler(s, services.Dashboard),
	}
}
