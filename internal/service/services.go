package service

import (
	"github.com/deppfellow/edufinance/internal/repository"
	"github.com/deppfellow/edufinance/internal/server"
)

type Services struct {
	Auth           *AuthService
	Institutions   *InstitutionService
	Users          *UserService
	Students       *StudentService
	Roster         *RosterService
	Events         *EventService
	Participations *ParticipationService
	Ledger         *LedgerService
	Accounts       *AccountService
	Categories     *CategoryService
	Dashboard      *DashboardService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Auth:           NewAuthService(s, repos.Users, repos.Institutions),
		Institutions:   NewInstitutionService(s, repos.Institutions),
		Users:          NewUserService(s, repos.Users, repos.Institutions, s.Job),
		Students:       NewStudentService(s, repos.Students),
		Roster:         NewRosterService(s, repos.Students),
		Events:         NewEventService(s, repos.Events, repos.Categories),
		Participations: NewParticipationService(s, repos.Participations, repos.Events),
		Ledger:         NewLedgerService(s, repos.Ledger, repos.Events, s.Job),
		Accounts:       NewAccountService(s, repos.Accounts),
		Categories:     NewCategoryService(s, repos.Categories),
		Dashboard:      NewDashboardService(s, repos.Stats),
	}
}
