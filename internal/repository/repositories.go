package repository

import (
	"github.com/deppfellow/edufinance/internal/server"
)

type Repositories struct {
	Institutions   *InstitutionRepository
	Users          *UserRepository
	Students       *StudentRepository
	Categories     *CategoryRepository
	Accounts       *AccountRepository
	Events         *EventRepository
	Participations *ParticipationRepository
	Ledger         *LedgerRepository
	Stats          *StatsRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Institutions:   NewInstitutionRepository(s),
		Users:          NewUserRepository(s),
		Students:       NewStudentRepository(s),
		Categories:     NewCategoryRepository(s),
		Accounts:       NewAccountRepository(s),
		Events:         NewEventRepository(s),
		Participations: NewParticipationRepository(s),
		Ledger:         NewLedgerRepository(s),
		Stats:          NewStatsRepository(s),
	}
}
