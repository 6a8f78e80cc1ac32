package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardStats is the cached per-institution overview.
type DashboardStats struct {
	InstitutionID    uuid.UUID       `json:"institution_id"`
	StudentsByStatus map[string]int  `json:"students_by_status"`
	TotalStudents    int             `json:"total_students"`
	EventsByStatus   map[string]int  `json:"events_by_status"`
	TotalEvents      int             `json:"total_events"`
	TotalExpected    decimal.Decimal `json:"total_expected"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	CollectionRate   decimal.Decimal `json:"collection_rate"`
	Recent           RecentActivity  `json:"last_30_days"`
	AccountsBalance  decimal.Decimal `json:"accounts_balance"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

type RecentActivity struct {
	Transactions int             `json:"transactions"`
	Collected    decimal.Decimal `json:"collected"`
	Refunded     decimal.Decimal `json:"refunded"`
}

// Finish derives the computed totals.
func (s *DashboardStats) Finish() {
	s.TotalStudents = sumCounts(s.StudentsByStatus)
	s.TotalEvents = sumCounts(s.EventsByStatus)
	s.Outstanding = s.TotalExpected.Sub(s.TotalCollected)
	if s.Outstanding.IsNegative() {
		s.Outstanding = decimal.Zero
	}
	s.CollectionRate = Ratio(s.TotalCollected, s.TotalExpected)
}

func sumCounts(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// DashboardWindow is the lookback of the recent activity block.
const DashboardWindow = 30 * 24 * time.Hour
