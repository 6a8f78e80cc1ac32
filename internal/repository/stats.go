package repository

import (
	"context"
	"time"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StatsRepository struct {
	server *server.Server
}

func NewStatsRepository(s *server.Server) *StatsRepository {
	return &StatsRepository{server: s}
}

// Dashboard aggregates the overview of one institution. since bounds the
// recent activity window.
func (r *StatsRepository) Dashboard(ctx context.Context, institutionID uuid.UUID, since time.Time) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{InstitutionID: institutionID}

	var err error
	if stats.StudentsByStatus, err = r.countByStatus(ctx, "students", institutionID); err != nil {
		return nil, err
	}
	if stats.EventsByStatus, err = r.countByStatus(ctx, "events", institutionID); err != nil {
		return nil, err
	}

	err = r.server.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(p.expected_amount), 0), COALESCE(SUM(p.paid_amount), 0)
		FROM event_participations p
		JOIN events e ON e.id = p.event_id
		WHERE p.institution_id = $1 AND e.status <> 'cancelled'`, institutionID).
		Scan(&stats.TotalExpected, &stats.TotalCollected)
	if err != nil {
		return nil, err
	}

	err = r.server.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(amount) FILTER (WHERE type = 'payment'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE type = 'refund'), 0)
		FROM event_transactions
		WHERE institution_id = $1 AND created_at >= $2`, institutionID, since).
		Scan(&stats.Recent.Transactions, &stats.Recent.Collected, &stats.Recent.Refunded)
	if err != nil {
		return nil, err
	}

	err = r.server.DB.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE institution_id = $1 AND is_active`,
		institutionID).Scan(&stats.AccountsBalance)
	if err != nil {
		return nil, err
	}

	stats.Finish()
	return stats, nil
}

// countByStatus groups the status column of a tenant table.
func (r *StatsRepository) countByStatus(ctx context.Context, table string, institutionID uuid.UUID) (map[string]int, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT status, COUNT(*) FROM `+pgx.Identifier{table}.Sanitize()+`
		 WHERE institution_id = $1 GROUP BY status`, institutionID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var status string
	var n int
	_, err = pgx.ForEachRow(rows, []any{&status, &n}, func() error {
		counts[status] = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
