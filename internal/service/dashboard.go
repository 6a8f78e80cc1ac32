package service

import (
	"context"
	"time"

	"github.com/deppfellow/edufinance/internal/cache"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type statsStore interface {
	Dashboard(ctx context.Context, institutionID uuid.UUID, since time.Time) (*model.DashboardStats, error)
}

// dashboardCache is implemented by cache.Cache.
type dashboardCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type DashboardService struct {
	server *server.Server
	stats  statsStore
	cache  dashboardCache
	ttl    time.Duration
	now    func() time.Time
}

func NewDashboardService(s *server.Server, stats statsStore) *DashboardService {
	return &DashboardService{
		server: s,
		stats:  stats,
		cache:  s.Cache,
		ttl:    s.Config.Cache.DashboardTTL,
		now:    time.Now,
	}
}

// Stats serves the institution overview from Redis when possible. Cache
// failures are logged and fall through to the database.
func (d *DashboardService) Stats(ctx context.Context, institutionID uuid.UUID) (*model.DashboardStats, error) {
	key := cache.DashboardKey(institutionID)

	var cached model.DashboardStats
	hit, err := d.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logFor(ctx, d.server.Logger).Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
	}
	if hit {
		return &cached, nil
	}

	now := d.now().UTC()
	stats, err := d.stats.Dashboard(ctx, institutionID, now.Add(-model.DashboardWindow))
	if err != nil {
		return nil, err
	}
	stats.InstitutionID = institutionID
	stats.GeneratedAt = now

	if err := d.cache.SetJSON(ctx, key, stats, d.ttl); err != nil {
		logFor(ctx, d.server.Logger).Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
	}
	return stats, nil
}

// invalidateDashboard drops the cached stats of an institution after a
// write that changes them.
func invalidateDashboard(ctx context.Context, c dashboardCache, logger *zerolog.Logger, institutionID uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, cache.DashboardKey(institutionID)); err != nil {
		logFor(ctx, logger).Warn().Err(err).Str("institution_id", institutionID.String()).Msg("dashboard cache invalidation failed")
	}
}
