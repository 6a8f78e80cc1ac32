package service

import (
	"context"
	"testing"
	"time"

	"github.com/deppfellow/edufinance/internal/cache"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	calls int
	since time.Time
}

func (f *fakeStats) Dashboard(_ context.Context, institutionID uuid.UUID, since time.Time) (*model.DashboardStats, error) {
	f.calls++
	f.since = since
	s := &model.DashboardStats{
		InstitutionID:    institutionID,
		StudentsByStatus: map[string]int{"active": 3},
		EventsByStatus:   map[string]int{"active": 1},
		TotalExpected:    decimal.NewFromInt(200),
		TotalCollected:   decimal.NewFromInt(50),
	}
	s.Finish()
	return s, nil
}

func TestDashboardStats_CacheAside(t *testing.T) {
	now := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	stats := &fakeStats{}
	c := newFakeCache()
	svc := NewDashboardService(testServer(t), stats)
	svc.cache = c
	svc.now = func() time.Time { return now }
	inst := uuid.New()

	first, err := svc.Stats(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.calls)
	assert.Equal(t, now.Add(-30*24*time.Hour), stats.since)
	assert.Equal(t, now, first.GeneratedAt)
	assert.Equal(t, "0.25", first.CollectionRate.String())
	assert.Contains(t, c.data, cache.DashboardKey(inst))

	second, err := svc.Stats(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.calls)
	assert.Equal(t, 3, second.TotalStudents)
	assert.True(t, second.Outstanding.Equal(decimal.NewFromInt(150)))

	invalidateDashboard(context.Background(), c, svc.server.Logger, inst)
	_, err = svc.Stats(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.calls)
}

func TestDashboardStats_NilCache(t *testing.T) {
	stats := &fakeStats{}
	svc := NewDashboardService(testServer(t), stats)

	_, err := svc.Stats(context.Background(), uuid.New())
	require.NoError(t, err)
	_, err = svc.Stats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.calls)
}
