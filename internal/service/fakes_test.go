package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/deppfellow/edufinance/internal/config"
	"github.com/deppfellow/edufinance/internal/lib/job"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/repository"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *server.Server {
	t.Helper()
	logger := zerolog.Nop()
	return &server.Server{
		Logger: &logger,
		Config: &config.Config{
			Auth: config.AuthConfig{
				SecretKey:       "0123456789abcdef0123456789abcdef",
				Issuer:          "edufinance-test",
				AccessTokenTTL:  15 * time.Minute,
				RefreshTokenTTL: 24 * time.Hour,
			},
			Cache: config.CacheConfig{DashboardTTL: time.Minute},
		},
	}
}

type fakeUsers struct {
	byID    map[uuid.UUID]*model.User
	touched []uuid.UUID
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func newUser(t *testing.T, role model.Role, institutionID *uuid.UUID, password string) *model.User {
	t.Helper()
	u := &model.User{
		Base:          model.Base{ID: uuid.New()},
		InstitutionID: institutionID,
		Email:         uuid.NewString()[:8] + "@school.test",
		FirstName:     "Test",
		LastName:      "User",
		Role:          role,
		IsActive:      true,
	}
	require.NoError(t, u.SetPassword(password))
	return u
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) (*model.User, error) {
	c := *u
	c.ID = uuid.New()
	f.byID[c.ID] = &c
	return &c, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("users")
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, sqlerr.NotFound("users")
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) (*model.User, error) {
	c := *u
	f.byID[u.ID] = &c
	return &c, nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeUsers) SuperAdminExists(context.Context) (bool, error) {
	for _, u := range f.byID {
		if u.Role == model.RoleSuperAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) List(_ context.Context, filter repository.UserFilter) ([]model.User, int, error) {
	var out []model.User
	for _, u := range f.byID {
		if filter.InstitutionID != nil && (u.InstitutionID == nil || *u.InstitutionID != *filter.InstitutionID) {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeUsers) Deactivate(_ context.Context, id uuid.UUID) error {
	u, ok := f.byID[id]
	if !ok {
		return sqlerr.NotFound("users")
	}
	u.IsActive = false
	return nil
}

type fakeInstitutions map[uuid.UUID]*model.Institution

func newInstitution(active bool) *model.Institution {
	return &model.Institution{Base: model.Base{ID: uuid.New()}, Name: "Colegio Test", Code: "CT", IsActive: active}
}

func (f fakeInstitutions) GetByID(_ context.Context, id uuid.UUID) (*model.Institution, error) {
	inst, ok := f[id]
	if !ok {
		return nil, sqlerr.NotFound("institutions")
	}
	c := *inst
	return &c, nil
}

type fakeJobs struct {
	welcome  []job.WelcomeEmailPayload
	receipts []job.ReceiptEmailPayload
	err      error
}

func (f *fakeJobs) EnqueueWelcomeEmail(_ context.Context, p job.WelcomeEmailPayload) error {
	f.welcome = append(f.welcome, p)
	return f.err
}

func (f *fakeJobs) EnqueuePaymentReceipt(_ context.Context, p job.ReceiptEmailPayload) error {
	f.receipts = append(f.receipts, p)
	return f.err
}

type fakeCache struct {
	data    map[string][]byte
	deleted []string
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.sets++
	f.data[key] = raw
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}
