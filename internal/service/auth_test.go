package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/lib/token"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, users *fakeUsers, institutions fakeInstitutions) *AuthService {
	t.Helper()
	return NewAuthService(testServer(t), users, institutions)
}

func requireHTTPError(t *testing.T, err error, status int) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected HTTPError, got %v", err)
	assert.Equal(t, status, httpErr.Status)
	return httpErr
}

func TestLogin_Success(t *testing.T) {
	inst := newInstitution(true)
	user := newUser(t, model.RoleAccountant, &inst.ID, "s3cret-pass")
	users := newFakeUsers(user)
	svc := newAuthService(t, users, fakeInstitutions{inst.ID: inst})

	res, err := svc.Login(context.Background(), &model.LoginRequest{Email: "  " + user.Email, Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, []uuid.UUID{user.ID}, users.touched)

	p, err := svc.Authenticate(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.Principal(), p)
}

func TestLogin_Failures(t *testing.T) {
	active := newInstitution(true)
	closed := newInstitution(false)

	good := newUser(t, model.RoleAccountant, &active.ID, "s3cret-pass")
	inactive := newUser(t, model.RoleAccountant, &active.ID, "s3cret-pass")
	inactive.IsActive = false
	orphaned := newUser(t, model.RoleRector, &closed.ID, "s3cret-pass")

	svc := newAuthService(t, newFakeUsers(good, inactive, orphaned),
		fakeInstitutions{active.ID: active, closed.ID: closed})

	tests := []struct {
		name     string
		email    string
		password string
		message  string
	}{
		{name: "unknown email", email: "nobody@school.test", password: "s3cret-pass", message: "Invalid credentials"},
		{name: "wrong password", email: good.Email, password: "wrong-pass", message: "Invalid credentials"},
		{name: "inactive user", email: inactive.Email, password: "s3cret-pass", message: "Account is deactivated"},
		{name: "inactive institution", email: orphaned.Email, password: "s3cret-pass", message: "Institution is deactivated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &model.LoginRequest{Email: tt.email, Password: tt.password})
			httpErr := requireHTTPError(t, err, http.StatusUnauthorized)
			assert.Equal(t, tt.message, httpErr.Message)
		})
	}
}

func TestRefresh(t *testing.T) {
	inst := newInstitution(true)
	user := newUser(t, model.RoleRector, &inst.ID, "s3cret-pass")
	users := newFakeUsers(user)
	svc := newAuthService(t, users, fakeInstitutions{inst.ID: inst})

	res, err := svc.Login(context.Background(), &model.LoginRequest{Email: user.Email, Password: "s3cret-pass"})
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), &model.RefreshRequest{RefreshToken: res.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.Refresh(context.Background(), &model.RefreshRequest{RefreshToken: res.AccessToken})
		httpErr := requireHTTPError(t, err, http.StatusUnauthorized)
		assert.Equal(t, "Wrong token type", httpErr.Message)
	})

	t.Run("deactivated user", func(t *testing.T) {
		users.byID[user.ID].IsActive = false
		_, err := svc.Refresh(context.Background(), &model.RefreshRequest{RefreshToken: res.RefreshToken})
		requireHTTPError(t, err, http.StatusUnauthorized)
	})
}

func TestAuthenticate_RejectsRefreshAndGarbage(t *testing.T) {
	svc := newAuthService(t, newFakeUsers(), fakeInstitutions{})

	_, err := svc.Authenticate("not-a-token")
	requireHTTPError(t, err, http.StatusUnauthorized)

	pair, err := token.NewManager(svc.server.Config.Auth).IssuePair(model.Principal{UserID: uuid.New(), Role: model.RoleSuperAdmin})
	require.NoError(t, err)

	_, err = svc.Authenticate(pair.RefreshToken)
	requireHTTPError(t, err, http.StatusUnauthorized)
}

func TestChangePassword(t *testing.T) {
	user := newUser(t, model.RoleSuperAdmin, nil, "old-password")
	users := newFakeUsers(user)
	svc := newAuthService(t, users, fakeInstitutions{})
	p := user.Principal()

	err := svc.ChangePassword(context.Background(), p, &model.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "new-password"})
	requireHTTPError(t, err, http.StatusBadRequest)

	err = svc.ChangePassword(context.Background(), p, &model.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"})
	require.NoError(t, err)
	assert.NoError(t, users.byID[user.ID].CheckPassword("new-password"))
}

func TestBootstrap(t *testing.T) {
	users := newFakeUsers()
	svc := newAuthService(t, users, fakeInstitutions{})
	svc.server.Config.Auth.BootstrapEmail = "Admin@School.test"
	svc.server.Config.Auth.BootstrapPassword = "first-password"

	require.NoError(t, svc.Bootstrap(context.Background()))
	require.Len(t, users.byID, 1)

	admin, err := users.GetByEmail(context.Background(), "admin@school.test")
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, admin.Role)
	assert.Nil(t, admin.InstitutionID)

	require.NoError(t, svc.Bootstrap(context.Background()))
	assert.Len(t, users.byID, 1)
}
