package service

import (
	"context"
	"errors"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/lib/token"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/deppfellow/edufinance/internal/sqlerr"
	"github.com/google/uuid"
)

type userStore interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	SuperAdminExists(ctx context.Context) (bool, error)
}

type institutionGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Institution, error)
}

var errInvalidCredentials = errs.NewUnauthorizedError("Invalid credentials", true)

type AuthService struct {
	server       *server.Server
	users        userStore
	institutions institutionGetter
	tokens       *token.Manager
}

func NewAuthService(s *server.Server, users userStore, institutions institutionGetter) *AuthService {
	return &AuthService{
		server:       s,
		users:        users,
		institutions: institutions,
		tokens:       token.NewManager(s.Config.Auth),
	}
}

// Login checks the credentials and issues a token pair.
func (a *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := a.users.GetByEmail(ctx, model.NormalizeEmail(req.Email))
	if sqlerr.IsNotFound(err) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, errInvalidCredentials
	}
	if err := a.checkActive(ctx, user); err != nil {
		return nil, err
	}

	pair, err := a.tokens.IssuePair(user.Principal())
	if err != nil {
		return nil, err
	}

	if err := a.users.TouchLastLogin(ctx, user.ID); err != nil {
		logFor(ctx, a.server.Logger).Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to update last login")
	}

	return &model.LoginResponse{TokenPair: pair, User: user}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The user is
// re-read so deactivation and role changes take effect.
func (a *AuthService) Refresh(ctx context.Context, req *model.RefreshRequest) (*model.TokenPair, error) {
	claims, err := a.tokens.Parse(req.RefreshToken, token.KindRefresh)
	if err != nil {
		return nil, tokenError(err)
	}
	p, err := claims.Principal()
	if err != nil {
		return nil, tokenError(err)
	}

	user, err := a.users.GetByID(ctx, p.UserID)
	if sqlerr.IsNotFound(err) {
		return nil, errs.NewUnauthorizedError("User no longer exists", true)
	}
	if err != nil {
		return nil, err
	}
	if err := a.checkActive(ctx, user); err != nil {
		return nil, err
	}

	pair, err := a.tokens.IssuePair(user.Principal())
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Authenticate verifies an access token and returns its principal.
func (a *AuthService) Authenticate(raw string) (model.Principal, error) {
	claims, err := a.tokens.Parse(raw, token.KindAccess)
	if err != nil {
		return model.Principal{}, tokenError(err)
	}
	p, err := claims.Principal()
	if err != nil {
		return model.Principal{}, tokenError(err)
	}
	return p, nil
}

func (a *AuthService) Me(ctx context.Context, p model.Principal) (*model.User, error) {
	return a.users.GetByID(ctx, p.UserID)
}

func (a *AuthService) ChangePassword(ctx context.Context, p model.Principal, req *model.ChangePasswordRequest) error {
	user, err := a.users.GetByID(ctx, p.UserID)
	if err != nil {
		return err
	}
	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return errs.NewBadRequestError("Current password is incorrect", true, errs.Code("INVALID_PASSWORD"),
			[]errs.FieldError{{Field: "current_password", Error: "is incorrect"}}, nil)
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	_, err = a.users.Update(ctx, user)
	return err
}

// Bootstrap creates the first super admin from the configured credentials.
// It does nothing once any super admin exists.
func (a *AuthService) Bootstrap(ctx context.Context) error {
	cfg := a.server.Config.Auth
	if cfg.BootstrapEmail == "" {
		return nil
	}

	exists, err := a.users.SuperAdminExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	user := &model.User{
		Email:     model.NormalizeEmail(cfg.BootstrapEmail),
		FirstName: "Super",
		LastName:  "Admin",
		Role:      model.RoleSuperAdmin,
		IsActive:  true,
	}
	if err := user.SetPassword(cfg.BootstrapPassword); err != nil {
		return err
	}
	if _, err := a.users.Create(ctx, user); err != nil {
		return err
	}

	logFor(ctx, a.server.Logger).Info().Str("email", user.Email).Msg("bootstrapped super admin")
	return nil
}

func (a *AuthService) checkActive(ctx context.Context, user *model.User) error {
	if !user.IsActive {
		return errs.NewUnauthorizedError("Account is deactivated", true)
	}
	if user.InstitutionID == nil {
		return nil
	}

	inst, err := a.institutions.GetByID(ctx, *user.InstitutionID)
	if err != nil {
		return err
	}
	if !inst.IsActive {
		return errs.NewUnauthorizedError("Institution is deactivated", true)
	}
	return nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return errs.NewUnauthorizedError("Token has expired", true)
	case errors.Is(err, token.ErrWrongKind):
		return errs.NewUnauthorizedError("Wrong token type", true)
	default:
		return errs.NewUnauthorizedError("Invalid token", true)
	}
}
