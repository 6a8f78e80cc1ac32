package service

import (
	"context"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/lib/job"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/repository"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
)

type userManager interface {
	userStore
	List(ctx context.Context, f repository.UserFilter) ([]model.User, int, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// taskEnqueuer is implemented by job.JobService.
type taskEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, p job.WelcomeEmailPayload) error
	EnqueuePaymentReceipt(ctx context.Context, p job.ReceiptEmailPayload) error
}

type UserService struct {
	server       *server.Server
	users        userManager
	institutions institutionGetter
	jobs         taskEnqueuer
}

func NewUserService(s *server.Server, users userManager, institutions institutionGetter, jobs taskEnqueuer) *UserService {
	return &UserService{server: s, users: users, institutions: institutions, jobs: jobs}
}

// List returns the users of scope, or of every institution when scope is
// nil (super admins only).
func (s *UserService) List(ctx context.Context, scope *uuid.UUID, req *model.ListUsersRequest) (model.Page[model.User], error) {
	params := req.ListParams.Normalize()

	items, total, err := s.users.List(ctx, repository.UserFilter{
		InstitutionID: scope,
		Role:          model.Role(req.Role),
		IsActive:      req.ActiveFilter(),
		Search:        model.CleanString(req.Search),
		Limit:         params.Limit,
		Offset:        params.Offset,
	})
	if err != nil {
		return model.Page[model.User]{}, err
	}
	return model.NewPage(items, total, params), nil
}

func (s *UserService) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.User, error) {
	return s.visible(ctx, p, id)
}

// Create adds a user to scope. Super admins have no institution; every
// other role needs one, taken from the payload or the resolved tenant.
func (s *UserService) Create(ctx context.Context, p model.Principal, scope *uuid.UUID, req *model.CreateUserRequest) (*model.User, error) {
	if !p.Role.CanAssign(req.Role) {
		return nil, errs.NewForbiddenError("You cannot create users with this role", true)
	}

	user := &model.User{
		Email:     model.NormalizeEmail(req.Email),
		FirstName: model.CleanString(req.FirstName),
		LastName:  model.CleanString(req.LastName),
		Role:      req.Role,
		IsActive:  true,
	}

	if req.Role != model.RoleSuperAdmin {
		institutionID, err := s.targetInstitution(p, scope, req.InstitutionID)
		if err != nil {
			return nil, err
		}
		user.InstitutionID = &institutionID
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	logFor(ctx, s.server.Logger).Info().
		Str("user_id", created.ID.String()).
		Str("role", string(created.Role)).
		Str("created_by", p.UserID.String()).
		Msg("user created")

	s.enqueueWelcome(ctx, created)
	return created, nil
}

func (s *UserService) targetInstitution(p model.Principal, scope *uuid.UUID, requested string) (uuid.UUID, error) {
	if requested != "" {
		id := uuid.MustParse(requested)
		if !p.CanAccessInstitution(id) {
			return uuid.Nil, errs.NewForbiddenError("You do not have access to this institution", true)
		}
		return id, nil
	}
	if scope != nil {
		return *scope, nil
	}
	return uuid.Nil, errs.NewBadRequestError("institution_id is required for this role", true, nil,
		[]errs.FieldError{{Field: "institution_id", Error: "is required"}}, nil)
}

func (s *UserService) enqueueWelcome(ctx context.Context, user *model.User) {
	if s.jobs == nil {
		return
	}

	payload := job.WelcomeEmailPayload{
		To:        user.Email,
		FirstName: user.FirstName,
		Role:      string(user.Role),
	}
	if user.InstitutionID != nil {
		if inst, err := s.institutions.GetByID(ctx, *user.InstitutionID); err == nil {
			payload.InstitutionName = inst.Name
		}
	}

	if err := s.jobs.EnqueueWelcomeEmail(ctx, payload); err != nil {
		logFor(ctx, s.server.Logger).Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to enqueue welcome email")
	}
}

func (s *UserService) Update(ctx context.Context, p model.Principal, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.visible(ctx, p, req.UUID())
	if err != nil {
		return nil, err
	}

	if user.ID == p.UserID {
		if req.Role != nil || req.IsActive != nil {
			return nil, errs.NewForbiddenError("You cannot change your own role or status", true)
		}
	} else if !p.Role.CanAssign(user.Role) {
		return nil, errs.NewForbiddenError("You cannot manage users with this role", true)
	}

	if req.Role != nil && *req.Role != user.Role {
		if !p.Role.CanAssign(*req.Role) {
			return nil, errs.NewForbiddenError("You cannot assign this role", true)
		}
		if (*req.Role == model.RoleSuperAdmin) != (user.Role == model.RoleSuperAdmin) {
			return nil, errs.NewUnprocessableError("Users cannot be moved in or out of the super admin role", errs.Code("ROLE_CHANGE_NOT_ALLOWED"))
		}
		user.Role = *req.Role
	}
	if req.FirstName != nil {
		user.FirstName = model.CleanString(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = model.CleanString(*req.LastName)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	return s.users.Update(ctx, user)
}

func (s *UserService) Deactivate(ctx context.Context, p model.Principal, id uuid.UUID) error {
	user, err := s.visible(ctx, p, id)
	if err != nil {
		return err
	}
	if user.ID == p.UserID {
		return errs.NewUnprocessableError("You cannot deactivate your own account", errs.Code("SELF_DEACTIVATION"))
	}
	if !p.Role.CanAssign(user.Role) {
		return errs.NewForbiddenError("You cannot manage users with this role", true)
	}
	return s.users.Deactivate(ctx, id)
}

// visible loads a user the caller may see. Users of other institutions are
// reported as missing.
func (s *UserService) visible(ctx context.Context, p model.Principal, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsSuperAdmin() {
		return user, nil
	}
	if user.InstitutionID == nil || !p.CanAccessInstitution(*user.InstitutionID) {
		return nil, errs.NewNotFoundError("User not found", true, nil)
	}
	return user, nil
}
