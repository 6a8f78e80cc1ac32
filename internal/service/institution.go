package service

import (
	"context"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
)

type institutionStore interface {
	institutionGetter
	Create(ctx context.Context, req *model.CreateInstitutionRequest) (*model.Institution, error)
	List(ctx context.Context, only *uuid.UUID, p model.ListParams) ([]model.Institution, int, error)
	Update(ctx context.Context, inst *model.Institution) (*model.Institution, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type InstitutionService struct {
	server       *server.Server
	institutions institutionStore
}

func NewInstitutionService(s *server.Server, institutions institutionStore) *InstitutionService {
	return &InstitutionService{server: s, institutions: institutions}
}

// List returns every institution to super admins and only their own to
// everyone else.
func (s *InstitutionService) List(ctx context.Context, p model.Principal, params model.ListParams) (model.Page[model.Institution], error) {
	params = params.Normalize()

	var only *uuid.UUID
	if !p.IsSuperAdmin() {
		if p.InstitutionID == nil {
			return model.NewPage[model.Institution](nil, 0, params), nil
		}
		only = p.InstitutionID
	}

	items, total, err := s.institutions.List(ctx, only, params)
	if err != nil {
		return model.Page[model.Institution]{}, err
	}
	return model.NewPage(items, total, params), nil
}

func (s *InstitutionService) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Institution, error) {
	if !p.CanAccessInstitution(id) {
		return nil, errs.NewForbiddenError("You do not have access to this institution", true)
	}
	return s.institutions.GetByID(ctx, id)
}

func (s *InstitutionService) Create(ctx context.Context, req *model.CreateInstitutionRequest) (*model.Institution, error) {
	req.Normalize()

	inst, err := s.institutions.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	logFor(ctx, s.server.Logger).Info().
		Str("institution_id", inst.ID.String()).
		Str("code", inst.Code).
		Msg("institution created")
	return inst, nil
}

func (s *InstitutionService) Update(ctx context.Context, req *model.UpdateInstitutionRequest) (*model.Institution, error) {
	inst, err := s.institutions.GetByID(ctx, req.UUID())
	if err != nil {
		return nil, err
	}
	req.ApplyTo(inst)
	return s.institutions.Update(ctx, inst)
}

// Deactivate keeps the row and its history; users of the institution can
// no longer log in.
func (s *InstitutionService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.institutions.Deactivate(ctx, id); err != nil {
		return err
	}
	logFor(ctx, s.server.Logger).Info().Str("institution_id", id.String()).Msg("institution deactivated")
	return nil
}
