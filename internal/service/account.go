package service

import (
	"context"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
)

type accountStore interface {
	Create(ctx context.Context, a *model.Account) (*model.Account, error)
	GetByID(ctx context.Context, institutionID, id uuid.UUID) (*model.Account, error)
	List(ctx context.Context, institutionID uuid.UUID) ([]model.Account, error)
	Update(ctx context.Context, a *model.Account) (*model.Account, error)
	Delete(ctx context.Context, institutionID, id uuid.UUID) error
}

// AccountService manages the cash and bank accounts of an institution.
// Balances only move through the ledger.
type AccountService struct {
	server   *server.Server
	accounts accountStore
	cache    dashboardCache
}

func NewAccountService(s *server.Server, accounts accountStore) *AccountService {
	return &AccountService{server: s, accounts: accounts, cache: s.Cache}
}

func (s *AccountService) List(ctx context.Context, institutionID uuid.UUID) ([]model.Account, error) {
	items, err := s.accounts.List(ctx, institutionID)
	if items == nil {
		items = []model.Account{}
	}
	return items, err
}

func (s *AccountService) Create(ctx context.Context, institutionID uuid.UUID, req *model.CreateAccountRequest) (*model.Account, error) {
	return s.accounts.Create(ctx, req.ToAccount(institutionID))
}

func (s *AccountService) Update(ctx context.Context, institutionID uuid.UUID, req *model.UpdateAccountRequest) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, institutionID, req.UUID())
	if err != nil {
		return nil, err
	}
	req.ApplyTo(account)

	updated, err := s.accounts.Update(ctx, account)
	if err != nil {
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.server.Logger, institutionID)
	return updated, nil
}

func (s *AccountService) Delete(ctx context.Context, institutionID, id uuid.UUID) error {
	return domainError(s.accounts.Delete(ctx, institutionID, id))
}
