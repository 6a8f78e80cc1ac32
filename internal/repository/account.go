package repository

import (
	"context"

	"github.com/deppfellow/edufinance/internal/database"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, institution_id, name, type, balance, is_active, created_at, updated_at`

type AccountRepository struct {
	server *server.Server
}

func NewAccountRepository(s *server.Server) *AccountRepository {
	return &AccountRepository{server: s}
}

func (r *AccountRepository) Create(ctx context.Context, a *model.Account) (*model.Account, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		INSERT INTO accounts (institution_id, name, type, balance, is_active)
		VALUES (@institution_id, @name, @type, 0, @is_active)
		RETURNING `+accountColumns,
		pgx.NamedArgs{
			"institution_id": a.InstitutionID,
			"name":           a.Name,
			"type":           a.Type,
			"is_active":      a.IsActive,
		})
	return one[model.Account](rows, err, "accounts")
}

func (r *AccountRepository) GetByID(ctx context.Context, institutionID, id uuid.UUID) (*model.Account, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE institution_id = $1 AND id = $2`,
		institutionID, id)
	return one[model.Account](rows, err, "accounts")
}

func (r *AccountRepository) List(ctx context.Context, institutionID uuid.UUID) ([]model.Account, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE institution_id = $1 ORDER BY name`,
		institutionID)
	return many[model.Account](rows, err, "accounts")
}

// Update never touches the balance; only the ledger moves money.
func (r *AccountRepository) Update(ctx context.Context, a *model.Account) (*model.Account, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		UPDATE accounts SET name = @name, type = @type, is_active = @is_active
		WHERE institution_id = @institution_id AND id = @id
		RETURNING `+accountColumns,
		pgx.NamedArgs{
			"id":             a.ID,
			"institution_id": a.InstitutionID,
			"name":           a.Name,
			"type":           a.Type,
			"is_active":      a.IsActive,
		})
	return one[model.Account](rows, err, "accounts")
}

// Delete removes an account whose balance is zero, otherwise it returns
// model.ErrAccountHasBalance.
func (r *AccountRepository) Delete(ctx context.Context, institutionID, id uuid.UUID) error {
	return database.WithTx(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+accountColumns+` FROM accounts
			WHERE institution_id = $1 AND id = $2 FOR UPDATE`, institutionID, id)
		acc, err := one[model.Account](rows, err, "accounts")
		if err != nil {
			return err
		}
		if !acc.Balance.IsZero() {
			return model.ErrAccountHasBalance
		}
		return execOne(ctx, tx, "accounts", `DELETE FROM accounts WHERE id = $1`, id)
	})
}

// adjustBalance adds delta to an active account of the institution inside
// the ledger transaction.
func adjustBalance(ctx context.Context, tx pgx.Tx, institutionID, id uuid.UUID, delta decimal.Decimal) error {
	var active bool
	err := tx.QueryRow(ctx, `
		UPDATE accounts SET balance = balance + $3
		WHERE institution_id = $1 AND id = $2
		RETURNING is_active`, institutionID, id, delta).Scan(&active)
	if err != nil {
		if isNoRows(err) {
			return notFound("accounts")
		}
		return err
	}
	if !active {
		return model.ErrAccountInactive
	}
	return nil
}
