// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/google/uuid"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `id, account_number, owner_id, balance, currency, is_active, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.AccountNumber,
		&a.OwnerID,
		&a.Balance,
		&a.Currency,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

const createQuery = `
INSERT INTO
    accounts (id, account_number, owner_id, balance, currency)
VALUES
    ($1, $2, $3, 0, $4)
RETURNING ` + accountColumns

// Create creates the account with zero balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, uuid.NewString(), arg.AccountNumber, arg.OwnerID, arg.Currency)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "accounts_account_number_key":
				return domain.Account{}, domain.ErrDuplicateAccountNumber
			case "accounts_owner_active_key":
				return domain.Account{}, domain.ErrDuplicateOwner
			case "accounts_owner_id_fkey":
				return domain.Account{}, domain.ErrUserNotFound
			case "accounts_account_number_check":
				return domain.Account{}, domain.ErrInvalidAccountNumber
			}
		}

		return domain.Account{}, dbpkg.StoreError(err)
	}

	return a, nil
}

const getQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id, active or not.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return r.getOne(ctx, getQuery, id)
}

const getByNumberQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE account_number = $1 AND is_active
`

// GetByNumber returns the active account with the given account number.
func (r *RepoPGS) GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	return r.getOne(ctx, getByNumberQuery, accountNumber)
}

const getByOwnerQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE owner_id = $1 AND is_active
`

// GetByOwner returns the active account of the given user.
func (r *RepoPGS) GetByOwner(ctx context.Context, ownerID string) (domain.Account, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return r.getOne(ctx, getByOwnerQuery, ownerID)
}

func (r *RepoPGS) getOne(ctx context.Context, query, arg string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, dbpkg.StoreError(err)
	}

	return a, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1, updated_at = now()
WHERE id = $2 AND is_active
RETURNING ` + accountColumns

// AddBalance changes the account's balance by delta in a single statement and returns the changed account.
//
// The accounts_balance_check constraint rejects any change that would make the balance negative
// and the bigint column rejects one past domain.MaxBalance.
func (r *RepoPGS) AddBalance(ctx context.Context, id string, delta int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if _, err := uuid.Parse(id); err != nil {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	a, err := scanAccount(r.db.QueryRowContext(ctx, addBalanceQuery, delta, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch {
			case pqErr.Constraint == "accounts_balance_check":
				return domain.Account{}, domain.ErrInsufficientFunds
			case pqErr.Code.Name() == "numeric_value_out_of_range":
				return domain.Account{}, domain.ErrBalanceOverflow
			}
		}

		l.Error().Err(err).Msgf("AddBalance(ctx context.Context, %v, %v)", id, delta)

		return domain.Account{}, dbpkg.StoreError(err)
	}

	return a, nil
}

const deactivateQuery = `
UPDATE accounts
SET is_active = false, updated_at = now()
WHERE id = $1 AND is_active
RETURNING ` + accountColumns

// Deactivate soft deletes the account. The row and its number are kept.
func (r *RepoPGS) Deactivate(ctx context.Context, id string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if _, err := uuid.Parse(id); err != nil {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	a, err := scanAccount(r.db.QueryRowContext(ctx, deactivateQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, dbpkg.StoreError(err)
	}

	return a, nil
}
