// Package transferrepo manages repository layer of transfers.
package transferrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transfer repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transfer RepoPGS bound to an open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transfer RepoPGS wiht connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const transferColumns = `id, from_account_id, to_account_id, from_account_number, to_account_number,
	amount, currency, status, reference, description, created_at, updated_at`

func scanTransfer(row interface{ Scan(...any) error }) (domain.Transfer, error) {
	var t domain.Transfer

	err := row.Scan(
		&t.ID,
		&t.FromAccountID,
		&t.ToAccountID,
		&t.FromAccountNumber,
		&t.ToAccountNumber,
		&t.Amount,
		&t.Currency,
		&t.Status,
		&t.Reference,
		&t.Description,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	return t, err
}

const createQuery = `
INSERT INTO
    transfers (id, from_account_id, to_account_id, from_account_number, to_account_number,
        amount, currency, status, reference, description)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, 'pending', $8, $9)
RETURNING ` + transferColumns

// Create records a pending transfer with a fresh reference and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		uuid.NewString(),
		arg.FromAccountID,
		arg.ToAccountID,
		arg.FromAccountNumber,
		arg.ToAccountNumber,
		arg.Amount,
		arg.Currency,
		uuid.NewString(),
		arg.Description,
	)

	t, err := scanTransfer(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "transfers_from_account_id_fkey":
				return domain.Transfer{}, domain.ErrSenderAccountNotFound
			case "transfers_to_account_id_fkey":
				return domain.Transfer{}, domain.ErrRecipientAccountNotFound
			case "transfers_amount_check":
				return domain.Transfer{}, domain.ErrInvalidAmount
			case "transfers_distinct_accounts_check":
				return domain.Transfer{}, domain.ErrSelfTransfer
			}

			if pqErr.Code.Name() == "string_data_right_truncation" {
				return domain.Transfer{}, domain.ErrDescriptionTooLong
			}
		}

		return domain.Transfer{}, dbpkg.StoreError(err)
	}

	return t, nil
}

const getQuery = `
SELECT ` + transferColumns + `
FROM transfers
WHERE id = $1
`

// Get returns the transfer with the given id.
func (r *RepoPGS) Get(ctx context.Context, id string) (domain.Transfer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	return r.getOne(ctx, getQuery, id)
}

const getByReferenceQuery = `
SELECT ` + transferColumns + `
FROM transfers
WHERE reference = $1
`

// GetByReference returns the transfer with the given reference.
func (r *RepoPGS) GetByReference(ctx context.Context, reference string) (domain.Transfer, error) {
	return r.getOne(ctx, getByReferenceQuery, reference)
}

func (r *RepoPGS) getOne(ctx context.Context, query, arg string) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransfer(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transfer{}, domain.ErrTransferNotFound
		}

		l.Error().Err(err).Send()

		return domain.Transfer{}, dbpkg.StoreError(err)
	}

	return t, nil
}

const setStatusQuery = `
UPDATE transfers
SET status = $2, updated_at = clock_timestamp()
WHERE id = $1 AND status = 'pending'
RETURNING ` + transferColumns

// SetStatus moves a pending transfer to the given status.
//
// Transfers in a terminal status are left untouched and domain.ErrTransferNotPending is returned.
func (r *RepoPGS) SetStatus(ctx context.Context, id string, status domain.TransferStatus) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	if _, err := uuid.Parse(id); err != nil {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	t, err := scanTransfer(r.db.QueryRowContext(ctx, setStatusQuery, id, status))
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		l.Error().Err(err).Msgf("SetStatus(ctx context.Context, %v, %v)", id, status)
		return domain.Transfer{}, dbpkg.StoreError(err)
	}

	if _, err := r.Get(ctx, id); err != nil {
		return domain.Transfer{}, err
	}

	return domain.Transfer{}, domain.ErrTransferNotPending
}

const listByAccountQuery = `
SELECT ` + transferColumns + `
FROM transfers
WHERE from_account_id = $1
UNION ALL
SELECT ` + transferColumns + `
FROM transfers
WHERE to_account_id = $1
ORDER BY created_at DESC, id DESC
`

// ListByAccount returns all transfers where the account is the sender or the receiver, newest first.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID string) ([]domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	items := []domain.Transfer{}

	if _, err := uuid.Parse(accountID); err != nil {
		return items, nil
	}

	rows, err := r.db.QueryContext(ctx, listByAccountQuery, accountID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.StoreError(err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, dbpkg.StoreError(err)
		}

		items = append(items, t)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.StoreError(err)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.StoreError(err)
	}

	return items, nil
}

// Settle moves the money of a pending transfer and marks it completed.
//
// The debit, the credit and the status update run within a single db transaction,
// so either all of them are applied or none.
func (r *RepoPGS) Settle(ctx context.Context, t domain.Transfer) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Transfer{}, dbpkg.StoreError(err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	accountRepo := accountrepo.NewRepoPGS(tx)
	transferRepo := NewTxRepoPGS(tx)

	// To avoid deadlocks execute statements in consistent id order
	if t.FromAccountID < t.ToAccountID {
		err = addBalances(ctx, accountRepo, addBalanceParams{
			account1ID: t.FromAccountID,
			amount1:    -t.Amount,
			account2ID: t.ToAccountID,
			amount2:    t.Amount,
		})
	} else {
		err = addBalances(ctx, accountRepo, addBalanceParams{
			account1ID: t.ToAccountID,
			amount1:    t.Amount,
			account2ID: t.FromAccountID,
			amount2:    -t.Amount,
		})
	}

	if err != nil {
		return domain.Transfer{}, err
	}

	completed, err := transferRepo.SetStatus(ctx, t.ID, domain.TransferCompleted)
	if err != nil {
		return domain.Transfer{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Transfer{}, dbpkg.StoreError(err)
	}

	return completed, nil
}

type addBalanceParams struct {
	account1ID string
	amount1    int64
	account2ID string
	amount2    int64
}

func addBalances(ctx context.Context, r *accountrepo.RepoPGS, arg addBalanceParams) error {
	if _, err := r.AddBalance(ctx, arg.account1ID, arg.amount1); err != nil {
		return err
	}

	if _, err := r.AddBalance(ctx, arg.account2ID, arg.amount2); err != nil {
		return err
	}

	return nil
}
