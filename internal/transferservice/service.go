// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/retrypkg"
	"github.com/rs/zerolog"
)

// Defaults used when no options are given.
const (
	DefaultStoreTimeout   = 5 * time.Second
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = 50 * time.Millisecond
)

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error)
	GetByReference(ctx context.Context, reference string) (domain.Transfer, error)
	SetStatus(ctx context.Context, id string, status domain.TransferStatus) (domain.Transfer, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Transfer, error)
}

// AccountRepo provides the account store operations the engine needs.
type AccountRepo interface {
	GetByOwner(ctx context.Context, ownerID string) (domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	AddBalance(ctx context.Context, id string, delta int64) (domain.Account, error)
}

// Settler moves the money of a pending transfer and marks it completed in one transaction.
type Settler interface {
	Settle(ctx context.Context, t domain.Transfer) (domain.Transfer, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo     Repo
	accounts AccountRepo
	settler  Settler

	storeTimeout time.Duration
	retry        retrypkg.Policy
}

// Option configures the Service.
type Option func(*Service)

// WithSettler makes the service settle transfers transactionally instead of compensating.
func WithSettler(st Settler) Option {
	return func(s *Service) {
		s.settler = st
	}
}

// WithStoreTimeout bounds every single store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithRetry sets how transient errors of side effect free store calls are retried.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(s *Service) {
		s.retry.Attempts = attempts
		s.retry.BaseDelay = baseDelay
	}
}

// New returns transfer service struct to manage transfer bussines logic.
func New(tr Repo, ar AccountRepo, opts ...Option) *Service {
	s := &Service{
		repo:         tr,
		accounts:     ar,
		storeTimeout: DefaultStoreTimeout,
		retry: retrypkg.Policy{
			Attempts:  DefaultRetryAttempts,
			BaseDelay: DefaultRetryBaseDelay,
			Retryable: errorspkg.IsTransient,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// call runs fn once with the store timeout applied.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fn(ctx)
}

// retried runs fn with the store timeout, retrying transient errors.
// Only calls without side effects go through here.
func retried[T any](ctx context.Context, s *Service, fn func(context.Context) (T, error)) (T, error) {
	return retrypkg.Do(ctx, s.retry, func(ctx context.Context) (T, error) {
		return call(ctx, s.storeTimeout, fn)
	})
}

func (s *Service) accountByOwner(ctx context.Context, userID string) (domain.Account, error) {
	return retried(ctx, s, func(ctx context.Context) (domain.Account, error) {
		return s.accounts.GetByOwner(ctx, userID)
	})
}

func (s *Service) validRequest(ctx context.Context, fromUserID, toAccountNumber string, amount int64, description string) (from, to domain.Account, err error) {
	l := zerolog.Ctx(ctx)

	switch {
	case amount <= 0:
		return from, to, domain.ErrInvalidAmount
	case !domain.ValidAccountNumber(toAccountNumber):
		return from, to, domain.ErrInvalidAccountNumber
	case utf8.RuneCountInString(description) > domain.MaxDescriptionLength:
		return from, to, domain.ErrDescriptionTooLong
	}

	from, err = s.accountByOwner(ctx, fromUserID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return from, to, domain.ErrSenderAccountNotFound
	}

	if err != nil {
		l.Error().Err(err).Str("user_id", fromUserID).Msg("cannot load sender account")
		return from, to, err
	}

	if from.Balance < amount {
		return from, to, domain.ErrInsufficientBalance
	}

	to, err = retried(ctx, s, func(ctx context.Context) (domain.Account, error) {
		return s.accounts.GetByNumber(ctx, toAccountNumber)
	})
	if errors.Is(err, domain.ErrAccountNotFound) {
		return from, to, domain.ErrRecipientAccountNotFound
	}

	if err != nil {
		l.Error().Err(err).Str("account_number", toAccountNumber).Msg("cannot load recipient account")
		return from, to, err
	}

	if from.ID == to.ID {
		return from, to, domain.ErrSelfTransfer
	}

	if from.Currency != to.Currency {
		return from, to, domain.ErrCurrencyMismatch
	}

	return from, to, nil
}

// Transfer checks if transfer request is valid and then executes transfer.
//
// Once the pending record is created the caller's cancellation is ignored and the
// transfer is always driven to a terminal status. Settlement failures are returned
// as *domain.TransferError.
func (s *Service) Transfer(ctx context.Context, fromUserID, toAccountNumber string, amount int64, description string) (domain.Transfer, error) {
	from, to, err := s.validRequest(ctx, fromUserID, toAccountNumber, amount, description)
	if err != nil {
		return domain.Transfer{}, err
	}

	ctx = context.WithoutCancel(ctx)

	t, err := call(ctx, s.storeTimeout, func(ctx context.Context) (domain.Transfer, error) {
		return s.repo.Create(ctx, domain.CreateTransferParams{
			FromAccountID:     from.ID,
			ToAccountID:       to.ID,
			FromAccountNumber: from.AccountNumber,
			ToAccountNumber:   to.AccountNumber,
			Amount:            amount,
			Currency:          from.Currency,
			Description:       description,
		})
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("cannot record transfer")
		return domain.Transfer{}, err
	}

	l := zerolog.Ctx(ctx).With().Str("reference", t.Reference).Logger()
	ctx = l.WithContext(ctx)

	if s.settler != nil {
		return s.settle(ctx, t)
	}

	return s.compensate(ctx, t)
}

// settle runs the whole settlement in one store transaction.
func (s *Service) settle(ctx context.Context, t domain.Transfer) (domain.Transfer, error) {
	settled, err := call(ctx, s.storeTimeout, func(ctx context.Context) (domain.Transfer, error) {
		return s.settler.Settle(ctx, t)
	})
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Msg("settlement rolled back")
		return s.fail(ctx, t, err, true)
	}

	zerolog.Ctx(ctx).Info().Int64("amount", t.Amount).Msg("transfer completed")

	return settled, nil
}

// compensate debits the sender, credits the receiver and reverses the debit
// when the credit fails.
func (s *Service) compensate(ctx context.Context, t domain.Transfer) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	_, err := call(ctx, s.storeTimeout, func(ctx context.Context) (domain.Account, error) {
		return s.accounts.AddBalance(ctx, t.FromAccountID, -t.Amount)
	})
	if err != nil {
		if errorspkg.IsTransient(err) {
			// The store may still have applied the debit.
			l.Error().Err(err).
				Str("event", "reconciliation_required").
				Str("account_id", t.FromAccountID).
				Int64("amount", t.Amount).
				Msg("debit outcome unknown")
		} else {
			l.Info().Err(err).Msg("debit failed")
		}

		return s.fail(ctx, t, err, true)
	}

	_, err = call(ctx, s.storeTimeout, func(ctx context.Context) (domain.Account, error) {
		return s.accounts.AddBalance(ctx, t.ToAccountID, t.Amount)
	})
	if err != nil {
		l.Warn().Err(err).Msg("credit failed, reversing debit")

		_, cerr := call(ctx, s.storeTimeout, func(ctx context.Context) (domain.Account, error) {
			return s.accounts.AddBalance(ctx, t.FromAccountID, t.Amount)
		})
		if cerr != nil {
			l.Error().Err(cerr).
				Str("event", "reconciliation_required").
				Str("account_id", t.FromAccountID).
				Int64("amount", t.Amount).
				Msg("debit reversal failed")

			return s.failUncompensated(ctx, t, err, cerr)
		}

		return s.fail(ctx, t, err, true)
	}

	done, err := retried(ctx, s, func(ctx context.Context) (domain.Transfer, error) {
		return s.repo.SetStatus(ctx, t.ID, domain.TransferCompleted)
	})
	if err != nil {
		if current, ok := s.completed(ctx, t, err); ok {
			return current, nil
		}

		l.Error().Err(err).
			Str("event", "reconciliation_required").
			Int64("amount", t.Amount).
			Msg("balances moved but transfer left pending")

		return domain.Transfer{}, &domain.TransferError{Transfer: t, Cause: err}
	}

	l.Info().Int64("amount", t.Amount).Msg("transfer completed")

	return done, nil
}

// fail marks the transfer failed and returns the settlement error.
//
// If the record turns out to be completed already, the transfer went through
// and it is returned without error.
func (s *Service) fail(ctx context.Context, t domain.Transfer, cause error, compensated bool) (domain.Transfer, error) {
	return s.markFailed(ctx, t, &domain.TransferError{Cause: cause, Compensated: compensated})
}

// failUncompensated is fail for a debit that could not be reversed.
func (s *Service) failUncompensated(ctx context.Context, t domain.Transfer, cause, compensationErr error) (domain.Transfer, error) {
	return s.markFailed(ctx, t, &domain.TransferError{Cause: cause, CompensationErr: compensationErr})
}

func (s *Service) markFailed(ctx context.Context, t domain.Transfer, terr *domain.TransferError) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	failed, err := retried(ctx, s, func(ctx context.Context) (domain.Transfer, error) {
		return s.repo.SetStatus(ctx, t.ID, domain.TransferFailed)
	})
	if err == nil {
		terr.Transfer = failed
		return domain.Transfer{}, terr
	}

	if current, ok := s.completed(ctx, t, err); ok {
		return current, nil
	}

	l.Error().Err(err).
		AnErr("cause", terr.Cause).
		Str("event", "reconciliation_required").
		Msg("transfer left pending")

	return domain.Transfer{}, &domain.TransferError{Transfer: t, Cause: terr.Cause, CompensationErr: terr.CompensationErr}
}

// completed re-reads the transfer after a status update was rejected and reports
// whether it already reached the completed status.
func (s *Service) completed(ctx context.Context, t domain.Transfer, err error) (domain.Transfer, bool) {
	if !errors.Is(err, domain.ErrTransferNotPending) {
		return domain.Transfer{}, false
	}

	current, err := retried(ctx, s, func(ctx context.Context) (domain.Transfer, error) {
		return s.repo.GetByReference(ctx, t.Reference)
	})
	if err != nil || current.Status != domain.TransferCompleted {
		return domain.Transfer{}, false
	}

	return current, true
}

// History returns all transfers of the user's account, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]domain.Transfer, error) {
	account, err := s.accountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	return retried(ctx, s, func(ctx context.Context) ([]domain.Transfer, error) {
		return s.repo.ListByAccount(ctx, account.ID)
	})
}

// Get returns the transfer with the given reference if the user's account took part in it.
func (s *Service) Get(ctx context.Context, userID, reference string) (domain.Transfer, error) {
	account, err := s.accountByOwner(ctx, userID)
	if err != nil {
		return domain.Transfer{}, err
	}

	t, err := retried(ctx, s, func(ctx context.Context) (domain.Transfer, error) {
		return s.repo.GetByReference(ctx, reference)
	})
	if err != nil {
		return domain.Transfer{}, err
	}

	if t.FromAccountID != account.ID && t.ToAccountID != account.ID {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	return t, nil
}
