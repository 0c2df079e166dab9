// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/rs/zerolog"
)

// MaxProvisionAttempts bounds the account number generation loop.
const MaxProvisionAttempts = 100

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	GetByOwner(ctx context.Context, ownerID string) (domain.Account, error)
	AddBalance(ctx context.Context, id string, delta int64) (domain.Account, error)
	Deactivate(ctx context.Context, id string) (domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo      Repo
	currency  string
	newNumber func() string
}

// Option configures the Service.
type Option func(*Service)

// WithNumberGenerator replaces the random account number generator.
func WithNumberGenerator(f func() string) Option {
	return func(s *Service) {
		s.newNumber = f
	}
}

// New returns account service struct to manage account bussines logic.
// New accounts are opened in the given currency.
func New(ar Repo, currency string, opts ...Option) *Service {
	s := &Service{
		repo:      ar,
		currency:  currency,
		newNumber: randompkg.AccountNumber,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Provision opens a zero balance account with a fresh account number for the user.
//
// A number is drawn until no active account uses it. If the store still rejects it
// as taken (an inactive account or a concurrent provisioning) a new number is drawn.
func (s *Service) Provision(ctx context.Context, userID string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	for attempt := 1; attempt <= MaxProvisionAttempts; attempt++ {
		number := s.newNumber()

		_, err := s.repo.GetByNumber(ctx, number)
		if err == nil {
			continue
		}

		if !errors.Is(err, domain.ErrAccountNotFound) {
			return domain.Account{}, err
		}

		account, err := s.repo.Create(ctx, domain.CreateAccountParams{
			AccountNumber: number,
			OwnerID:       userID,
			Currency:      s.currency,
		})
		if errors.Is(err, domain.ErrDuplicateAccountNumber) {
			l.Debug().Int("attempt", attempt).Msg("account number taken")
			continue
		}

		if err != nil {
			return domain.Account{}, err
		}

		l.Info().Str("account_number", account.AccountNumber).Str("owner_id", userID).Msg("account provisioned")

		return account, nil
	}

	l.Error().Str("owner_id", userID).Msg("account number generation exhausted")

	return domain.Account{}, domain.ErrAccountNumberExhausted
}

// Get returns the active account of the user.
func (s *Service) Get(ctx context.Context, userID string) (domain.Account, error) {
	return s.repo.GetByOwner(ctx, userID)
}

// TopUp credits the user's account with amount minor units, at most domain.MaxTopUpAmount.
func (s *Service) TopUp(ctx context.Context, userID string, amount int64) (domain.Account, error) {
	if amount <= 0 || amount > domain.MaxTopUpAmount {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	account, err := s.repo.GetByOwner(ctx, userID)
	if err != nil {
		return domain.Account{}, err
	}

	account, err = s.repo.AddBalance(ctx, account.ID, amount)
	if err != nil {
		return domain.Account{}, err
	}

	zerolog.Ctx(ctx).Info().Str("account_number", account.AccountNumber).Int64("amount", amount).Msg("account topped up")

	return account, nil
}

// Deactivate soft deletes the active account with the given number.
func (s *Service) Deactivate(ctx context.Context, accountNumber string) (domain.Account, error) {
	if !domain.ValidAccountNumber(accountNumber) {
		return domain.Account{}, domain.ErrInvalidAccountNumber
	}

	account, err := s.repo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return domain.Account{}, err
	}

	account, err = s.repo.Deactivate(ctx, account.ID)
	if err != nil {
		return domain.Account{}, err
	}

	zerolog.Ctx(ctx).Info().Str("account_number", accountNumber).Msg("account deactivated")

	return account, nil
}
