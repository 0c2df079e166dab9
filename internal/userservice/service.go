// Package userservice manages business logic layer of users.
package userservice

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// AccountProvisioner opens the account of a new user.
type AccountProvisioner interface {
	Provision(ctx context.Context, userID string) (domain.Account, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo     Repo
	accounts AccountProvisioner
}

// New return user service struct to manage user bussines logic.
func New(ur Repo, ap AccountProvisioner) *Service {
	return &Service{
		repo:     ur,
		accounts: ap,
	}
}

// Create creates the customer and opens their account.
func (s *Service) Create(ctx context.Context, email, password, firstName, lastName string) (domain.UserWithoutPassword, domain.Account, error) {
	l := zerolog.Ctx(ctx)

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.UserWithoutPassword{}, domain.Account{}, errorspkg.ErrInternal
	}

	arg := domain.CreateUserParams{
		Email:          email,
		HashedPassword: hashedPassword,
		FirstName:      firstName,
		LastName:       lastName,
		Role:           domain.RoleCustomer,
	}

	user, err := s.repo.Create(ctx, arg)
	if err != nil {
		return domain.UserWithoutPassword{}, domain.Account{}, err
	}

	account, err := s.accounts.Provision(ctx, user.ID)
	if err != nil {
		l.Error().Err(err).Str("user_id", user.ID).Msg("user created without account")
		return domain.UserWithoutPassword{}, domain.Account{}, err
	}

	return user.WithoutPassword(), account, nil
}

// CheckPassword checks if the password is valid for the given email.
func (s *Service) CheckPassword(ctx context.Context, email, pass string) (domain.UserWithoutPassword, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return domain.UserWithoutPassword{}, err
	}

	err = passpkg.Check(pass, user.HashedPassword)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Send()
		return domain.UserWithoutPassword{}, domain.ErrWrongPassword
	}

	return user.WithoutPassword(), nil
}
