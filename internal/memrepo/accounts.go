package memrepo

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/google/uuid"
)

// Create creates the account with zero balance and then returns it.
func (s *Store) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	if !domain.ValidAccountNumber(arg.AccountNumber) {
		return domain.Account{}, domain.ErrInvalidAccountNumber
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.numbers[arg.AccountNumber]; ok {
		return domain.Account{}, domain.ErrDuplicateAccountNumber
	}

	if _, ok := s.activeByOwner[arg.OwnerID]; ok {
		return domain.Account{}, domain.ErrDuplicateOwner
	}

	now := s.now()
	a := domain.Account{
		ID:            uuid.NewString(),
		AccountNumber: arg.AccountNumber,
		OwnerID:       arg.OwnerID,
		Currency:      arg.Currency,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.accounts[a.ID] = a
	s.numbers[a.AccountNumber] = a.ID
	s.activeByOwner[a.OwnerID] = a.ID

	return a, nil
}

// Get returns the account with the given id, active or not.
func (s *Store) Get(ctx context.Context, id string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// GetByNumber returns the active account with the given account number.
func (s *Store) GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[s.numbers[accountNumber]]
	if !ok || !a.IsActive {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// GetByOwner returns the active account of the given user.
func (s *Store) GetByOwner(ctx context.Context, ownerID string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[s.activeByOwner[ownerID]]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// AddBalance changes the account's balance by delta and returns the changed account.
func (s *Store) AddBalance(ctx context.Context, id string, delta int64) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addBalance(id, delta)
}

func (s *Store) addBalance(id string, delta int64) (domain.Account, error) {
	a, ok := s.accounts[id]
	if !ok || !a.IsActive {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	if delta > 0 && a.Balance > domain.MaxBalance-delta {
		return domain.Account{}, domain.ErrBalanceOverflow
	}

	if delta < 0 && a.Balance < -delta {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	a.Balance += delta
	a.UpdatedAt = s.now()
	s.accounts[id] = a

	return a, nil
}

// Deactivate soft deletes the account. Its number stays taken.
func (s *Store) Deactivate(ctx context.Context, id string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || !a.IsActive {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	a.IsActive = false
	a.UpdatedAt = s.now()
	s.accounts[id] = a
	delete(s.activeByOwner, a.OwnerID)

	return a, nil
}
