package memrepo

import (
	"context"
	"unicode/utf8"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/google/uuid"
)

// Transfers exposes the transfer ledger of the store.
//
// Account and transfer repositories share method names, so the ledger lives on its own view.
type Transfers struct {
	s *Store
}

// Transfers returns the transfer ledger view of the store.
func (s *Store) Transfers() *Transfers {
	return &Transfers{s: s}
}

// Create records a pending transfer with a fresh reference and then returns it.
func (r *Transfers) Create(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	switch {
	case arg.Amount <= 0:
		return domain.Transfer{}, domain.ErrInvalidAmount
	case arg.FromAccountID == arg.ToAccountID:
		return domain.Transfer{}, domain.ErrSelfTransfer
	case utf8.RuneCountInString(arg.Description) > domain.MaxDescriptionLength:
		return domain.Transfer{}, domain.ErrDescriptionTooLong
	}

	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[arg.FromAccountID]; !ok {
		return domain.Transfer{}, domain.ErrSenderAccountNotFound
	}

	if _, ok := s.accounts[arg.ToAccountID]; !ok {
		return domain.Transfer{}, domain.ErrRecipientAccountNotFound
	}

	now := s.now()
	t := domain.Transfer{
		ID:                uuid.NewString(),
		FromAccountID:     arg.FromAccountID,
		ToAccountID:       arg.ToAccountID,
		FromAccountNumber: arg.FromAccountNumber,
		ToAccountNumber:   arg.ToAccountNumber,
		Amount:            arg.Amount,
		Currency:          arg.Currency,
		Status:            domain.TransferPending,
		Reference:         uuid.NewString(),
		Description:       arg.Description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	s.transfers[t.ID] = t
	s.references[t.Reference] = t.ID
	s.transferLog = append(s.transferLog, t.ID)

	return t, nil
}

// Get returns the transfer with the given id.
func (r *Transfers) Get(ctx context.Context, id string) (domain.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transfers[id]
	if !ok {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	return t, nil
}

// GetByReference returns the transfer with the given reference.
func (r *Transfers) GetByReference(ctx context.Context, reference string) (domain.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transfers[r.s.references[reference]]
	if !ok {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	return t, nil
}

// SetStatus moves a pending transfer to the given status.
func (r *Transfers) SetStatus(ctx context.Context, id string, status domain.TransferStatus) (domain.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.setStatus(id, status)
}

func (s *Store) setStatus(id string, status domain.TransferStatus) (domain.Transfer, error) {
	t, ok := s.transfers[id]
	if !ok {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	if t.Status.IsTerminal() {
		return domain.Transfer{}, domain.ErrTransferNotPending
	}

	t.Status = status
	t.UpdatedAt = s.now()
	s.transfers[id] = t

	return t, nil
}

// ListByAccount returns all transfers where the account is the sender or the receiver, newest first.
func (r *Transfers) ListByAccount(ctx context.Context, accountID string) ([]domain.Transfer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	items := []domain.Transfer{}

	for i := len(r.s.transferLog) - 1; i >= 0; i-- {
		t := r.s.transfers[r.s.transferLog[i]]
		if t.FromAccountID == accountID || t.ToAccountID == accountID {
			items = append(items, t)
		}
	}

	return items, nil
}

// Settle moves the money of a pending transfer and marks it completed under a single lock.
func (r *Transfers) Settle(ctx context.Context, t domain.Transfer) (domain.Transfer, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.transfers[t.ID]
	if !ok {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	if stored.Status.IsTerminal() {
		return domain.Transfer{}, domain.ErrTransferNotPending
	}

	from, ok := s.accounts[t.FromAccountID]
	if !ok || !from.IsActive {
		return domain.Transfer{}, domain.ErrAccountNotFound
	}

	to, ok := s.accounts[t.ToAccountID]
	if !ok || !to.IsActive {
		return domain.Transfer{}, domain.ErrAccountNotFound
	}

	if from.Balance < t.Amount {
		return domain.Transfer{}, domain.ErrInsufficientFunds
	}

	if to.Balance > domain.MaxBalance-t.Amount {
		return domain.Transfer{}, domain.ErrBalanceOverflow
	}

	if _, err := s.addBalance(from.ID, -t.Amount); err != nil {
		return domain.Transfer{}, err
	}

	if _, err := s.addBalance(to.ID, t.Amount); err != nil {
		return domain.Transfer{}, err
	}

	return s.setStatus(t.ID, domain.TransferCompleted)
}
