package domain

import (
	"errors"
	"time"
)

// MaxDescriptionLength is the maximum number of characters in a transfer description.
const MaxDescriptionLength = 255

var (
	// ErrInvalidAmount indicates a non-positive amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrDescriptionTooLong indicates that the description exceeds MaxDescriptionLength.
	ErrDescriptionTooLong = errors.New("description too long")
	// ErrSelfTransfer indicates that the sender and the recipient are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to own account")
	// ErrSenderAccountNotFound indicates that the sender has no active account.
	ErrSenderAccountNotFound = errors.New("sender account not found")
	// ErrRecipientAccountNotFound indicates that the recipient account is missing or inactive.
	ErrRecipientAccountNotFound = errors.New("recipient account not found")
	// ErrInsufficientBalance indicates that the sender balance is below the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrCurrencyMismatch indicates that transfer accounts have different currencies.
	ErrCurrencyMismatch = errors.New("accounts currency mismatch")
	// ErrTransferNotFound indicates that the transfer is not found.
	ErrTransferNotFound = errors.New("transfer not found")
	// ErrTransferNotPending indicates an attempt to leave a terminal status.
	ErrTransferNotPending = errors.New("transfer is not pending")
	// ErrTransferFailed indicates that settlement failed and the transfer is marked failed.
	ErrTransferFailed = errors.New("transfer failed")
	// ErrReconciliationRequired indicates that balances may be inconsistent and need manual review.
	ErrReconciliationRequired = errors.New("transfer requires reconciliation")
)

// TransferStatus is the lifecycle state of a transfer.
type TransferStatus string

// Transfer statuses.
const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferFailed    TransferStatus = "failed"
	TransferCancelled TransferStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s TransferStatus) IsTerminal() bool {
	return s != TransferPending
}

// Transfer holds transfer data between two accounts.
type Transfer struct {
	ID                string         `json:"id"`
	FromAccountID     string         `json:"from_account_id"`
	ToAccountID       string         `json:"to_account_id"`
	FromAccountNumber string         `json:"from_account_number"`
	ToAccountNumber   string         `json:"to_account_number"`
	Amount            int64          `json:"amount"` // must be positive
	Currency          string         `json:"currency"`
	Status            TransferStatus `json:"status"`
	Reference         string         `json:"reference"`
	Description       string         `json:"description,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// CreateTransferParams is the input data to record a pending transfer.
type CreateTransferParams struct {
	FromAccountID     string `json:"from_account_id"`
	ToAccountID       string `json:"to_account_id"`
	FromAccountNumber string `json:"from_account_number"`
	ToAccountNumber   string `json:"to_account_number"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	Description       string `json:"description"`
}

// TransferError is returned when a transfer was recorded but could not be settled.
type TransferError struct {
	Transfer Transfer
	Cause    error
	// Compensated is false when the sender debit could not be reversed.
	Compensated bool
	// CompensationErr is why the debit reversal failed, if it was attempted.
	CompensationErr error
}

func (e *TransferError) Error() string {
	if !e.Compensated {
		msg := ErrReconciliationRequired.Error() + ": " + e.Cause.Error()
		if e.CompensationErr != nil {
			msg += "; reversal: " + e.CompensationErr.Error()
		}

		return msg
	}

	return ErrTransferFailed.Error() + ": " + e.Cause.Error()
}

// Unwrap exposes the outcome sentinel and the underlying errors to errors.Is.
func (e *TransferError) Unwrap() []error {
	if !e.Compensated {
		errs := []error{ErrReconciliationRequired, e.Cause}
		if e.CompensationErr != nil {
			errs = append(errs, e.CompensationErr)
		}

		return errs
	}

	return []error{ErrTransferFailed, e.Cause}
}
