// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"math"
	"regexp"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found or not active.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidAccountNumber indicates that the account number is not 10 digits.
	ErrInvalidAccountNumber = errors.New("invalid account number")
	// ErrInsufficientFunds indicates that the balance adjustment would make the balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceOverflow indicates that a credit would push the balance past MaxBalance.
	ErrBalanceOverflow = errors.New("balance limit exceeded")
	// ErrDuplicateAccountNumber indicates that the account number is already taken.
	ErrDuplicateAccountNumber = errors.New("account number already exists")
	// ErrDuplicateOwner indicates that the owner already has an active account.
	ErrDuplicateOwner = errors.New("owner already has an active account")
	// ErrAccountNumberExhausted indicates that no free account number was found.
	ErrAccountNumberExhausted = errors.New("account number generation exhausted")
)

const (
	// AccountNumberLength is the number of digits in an account number.
	AccountNumberLength = 10

	// MaxBalance is the largest balance an account can hold, in minor units.
	MaxBalance int64 = math.MaxInt64
	// MaxTopUpAmount is the largest single top-up, in minor units.
	MaxTopUpAmount int64 = 1_000_000_000_000
)

var accountNumberRx = regexp.MustCompile(`^[0-9]{10}$`)

// ValidAccountNumber reports whether s is exactly ten ASCII digits.
func ValidAccountNumber(s string) bool {
	return accountNumberRx.MatchString(s)
}

// Account holds user balance in minor currency units.
type Account struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"account_number"`
	OwnerID       string    `json:"owner_id"`
	Balance       int64     `json:"balance"`
	Currency      string    `json:"currency"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	AccountNumber string `json:"account_number"`
	OwnerID       string `json:"owner_id"`
	Currency      string `json:"currency"`
}
