// Package memrepo keeps accounts, transfers, users and sessions in process memory.
//
// It backs local runs and the engine tests. A single mutex guards all data so
// Settle can adjust both balances and the transfer status atomically.
package memrepo

import (
	"sync"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// Store is an in-memory implementation of the account, transfer, user and session repositories.
type Store struct {
	mu sync.Mutex

	accounts      map[string]domain.Account
	numbers       map[string]string // account number -> account id
	activeByOwner map[string]string // owner id -> active account id

	transfers   map[string]domain.Transfer
	references  map[string]string // reference -> transfer id
	transferLog []string          // transfer ids in creation order

	users  map[string]domain.User
	emails map[string]string // email -> user id

	sessions map[string]session

	now func() time.Time
}

type session struct {
	token     string
	expiresAt time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		accounts:      make(map[string]domain.Account),
		numbers:       make(map[string]string),
		activeByOwner: make(map[string]string),
		transfers:     make(map[string]domain.Transfer),
		references:    make(map[string]string),
		users:         make(map[string]domain.User),
		emails:        make(map[string]string),
		sessions:      make(map[string]session),
		now:           time.Now,
	}
}
