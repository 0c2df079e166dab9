// Package helpers seeds the database for integration tests.
package helpers

import (
	"context"
	"testing"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/userrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// SeedUser creates a random customer.
func SeedUser(t *testing.T, db dbpkg.SQLInterface) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(10))
	if err != nil {
		t.Fatalf("passpkg.Hash returned error: %v", err)
	}

	arg := domain.CreateUserParams{
		Email:          randompkg.Email(),
		HashedPassword: hashedPassword,
		FirstName:      randompkg.Name(),
		LastName:       randompkg.Name(),
	}

	user, err := userrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("userRepo.Create(%+v) returned error: %v", arg, err)
	}

	return user
}

// SeedAccountWithBalance creates an active account for the owner holding balance minor units.
func SeedAccountWithBalance(t *testing.T, db dbpkg.SQLInterface, ownerID, currency string, balance int64) domain.Account {
	t.Helper()

	accountRepo := accountrepo.NewRepoPGS(db)

	arg := domain.CreateAccountParams{
		AccountNumber: randompkg.AccountNumber(),
		OwnerID:       ownerID,
		Currency:      currency,
	}

	account, err := accountRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(%+v) returned error: %v", arg, err)
	}

	if balance == 0 {
		return account
	}

	account, err = accountRepo.AddBalance(context.Background(), account.ID, balance)
	if err != nil {
		t.Fatalf("accountRepo.AddBalance(%v, %v) returned error: %v", account.ID, balance, err)
	}

	return account
}

// SeedAccountWith1000NGNBalance creates a user owned account holding 1000.00 NGN.
func SeedAccountWith1000NGNBalance(t *testing.T, db dbpkg.SQLInterface) domain.Account {
	t.Helper()

	user := SeedUser(t, db)

	return SeedAccountWithBalance(t, db, user.ID, "NGN", 100_000)
}
