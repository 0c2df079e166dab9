// Package randompkg provides functionality for generating random applications common items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/go-petr/pet-ledger/pkg/currencypkg"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"

	// Account numbers are 10 digits without a leading zero.
	accountNumberMin = 1_000_000_000
	accountNumberMax = 9_999_999_999
)

// Intn is a shortcut for generating a random integer in [0, max) using crypto/rand.
func Intn(max int64) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Int64Between generates a random integer in [min, max].
func Int64Between(min, max int64) int64 {
	return min + Intn(max-min+1)
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := int64(len(alphabet))

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// AccountNumber generates a random 10 digit account number.
func AccountNumber() string {
	return fmt.Sprintf("%d", Int64Between(accountNumberMin, accountNumberMax))
}

// MoneyAmountBetween generates a random amount in minor units between min and max.
func MoneyAmountBetween(min, max int64) int64 {
	return Int64Between(min, max)
}

// Currency generates a random supported currency code.
func Currency() string {
	return currencypkg.SupportedCurrencies[Intn(int64(len(currencypkg.SupportedCurrencies)))]
}

// Name generates a random person name.
func Name() string {
	return String(6)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}
