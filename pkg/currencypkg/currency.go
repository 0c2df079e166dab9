// Package currencypkg lists the currencies accounts can be held in.
package currencypkg

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnsupportedCurrency indicates a currency code no account can be opened in.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// ISO 4217 codes of the supported currencies. All of them have two minor digits.
const (
	NGN = "NGN"
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
)

// SupportedCurrencies holds all the supported currencies.
var SupportedCurrencies = []string{NGN, USD, EUR, GBP}

// IsSupportedCurrency returns true if the currency is supported.
// Codes are case sensitive.
func IsSupportedCurrency(currency string) bool {
	return slices.Contains(SupportedCurrencies, currency)
}

// Parse normalizes a currency code taken from configuration or user input.
func Parse(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !IsSupportedCurrency(c) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}

	return c, nil
}
