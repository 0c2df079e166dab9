package web

import (
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/currencypkg"
	"github.com/go-playground/validator/v10"
)

// ValidCurrency validates whether the currency is supported.
var ValidCurrency validator.Func = func(fl validator.FieldLevel) bool {
	if c, ok := fl.Field().Interface().(string); ok {
		return currencypkg.IsSupportedCurrency(c)
	}

	return false
}

// ValidAccountNumber validates whether the field is a 10 digit account number.
var ValidAccountNumber validator.Func = func(fl validator.FieldLevel) bool {
	if n, ok := fl.Field().Interface().(string); ok {
		return domain.ValidAccountNumber(n)
	}

	return false
}

// RegisterValidators adds the custom binding tags to v.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("currency", ValidCurrency); err != nil {
		return err
	}

	return v.RegisterValidation("accountnumber", ValidAccountNumber)
}
