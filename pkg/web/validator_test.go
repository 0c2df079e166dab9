package web

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type transferSample struct {
	To       string `validate:"required,accountnumber"`
	Currency string `validate:"omitempty,currency"`
}

func TestRegisterValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	testCases := []struct {
		name  string
		input transferSample
		want  string
	}{
		{name: "OK", input: transferSample{To: "1234567890", Currency: "NGN"}},
		{name: "NoCurrency", input: transferSample{To: "1234567890"}},
		{name: "ShortNumber", input: transferSample{To: "12345"}, want: "To must be 10 digits"},
		{name: "LettersInNumber", input: transferSample{To: "12345abcde"}, want: "To must be 10 digits"},
		{name: "UnsupportedCurrency", input: transferSample{To: "1234567890", Currency: "JPY"}, want: "Currency is not supported"},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := v.Struct(tc.input)
			if tc.want == "" {
				require.NoError(t, err)
				return
			}

			require.Equal(t, tc.want, BindingErrorMsg(err))
		})
	}
}
