package passpkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash(t *testing.T) {
	password := "correct horse battery staple"

	first, err := Hash(password)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	require.NotEqual(t, password, first)

	second, err := Hash(password)
	require.NoError(t, err)
	require.NotEqual(t, first, second, "salt must differ per hash")

	cost, err := bcrypt.Cost([]byte(first))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashTooLong(t *testing.T) {
	_, err := Hash(strings.Repeat("p", 73))
	require.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestCheck(t *testing.T) {
	hashed, err := Hash("secret123")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "OK", password: "secret123"},
		{name: "Wrong", password: "secret124", wantErr: bcrypt.ErrMismatchedHashAndPassword},
		{name: "Empty", password: "", wantErr: bcrypt.ErrMismatchedHashAndPassword},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Check(tc.password, hashed)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
