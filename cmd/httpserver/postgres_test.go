//go:build integration

package httpserver_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/integrationtest"
	"github.com/go-petr/pet-ledger/internal/integrationtest/helpers"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

func TestPostgresTransfer(t *testing.T) {
	server := integrationtest.SetupServer(t, "../../configs")
	db := server.Backend.DB

	sender := helpers.SeedUser(t, db)
	receiver := helpers.SeedUser(t, db)
	helpers.SeedAccountWithBalance(t, db, sender.ID, "NGN", 100_000)
	to := helpers.SeedAccountWithBalance(t, db, receiver.ID, "NGN", 0)

	tokenMaker, err := tokenpkg.NewMaker(server.Config.TokenType, server.Config.TokenSymmetricKey)
	require.NoError(t, err)

	token, _, err := tokenMaker.CreateToken(sender.ID, domain.RoleCustomer, server.Config.AccessTokenDuration)
	require.NoError(t, err)

	code, res := call(t, server, http.MethodPost, "/transfers", token, gin.H{
		"to_account_number": to.AccountNumber,
		"amount":            "250.25",
	})
	require.Equal(t, http.StatusCreated, code, res.Error)

	transfer := decodeData[transferView](t, res, "transfer")
	require.Equal(t, string(domain.TransferCompleted), transfer.Status)

	code, res = call(t, server, http.MethodGet, "/accounts/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "749.75", decodeData[accountView](t, res, "account").Balance)

	var balance int64
	require.NoError(t, db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, to.ID).Scan(&balance))
	require.Equal(t, int64(25_025), balance)

}
