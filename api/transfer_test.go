package api

import (
	"context"
	"testing"

	"walletledger/ledger"
	"walletledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferHandler_Transfer(t *testing.T) {
	svc := setupSQLiteService(t)
	router, _ := newWalletRouter(t, svc, "alice")
	bob, err := svc.Register(context.Background(), "bob", "hash", "")
	require.NoError(t, err)

	doJSON(router, "POST", "/wallet/transactions", `{"type":"INCOME","amount":100,"category":"Salary"}`)

	w := doJSON(router, "POST", "/transfers", `{"to_user":"bob","amount":30,"description":"lunch"}`)
	require.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 70.0, data["sender_balance"])
	assert.NotEmpty(t, data["reference"])
	assert.Equal(t, "lunch to bob", data["expense"].(map[string]interface{})["description"])

	wallet, err := svc.GetWallet(context.Background(), bob.Wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, wallet.Balance)

	list, _, err := svc.ListTransactions(context.Background(), bob.Wallet.ID, ledger.TransactionQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.CategoryTransfer, list[0].Category)
}

func TestTransferHandler_Errors(t *testing.T) {
	svc := setupSQLiteService(t)
	router, _ := newWalletRouter(t, svc, "alice")
	_, err := svc.Register(context.Background(), "bob", "hash", "")
	require.NoError(t, err)

	w := doJSON(router, "POST", "/transfers", `{"to_user":"ghost","amount":10}`)
	assert.Equal(t, 404, w.Code)

	w = doJSON(router, "POST", "/transfers", `{"to_user":"bob","amount":10}`)
	assert.Equal(t, 400, w.Code)
	assert.Contains(t, decodeResponse(t, w)["message"], "余额不足")

	w = doJSON(router, "POST", "/transfers", `{"to_user":"alice","amount":10}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, ledger.ErrSelfTransfer.Error(), decodeResponse(t, w)["message"])

	w = doJSON(router, "POST", "/transfers", `{"amount":10}`)
	assert.Equal(t, 400, w.Code)

	w = doJSON(router, "POST", "/transfers", `{"to_user":"bob","amount":0}`)
	assert.Equal(t, 400, w.Code)
	assert.Equal(t, ledger.ErrInvalidAmount.Error(), decodeResponse(t, w)["message"])
}
