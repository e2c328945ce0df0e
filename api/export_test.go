package api

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportHandler_ExportJSON(t *testing.T) {
	svc := setupSQLiteService(t)
	router, _ := newWalletRouter(t, svc, "alice")
	doJSON(router, "POST", "/wallet/transactions", `{"type":"INCOME","amount":100,"category":"Salary"}`)
	doJSON(router, "POST", "/wallet/transactions", `{"type":"EXPENSE","amount":25,"category":"Food"}`)

	w := doJSON(router, "GET", "/export/json", "")
	require.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	meta := data["metadata"].(map[string]interface{})
	assert.Equal(t, "all", meta["periodStart"])
	assert.Equal(t, "1.0", meta["formatVersion"])
	stats := data["statistics"].(map[string]interface{})
	assert.Equal(t, 75.0, stats["balance"])

	w = doJSON(router, "GET", "/export/json?start_time=2000-01-01&end_time=2000-01-31", "")
	require.Equal(t, 200, w.Code)
	data = decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "2000-01-01", data["metadata"].(map[string]interface{})["periodStart"])
	assert.Equal(t, 0.0, data["statistics"].(map[string]interface{})["total_income"])
}

func TestExportHandler_ExportCSV(t *testing.T) {
	svc := setupSQLiteService(t)
	router, _ := newWalletRouter(t, svc, "alice")
	doJSON(router, "POST", "/wallet/transactions", `{"type":"INCOME","amount":100,"category":"Salary"}`)
	doJSON(router, "POST", "/wallet/transactions", `{"type":"EXPENSE","amount":25,"category":"Food"}`)

	w := doJSON(router, "GET", "/export/csv", "")
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transactions_all.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "金额")
	// 按时间正序
	assert.Contains(t, lines[1], "Salary")
	assert.Contains(t, lines[2], "Food")
}

func TestExportHandler_ExportCSV_BadParams(t *testing.T) {
	svc := setupSQLiteService(t)
	router, _ := newWalletRouter(t, svc, "alice")

	w := doJSON(router, "GET", "/export/csv?start_time=2024-01-01", "")
	assert.Equal(t, 400, w.Code)

	w = doJSON(router, "GET", "/export/csv?start_time=2024/01/01&end_time=2024-01-31", "")
	assert.Equal(t, 400, w.Code)
}

func TestExportHandler_ExportExcel(t *testing.T) {
	svc := setupSQLiteService(t)
	router, _ := newWalletRouter(t, svc, "alice")
	doJSON(router, "POST", "/wallet/transactions", `{"type":"INCOME","amount":100,"category":"Salary"}`)
	doJSON(router, "POST", "/budgets", `{"category":"Food","limit_amount":50}`)
	doJSON(router, "POST", "/wallet/transactions", `{"type":"EXPENSE","amount":25,"category":"Food"}`)

	w := doJSON(router, "GET", "/export/excel", "")
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 3)
}
