package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"walletledger/ledger"
	"walletledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleStats() *ledger.Statistics {
	return &ledger.Statistics{
		TotalIncome:       100,
		TotalExpense:      45,
		Balance:           55,
		IncomeByCategory:  map[string]float64{"Salary": 100},
		ExpenseByCategory: map[string]float64{"Food": 45},
		BudgetStatus: map[string]ledger.BudgetStatus{
			"Food": {LimitAmount: 50, CurrentSpent: 45, Remaining: 5, UsagePercentage: 90},
		},
	}
}

func sampleTransactions() []models.Transaction {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	return []models.Transaction{
		{ID: 1, Type: models.TransactionIncome, Amount: 100, Category: "Salary", BalanceAfter: 100, CreatedAt: at},
		{ID: 2, Type: models.TransactionExpense, Amount: 45, Category: "Food", Description: "午餐, 晚餐", BalanceAfter: 55, CreatedAt: at.Add(time.Hour)},
	}
}

func TestNewReport(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	report := NewReport(sampleStats(), &start, &end, now)
	assert.Equal(t, "2024-05-01", report.Metadata.PeriodStart)
	assert.Equal(t, "2024-05-31", report.Metadata.PeriodEnd)
	assert.Equal(t, "2024-06-01T08:00:00Z", report.Metadata.ExportDate)
	assert.Equal(t, "1.0", report.Metadata.FormatVersion)

	all := NewReport(sampleStats(), nil, nil, now)
	assert.Equal(t, "all", all.Metadata.PeriodStart)
	assert.Equal(t, "all", all.Metadata.PeriodEnd)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewReport(sampleStats(), nil, nil, time.Now())))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	meta := decoded["metadata"].(map[string]interface{})
	assert.Equal(t, "walletledger", meta["generatedBy"])
	stats := decoded["statistics"].(map[string]interface{})
	assert.Equal(t, 55.0, stats["balance"])
	budget := stats["budget_status"].(map[string]interface{})["Food"].(map[string]interface{})
	assert.Equal(t, 90.0, budget["usage_percentage"])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTransactions()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\xEF\xBB\xBF"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "金额", records[0][2])
	assert.Equal(t, []string{"2", "EXPENSE", "45.00", "Food", "午餐, 晚餐", "55.00", "", "2024-05-01 13:30:00"}, records[2])
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, sampleTransactions(), sampleStats()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetTransactions, SheetBudgets, SheetSummary}, f.GetSheetList())

	v, err := f.GetCellValue(SheetTransactions, "D3")
	require.NoError(t, err)
	assert.Equal(t, "Food", v)

	v, err = f.GetCellValue(SheetTransactions, "A4")
	require.NoError(t, err)
	assert.Equal(t, "合计", v)

	v, err = f.GetCellValue(SheetBudgets, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Food", v)

	v, err = f.GetCellValue(SheetSummary, "A4")
	require.NoError(t, err)
	assert.Equal(t, "结余", v)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "0.10", Money(0.1))
	assert.Equal(t, "12.35", Money(12.345))
	assert.Equal(t, "-3.00", Money(-3))
}
