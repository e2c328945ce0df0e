// Package export 账单导出：JSON 报告、CSV 交易明细、Excel 工作簿。
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"walletledger/ledger"
	"walletledger/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	// FormatVersion JSON 报告格式版本
	FormatVersion = "1.0"
	// GeneratedBy 报告生成方
	GeneratedBy = "walletledger"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Metadata 报告元数据
type Metadata struct {
	PeriodStart   string `json:"periodStart"`
	PeriodEnd     string `json:"periodEnd"`
	ExportDate    string `json:"exportDate"`
	FormatVersion string `json:"formatVersion"`
	GeneratedBy   string `json:"generatedBy"`
}

// Report 统计报告
type Report struct {
	Metadata   Metadata           `json:"metadata"`
	Statistics *ledger.Statistics `json:"statistics"`
}

// NewReport 组装报告，start/end 为空时区间显示为 all
func NewReport(stats *ledger.Statistics, start, end *time.Time, now time.Time) *Report {
	return &Report{
		Metadata: Metadata{
			PeriodStart:   formatDate(start),
			PeriodEnd:     formatDate(end),
			ExportDate:    now.Format(time.RFC3339),
			FormatVersion: FormatVersion,
			GeneratedBy:   GeneratedBy,
		},
		Statistics: stats,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "all"
	}
	return t.Format(dateLayout)
}

// WriteJSON 以缩进格式写出报告
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// Money 金额保留两位小数
func Money(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

var csvHeaders = []string{"ID", "类型", "金额", "类别", "描述", "交易后余额", "转账编号", "时间"}

// WriteCSV 写出交易明细，带 BOM 以便 Excel 正确显示中文
func WriteCSV(w io.Writer, transactions []models.Transaction) error {
	if _, err := io.WriteString(w, "\xEF\xBB\xBF"); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeaders); err != nil {
		return err
	}
	for _, t := range transactions {
		row := []string{
			strconv.FormatUint(uint64(t.ID), 10),
			string(t.Type),
			Money(t.Amount),
			t.Category,
			t.Description,
			Money(t.BalanceAfter),
			t.Reference,
			t.CreatedAt.Format(dateTimeLayout),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// 工作表名称
const (
	SheetTransactions = "交易记录"
	SheetBudgets      = "预算执行"
	SheetSummary      = "汇总"
)

// WriteExcel 生成包含交易记录、预算执行与汇总三个工作表的 xlsx
func WriteExcel(w io.Writer, transactions []models.Transaction, stats *ledger.Statistics) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	f.SetSheetName("Sheet1", SheetTransactions)
	if err := writeTransactionSheet(f, styles, transactions); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetBudgets); err != nil {
		return err
	}
	if err := writeBudgetSheet(f, styles, stats.BudgetStatus); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return err
	}
	if err := writeSummarySheet(f, styles, stats); err != nil {
		return err
	}

	return f.Write(w)
}

type sheetStyles struct {
	header  int
	data    int
	summary int
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: center,
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	data, err := f.NewStyle(&excelize.Style{Alignment: center, Border: border})
	if err != nil {
		return nil, err
	}
	summary, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: center,
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	return &sheetStyles{header: header, data: data, summary: summary}, nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row, style int, values []interface{}) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, first, &values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func writeTransactionSheet(f *excelize.File, st *sheetStyles, transactions []models.Transaction) error {
	sheet := SheetTransactions
	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "D", 12)
	_ = f.SetColWidth(sheet, "E", "E", 30)
	_ = f.SetColWidth(sheet, "F", "F", 14)
	_ = f.SetColWidth(sheet, "G", "G", 38)
	_ = f.SetColWidth(sheet, "H", "H", 20)

	if err := writeHeader(f, sheet, st.header, csvHeaders); err != nil {
		return err
	}

	var income, expense float64
	for i, t := range transactions {
		values := []interface{}{t.ID, string(t.Type), t.Amount, t.Category, t.Description, t.BalanceAfter, t.Reference, t.CreatedAt.Format(dateTimeLayout)}
		if err := writeRow(f, sheet, i+2, st.data, values); err != nil {
			return err
		}
		if t.Type == models.TransactionIncome {
			income += t.Amount
		} else {
			expense += t.Amount
		}
	}

	// 汇总行
	summaryRow := len(transactions) + 2
	values := []interface{}{"合计", fmt.Sprintf("收入 %s", Money(income)), fmt.Sprintf("支出 %s", Money(expense)), fmt.Sprintf("共 %d 条记录", len(transactions))}
	return writeRow(f, sheet, summaryRow, st.summary, values)
}

func writeBudgetSheet(f *excelize.File, st *sheetStyles, status map[string]ledger.BudgetStatus) error {
	sheet := SheetBudgets
	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "F", 14)

	headers := []string{"类别", "预算", "已支出", "剩余", "使用率(%)", "是否超支"}
	if err := writeHeader(f, sheet, st.header, headers); err != nil {
		return err
	}

	for i, category := range sortedKeys(status) {
		s := status[category]
		exceeded := "否"
		if s.Exceeded {
			exceeded = "是"
		}
		values := []interface{}{category, s.LimitAmount, s.CurrentSpent, s.Remaining, s.UsagePercentage, exceeded}
		if err := writeRow(f, sheet, i+2, st.data, values); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, st *sheetStyles, stats *ledger.Statistics) error {
	sheet := SheetSummary
	_ = f.SetColWidth(sheet, "A", "B", 18)

	if err := writeHeader(f, sheet, st.header, []string{"项目", "金额"}); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"总收入", stats.TotalIncome},
		{"总支出", stats.TotalExpense},
		{"结余", stats.Balance},
	}
	row := 2
	for _, values := range rows {
		if err := writeRow(f, sheet, row, st.summary, values); err != nil {
			return err
		}
		row++
	}
	for _, category := range sortedKeys(stats.IncomeByCategory) {
		if err := writeRow(f, sheet, row, st.data, []interface{}{"收入 · " + category, stats.IncomeByCategory[category]}); err != nil {
			return err
		}
		row++
	}
	for _, category := range sortedKeys(stats.ExpenseByCategory) {
		if err := writeRow(f, sheet, row, st.data, []interface{}{"支出 · " + category, stats.ExpenseByCategory[category]}); err != nil {
			return err
		}
		row++
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
