package ledger

import (
	"context"
	"time"

	"walletledger/models"

	"github.com/shopspring/decimal"
)

// StatisticsFilter 统计筛选条件
// 仅当 Start 与 End 同时给出时按时间筛选（闭区间）；Categories 为空表示全部类别
type StatisticsFilter struct {
	Categories []string
	Start      *time.Time
	End        *time.Time
}

func (f StatisticsFilter) hasDateRange() bool {
	return f.Start != nil && f.End != nil
}

func (f StatisticsFilter) hasCategories() bool {
	return len(f.Categories) > 0
}

// BudgetStatus 统计区间内的预算执行情况
// CurrentSpent 为筛选后的支出合计，与预算本身的累计已用金额含义不同
type BudgetStatus struct {
	LimitAmount     float64 `json:"limit_amount"`
	CurrentSpent    float64 `json:"current_spent"`
	Remaining       float64 `json:"remaining"`
	UsagePercentage float64 `json:"usage_percentage"`
	Exceeded        bool    `json:"exceeded"`
}

// Statistics 统计结果，Balance 为区间结余（收入 - 支出），不是钱包实时余额
type Statistics struct {
	TotalIncome       float64                 `json:"total_income"`
	TotalExpense      float64                 `json:"total_expense"`
	Balance           float64                 `json:"balance"`
	IncomeByCategory  map[string]float64      `json:"income_by_category"`
	ExpenseByCategory map[string]float64      `json:"expense_by_category"`
	BudgetStatus      map[string]BudgetStatus `json:"budget_status"`
}

// GetStatistics 统计钱包在筛选条件下的收支与预算执行情况
func (s *Service) GetStatistics(ctx context.Context, walletID uint, filter StatisticsFilter) (*Statistics, error) {
	if _, err := s.GetWallet(ctx, walletID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	query := db.Where("wallet_id = ?", walletID)
	if filter.hasDateRange() {
		query = query.Where("created_at >= ? AND created_at <= ?", *filter.Start, *filter.End)
	}
	if filter.hasCategories() {
		query = query.Where("category IN ?", filter.Categories)
	}
	var transactions []models.Transaction
	if err := query.Order("created_at ASC, id ASC").Find(&transactions).Error; err != nil {
		return nil, err
	}

	var budgets []models.Budget
	if err := db.Where("wallet_id = ?", walletID).Order("category ASC").Find(&budgets).Error; err != nil {
		return nil, err
	}

	return summarize(transactions, budgets, filter), nil
}

// summarize 基于已筛选的交易计算统计
func summarize(transactions []models.Transaction, budgets []models.Budget, filter StatisticsFilter) *Statistics {
	stats := &Statistics{
		IncomeByCategory:  make(map[string]float64),
		ExpenseByCategory: make(map[string]float64),
		BudgetStatus:      make(map[string]BudgetStatus),
	}

	for _, t := range transactions {
		switch t.Type {
		case models.TransactionIncome:
			stats.TotalIncome += t.Amount
			stats.IncomeByCategory[t.Category] += t.Amount
		case models.TransactionExpense:
			stats.TotalExpense += t.Amount
			stats.ExpenseByCategory[t.Category] += t.Amount
		}
	}
	stats.Balance = stats.TotalIncome - stats.TotalExpense

	wanted := make(map[string]bool, len(filter.Categories))
	for _, c := range filter.Categories {
		wanted[c] = true
	}

	for _, b := range budgets {
		if filter.hasCategories() && !wanted[b.Category] {
			continue
		}
		spent, active := stats.ExpenseByCategory[b.Category]
		// 按时间筛选时，只展示区间内有支出的预算
		if filter.hasDateRange() && !active {
			continue
		}
		stats.BudgetStatus[b.Category] = newBudgetStatus(b.LimitAmount, spent)
	}
	return stats
}

func newBudgetStatus(limit, spent float64) BudgetStatus {
	remaining := limit - spent
	var usage float64
	if limit > 0 {
		usage = RoundPercentage(spent / limit * 100)
	}
	return BudgetStatus{
		LimitAmount:     limit,
		CurrentSpent:    spent,
		Remaining:       remaining,
		UsagePercentage: usage,
		Exceeded:        remaining < 0,
	}
}

// RoundPercentage 百分比保留两位小数，四舍五入
func RoundPercentage(p float64) float64 {
	return decimal.NewFromFloat(p).Round(2).InexactFloat64()
}
