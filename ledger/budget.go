package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"walletledger/models"

	"gorm.io/gorm"
)

// BudgetInput 批量设置预算时的单条请求
type BudgetInput struct {
	Category    string  `json:"category"`
	LimitAmount float64 `json:"limit_amount"`
}

func normalizeCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" || utf8.RuneCountInString(category) > maxCategoryLen {
		return "", fmt.Errorf("%w: 类别长度应为 1-%d 个字符", ErrInvalidInput, maxCategoryLen)
	}
	return category, nil
}

// SetBudget 创建或更新某类别的预算
// 已存在时只更新上限，已用金额保持不变；新建时已用金额为 0，之前的支出不计入
func (s *Service) SetBudget(ctx context.Context, walletID uint, category string, limitAmount float64) (*models.Budget, error) {
	var budget *models.Budget
	err := s.inTx(ctx, func(tx *gorm.DB, _ *alerts) error {
		var err error
		budget, err = s.setBudget(tx, walletID, category, limitAmount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *Service) setBudget(tx *gorm.DB, walletID uint, category string, limitAmount float64) (*models.Budget, error) {
	// 锁住钱包，避免与同钱包的支出并发修改预算
	if _, err := lockWallet(tx, walletID); err != nil {
		return nil, err
	}
	if err := validateAmount(limitAmount); err != nil {
		return nil, err
	}
	category, err := normalizeCategory(category)
	if err != nil {
		return nil, err
	}

	budget, err := findBudget(tx, walletID, category)
	if err != nil && !errors.Is(err, ErrBudgetNotFound) {
		return nil, err
	}
	if budget == nil {
		budget = &models.Budget{
			WalletID:     walletID,
			Category:     category,
			LimitAmount:  limitAmount,
			CurrentSpent: 0,
		}
		if err := tx.Create(budget).Error; err != nil {
			return nil, fmt.Errorf("创建预算失败: %w", err)
		}
		return budget, nil
	}

	budget.LimitAmount = limitAmount
	if err := tx.Model(budget).Update("limit_amount", limitAmount).Error; err != nil {
		return nil, fmt.Errorf("更新预算失败: %w", err)
	}
	return budget, nil
}

// SetBudgets 依次设置多个预算
// 每条独立提交，遇到错误即停止，返回已成功的部分与该错误
func (s *Service) SetBudgets(ctx context.Context, walletID uint, inputs []BudgetInput) ([]models.Budget, error) {
	budgets := make([]models.Budget, 0, len(inputs))
	for _, in := range inputs {
		b, err := s.SetBudget(ctx, walletID, in.Category, in.LimitAmount)
		if err != nil {
			return budgets, fmt.Errorf("设置类别 %q 的预算失败: %w", in.Category, err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, nil
}

// DeleteBudget 删除某类别的预算，不存在时返回 ErrBudgetNotFound
func (s *Service) DeleteBudget(ctx context.Context, walletID uint, category string) error {
	return s.inTx(ctx, func(tx *gorm.DB, _ *alerts) error {
		if _, err := lockWallet(tx, walletID); err != nil {
			return err
		}
		res := tx.Where("wallet_id = ? AND category = ?", walletID, strings.TrimSpace(category)).Delete(&models.Budget{})
		if res.Error != nil {
			return fmt.Errorf("删除预算失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return budgetNotFound(category)
		}
		return nil
	})
}

// ListBudgets 列出钱包的全部预算
func (s *Service) ListBudgets(ctx context.Context, walletID uint) ([]models.Budget, error) {
	if _, err := s.GetWallet(ctx, walletID); err != nil {
		return nil, err
	}
	var budgets []models.Budget
	if err := s.db.WithContext(ctx).Where("wallet_id = ?", walletID).Order("category ASC").Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// GetBudget 查询某类别的预算
func (s *Service) GetBudget(ctx context.Context, walletID uint, category string) (*models.Budget, error) {
	return findBudget(s.db.WithContext(ctx), walletID, strings.TrimSpace(category))
}

// findBudget 按 (钱包, 类别) 查找预算
// 预算的所有写操作都先锁钱包行，这里无需再对预算行加锁
func findBudget(db *gorm.DB, walletID uint, category string) (*models.Budget, error) {
	var budget models.Budget
	err := db.Where("wallet_id = ? AND category = ?", walletID, category).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, budgetNotFound(category)
		}
		return nil, err
	}
	return &budget, nil
}

// recordSpend 支出计入该类别预算，并按使用率收集预警
// 类别没有预算时不做任何处理
func (s *Service) recordSpend(tx *gorm.DB, w *lockedWallet, category string, amount float64, pending *alerts) error {
	budget, err := findBudget(tx, w.ID, category)
	if errors.Is(err, ErrBudgetNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	budget.CurrentSpent = addMoney(budget.CurrentSpent, amount)
	if err := tx.Model(budget).Update("current_spent", budget.CurrentSpent).Error; err != nil {
		return fmt.Errorf("更新预算已用金额失败: %w", err)
	}

	usage := budget.UsagePercentage()
	switch {
	case budget.CurrentSpent > budget.LimitAmount:
		username, err := w.owner(tx)
		if err != nil {
			return err
		}
		pending.budgetExceeded(username, category, budget.CurrentSpent)
	case usage >= WarningThreshold && usage < 100:
		username, err := w.owner(tx)
		if err != nil {
			return err
		}
		pending.budgetWarning(username, category, usage)
	}
	return nil
}
