package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"walletledger/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionInput 记账请求
type TransactionInput struct {
	Type        models.TransactionType
	Amount      float64
	Category    string
	Description string
}

// normalize 校验并返回去除首尾空白后的副本
func (in TransactionInput) normalize() (TransactionInput, error) {
	if !in.Type.Valid() {
		return in, fmt.Errorf("%w: 未知的交易类型 %q", ErrInvalidInput, in.Type)
	}
	if err := validateAmount(in.Amount); err != nil {
		return in, err
	}
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" || utf8.RuneCountInString(in.Category) > maxCategoryLen {
		return in, fmt.Errorf("%w: 类别长度应为 1-%d 个字符", ErrInvalidInput, maxCategoryLen)
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return in, fmt.Errorf("%w: 描述不能超过 %d 个字符", ErrInvalidInput, maxDescriptionLen)
	}
	return in, nil
}

// validateAmount 金额必须为正数，且最多两位小数（与数据库 decimal(14,2) 一致）
func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ErrInvalidAmount
	}
	if decimal.NewFromFloat(amount).Exponent() < -moneyScale {
		return fmt.Errorf("%w，且最多两位小数", ErrInvalidAmount)
	}
	return nil
}

// addMoney 按两位小数精度求和，保证内存中的余额与落库的值一致
func addMoney(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(moneyScale).InexactFloat64()
}

// TransactionResult 记账结果，Balance 为该笔交易后的钱包余额
type TransactionResult struct {
	Transaction models.Transaction `json:"transaction"`
	Balance     float64            `json:"balance"`
}

// ApplyTransaction 对钱包记一笔收入或支出
//
// 校验顺序：钱包存在 → 金额 → 余额。支出会同时累加该类别预算的已用金额，
// 钱包、交易记录与预算在同一事务中提交。
func (s *Service) ApplyTransaction(ctx context.Context, walletID uint, in TransactionInput) (*TransactionResult, error) {
	var result *TransactionResult
	err := s.inTx(ctx, func(tx *gorm.DB, pending *alerts) error {
		wallet, err := lockWallet(tx, walletID)
		if err != nil {
			return err
		}
		txn, err := s.apply(tx, &lockedWallet{Wallet: wallet}, in, "", pending)
		if err != nil {
			return err
		}
		result = &TransactionResult{Transaction: *txn, Balance: wallet.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// apply 在已加锁的钱包上记账，调用方负责事务
func (s *Service) apply(tx *gorm.DB, w *lockedWallet, in TransactionInput, reference string, pending *alerts) (*models.Transaction, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	switch in.Type {
	case models.TransactionIncome:
		w.Balance = addMoney(w.Balance, in.Amount)
	case models.TransactionExpense:
		if w.Balance < in.Amount {
			return nil, insufficientFunds(w.Balance, in.Amount)
		}
		w.Balance = addMoney(w.Balance, -in.Amount)
		if err := s.recordSpend(tx, w, in.Category, in.Amount, pending); err != nil {
			return nil, err
		}
	}

	now := s.now()
	txn := models.Transaction{
		WalletID:     w.ID,
		Type:         in.Type,
		Amount:       in.Amount,
		Category:     in.Category,
		Description:  in.Description,
		Reference:    reference,
		BalanceAfter: w.Balance,
		CreatedAt:    now,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, fmt.Errorf("保存交易记录失败: %w", err)
	}

	if err := tx.Model(&models.Wallet{}).Where("id = ?", w.ID).
		Updates(map[string]interface{}{"balance": w.Balance, "updated_at": now}).Error; err != nil {
		return nil, fmt.Errorf("更新钱包余额失败: %w", err)
	}

	if w.Balance < 0 {
		username, err := w.owner(tx)
		if err != nil {
			return nil, err
		}
		pending.negativeBalance(username)
	}
	return &txn, nil
}

// GetWallet 按 ID 查询钱包
func (s *Service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.WithContext(ctx).First(&wallet, walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, walletNotFound(walletID)
		}
		return nil, err
	}
	return &wallet, nil
}

// WalletByUserID 查询用户的钱包
func (s *Service) WalletByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: ErrWalletNotFound.Resource, Key: fmt.Sprintf("user:%d", userID)}
		}
		return nil, err
	}
	return &wallet, nil
}

// WalletByUsername 用户名 → 钱包
func (s *Service) WalletByUsername(ctx context.Context, username string) (*models.Wallet, error) {
	return walletByUsername(s.db.WithContext(ctx), username)
}

func walletByUsername(db *gorm.DB, username string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := db.Joins("JOIN users ON users.id = wallets.user_id AND users.deleted_at IS NULL").
		Where("users.username = ?", username).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound(username)
		}
		return nil, err
	}
	return &wallet, nil
}

// TransactionQuery 交易列表查询条件
type TransactionQuery struct {
	Page     int
	PageSize int
	Category string
	Type     models.TransactionType
	Start    *time.Time
	End      *time.Time
}

// ListTransactions 分页查询交易记录，按时间倒序
func (s *Service) ListTransactions(ctx context.Context, walletID uint, q TransactionQuery) ([]models.Transaction, int64, error) {
	if _, err := s.GetWallet(ctx, walletID); err != nil {
		return nil, 0, err
	}

	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 10
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}

	query := q.scope(s.db.WithContext(ctx).Model(&models.Transaction{}), walletID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Transaction
	offset := (q.Page - 1) * q.PageSize
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(q.PageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// scope 按查询条件筛选某个钱包的交易
func (q TransactionQuery) scope(db *gorm.DB, walletID uint) *gorm.DB {
	db = db.Where("wallet_id = ?", walletID)
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	if q.Start != nil {
		db = db.Where("created_at >= ?", *q.Start)
	}
	if q.End != nil {
		db = db.Where("created_at <= ?", *q.End)
	}
	return db
}

// AllTransactions 区间内全部交易，按时间正序，用于导出
// 单次查询读取，避免分页期间新写入的交易造成重复或遗漏
func (s *Service) AllTransactions(ctx context.Context, walletID uint, start, end *time.Time) ([]models.Transaction, error) {
	if _, err := s.GetWallet(ctx, walletID); err != nil {
		return nil, err
	}
	q := TransactionQuery{Start: start, End: end}
	var list []models.Transaction
	if err := q.scope(s.db.WithContext(ctx), walletID).Order("created_at ASC, id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
