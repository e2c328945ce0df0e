// Package ledger 钱包记账核心：余额、交易、分类预算、统计与转账。
//
// 所有写操作都在一个数据库事务内完成：钱包行加锁（SELECT ... FOR UPDATE），
// 交易记录、余额与预算作为同一个写集合提交。通知在事务提交后才发出。
package ledger

import (
	"context"
	"errors"
	"time"

	"walletledger/models"
	"walletledger/notify"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WarningThreshold 预算使用率达到该百分比时发出预警
const WarningThreshold = 80.0

// moneyScale 金额小数位数
const moneyScale = 2

// 字段长度限制
const (
	maxCategoryLen    = 100
	maxDescriptionLen = 255
)

// Service 记账服务
type Service struct {
	db       *gorm.DB
	notifier notify.Notifier
	now      func() time.Time
}

// Option 服务选项
type Option func(*Service)

// WithClock 指定时间来源，测试用
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService 创建记账服务，notifier 为空时不发送通知
func NewService(db *gorm.DB, notifier notify.Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &Service{
		db:       db,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// alerts 事务内收集的通知，提交成功后统一发出
type alerts []func(notify.Notifier)

func (a *alerts) budgetExceeded(username, category string, spent float64) {
	*a = append(*a, func(n notify.Notifier) { n.BudgetExceeded(username, category, spent) })
}

func (a *alerts) budgetWarning(username, category string, percentage float64) {
	*a = append(*a, func(n notify.Notifier) { n.BudgetWarning(username, category, percentage) })
}

func (a *alerts) negativeBalance(username string) {
	*a = append(*a, func(n notify.Notifier) { n.NegativeBalance(username) })
}

// inTx 在事务中执行 fn，成功提交后发出收集到的通知
func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB, pending *alerts) error) error {
	var pending alerts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, &pending)
	})
	if err != nil {
		return err
	}
	for _, send := range pending {
		send(s.notifier)
	}
	return nil
}

// lockWallet 加行锁读取钱包
func lockWallet(tx *gorm.DB, walletID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wallet, walletID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, walletNotFound(walletID)
		}
		return nil, err
	}
	return &wallet, nil
}

// lockedWallet 事务内已加锁的钱包，附带按需查询的用户名
type lockedWallet struct {
	*models.Wallet
	username string
}

// owner 钱包所属用户名，用于通知
func (w *lockedWallet) owner(tx *gorm.DB) (string, error) {
	if w.username != "" {
		return w.username, nil
	}
	var user models.User
	if err := tx.Select("id", "username").First(&user, w.UserID).Error; err != nil {
		return "", err
	}
	w.username = user.Username
	return w.username, nil
}
