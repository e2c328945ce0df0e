package models

import (
	"time"
)

// Budget 分类预算，每个钱包的每个类别最多一条
// CurrentSpent 只累加预算创建之后记录的支出
type Budget struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	WalletID     uint      `json:"wallet_id" gorm:"uniqueIndex:idx_budget_wallet_category,priority:1;not null"`
	Category     string    `json:"category" gorm:"uniqueIndex:idx_budget_wallet_category,priority:2;size:100;not null"`
	LimitAmount  float64   `json:"limit_amount" gorm:"type:decimal(14,2);not null"`
	CurrentSpent float64   `json:"current_spent" gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// Remaining 剩余额度，超支时为负
func (b *Budget) Remaining() float64 {
	return b.LimitAmount - b.CurrentSpent
}

// UsagePercentage 已用百分比
func (b *Budget) UsagePercentage() float64 {
	if b.LimitAmount <= 0 {
		return 0
	}
	return b.CurrentSpent / b.LimitAmount * 100
}

// Exceeded 是否超支
func (b *Budget) Exceeded() bool {
	return b.Remaining() < 0
}
