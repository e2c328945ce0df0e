package models

import (
	"time"
)

// Wallet 钱包模型
// Balance 只能通过记账操作增量修改，允许为负
type Wallet struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Balance   float64   `json:"balance" gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Wallet) TableName() string {
	return "wallets"
}
