package models

import (
	"time"
)

// TransactionType 交易类型
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// Valid 是否为合法的交易类型
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Signed 按类型返回带符号的金额：收入为正，支出为负
func (t TransactionType) Signed(amount float64) float64 {
	if t == TransactionExpense {
		return -amount
	}
	return amount
}

// CategoryTransfer 转账交易固定使用的类别
const CategoryTransfer = "Transfer"

// Transaction 交易记录，创建后不可修改
type Transaction struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	WalletID     uint            `json:"wallet_id" gorm:"index:idx_tx_wallet_created,priority:1;not null"`
	Type         TransactionType `json:"type" gorm:"size:10;not null"`
	Amount       float64         `json:"amount" gorm:"type:decimal(14,2);not null"`
	Category     string          `json:"category" gorm:"size:100;not null;index"`
	Description  string          `json:"description" gorm:"size:255"`
	Reference    string          `json:"reference,omitempty" gorm:"size:36;index"` // 转账两笔记录共享的编号
	BalanceAfter float64         `json:"balance_after" gorm:"type:decimal(14,2);not null"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index:idx_tx_wallet_created,priority:2"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}
