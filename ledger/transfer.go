package ledger

import (
	"context"
	"sort"
	"strings"

	"walletledger/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTransferDescription 未填写说明时使用
const DefaultTransferDescription = "Transfer"

// TransferResult 转账结果，两笔交易共享同一个 Reference
type TransferResult struct {
	Reference     string             `json:"reference"`
	Expense       models.Transaction `json:"expense"`
	Income        models.Transaction `json:"income"`
	SenderBalance float64            `json:"sender_balance"`
}

// Transfer 从 fromUser 向 toUser 转账
//
// 付款方记一笔 Transfer 类别的支出，收款方记一笔 Transfer 类别的收入，
// 两笔在同一个数据库事务中提交，任一失败则全部回滚。
// 两个钱包按 ID 升序加锁，相反方向的并发转账不会死锁。
func (s *Service) Transfer(ctx context.Context, fromUser, toUser string, amount float64, description string) (*TransferResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		description = DefaultTransferDescription
	}

	var result *TransferResult
	err := s.inTx(ctx, func(tx *gorm.DB, pending *alerts) error {
		from, err := walletByUsername(tx, fromUser)
		if err != nil {
			return err
		}
		to, err := walletByUsername(tx, toUser)
		if err != nil {
			return err
		}
		if from.ID == to.ID {
			return ErrSelfTransfer
		}
		if err := validateAmount(amount); err != nil {
			return err
		}

		locked, err := lockInOrder(tx, from.ID, to.ID)
		if err != nil {
			return err
		}
		sender := &lockedWallet{Wallet: locked[from.ID], username: fromUser}
		recipient := &lockedWallet{Wallet: locked[to.ID], username: toUser}

		// 预检查：以加锁后的最新余额为准
		if sender.Balance < amount {
			return insufficientFunds(sender.Balance, amount)
		}

		reference := uuid.NewString()
		expense, err := s.apply(tx, sender, TransactionInput{
			Type:        models.TransactionExpense,
			Amount:      amount,
			Category:    models.CategoryTransfer,
			Description: description + " to " + toUser,
		}, reference, pending)
		if err != nil {
			return err
		}
		income, err := s.apply(tx, recipient, TransactionInput{
			Type:        models.TransactionIncome,
			Amount:      amount,
			Category:    models.CategoryTransfer,
			Description: description + " from " + fromUser,
		}, reference, pending)
		if err != nil {
			return err
		}

		result = &TransferResult{
			Reference:     reference,
			Expense:       *expense,
			Income:        *income,
			SenderBalance: sender.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockInOrder 按钱包 ID 升序逐个加锁
func lockInOrder(tx *gorm.DB, ids ...uint) (map[uint]*models.Wallet, error) {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	locked := make(map[uint]*models.Wallet, len(sorted))
	for _, id := range sorted {
		if _, ok := locked[id]; ok {
			continue
		}
		w, err := lockWallet(tx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = w
	}
	return locked, nil
}
