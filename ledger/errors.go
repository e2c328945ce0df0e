package ledger

import (
	"errors"
	"fmt"
)

// 业务错误，调用方通过 errors.Is / errors.As 区分
var (
	ErrNotFound            = errors.New("记录不存在")
	ErrInvalidAmount       = errors.New("金额必须大于0")
	ErrInvalidInput        = errors.New("参数不合法")
	ErrInsufficientFunds   = errors.New("余额不足")
	ErrAlreadyExists       = errors.New("用户已存在")
	ErrIncorrectCredential = errors.New("用户名或密码错误")
	ErrSelfTransfer        = errors.New("不能向自己转账")
)

// NotFoundError 钱包/用户/预算不存在
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Resource + "不存在"
	}
	return fmt.Sprintf("%s '%s' 不存在", e.Resource, e.Key)
}

// Is 使 errors.Is(err, ErrNotFound) 以及 errors.Is(err, ErrWalletNotFound) 等成立
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	t, ok := target.(*NotFoundError)
	return ok && t.Resource == e.Resource && (t.Key == "" || t.Key == e.Key)
}

// 按资源类型比较时使用，如 errors.Is(err, ErrWalletNotFound)
var (
	ErrWalletNotFound = &NotFoundError{Resource: "钱包"}
	ErrUserNotFound   = &NotFoundError{Resource: "用户"}
	ErrBudgetNotFound = &NotFoundError{Resource: "预算"}
)

func walletNotFound(id uint) error {
	return &NotFoundError{Resource: ErrWalletNotFound.Resource, Key: fmt.Sprint(id)}
}

func userNotFound(username string) error {
	return &NotFoundError{Resource: ErrUserNotFound.Resource, Key: username}
}

func budgetNotFound(category string) error {
	return &NotFoundError{Resource: ErrBudgetNotFound.Resource, Key: category}
}

// InsufficientFundsError 余额不足，携带当前余额与差额
type InsufficientFundsError struct {
	Balance   float64
	Shortfall float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("余额不足。当前余额: %.2f，还差: %.2f", e.Balance, e.Shortfall)
}

func insufficientFunds(balance, amount float64) error {
	return &InsufficientFundsError{Balance: balance, Shortfall: addMoney(amount, -balance)}
}

// Is 使 errors.Is(err, ErrInsufficientFunds) 成立
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
