package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"walletledger/models"
	"walletledger/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestTransfer_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	env.deposit(t, alice, 100)

	res, err := env.svc.Transfer(ctx, "alice", "bob", 30, "lunch")
	require.NoError(t, err)

	assert.Equal(t, 70.0, res.SenderBalance)
	assert.Equal(t, 70.0, env.balance(t, alice))
	assert.Equal(t, 30.0, env.balance(t, bob))

	assert.NotEmpty(t, res.Reference)
	assert.Equal(t, res.Reference, res.Expense.Reference)
	assert.Equal(t, res.Reference, res.Income.Reference)

	assert.Equal(t, models.TransactionExpense, res.Expense.Type)
	assert.Equal(t, models.CategoryTransfer, res.Expense.Category)
	assert.Equal(t, "lunch to bob", res.Expense.Description)
	assert.Equal(t, alice, res.Expense.WalletID)

	assert.Equal(t, models.TransactionIncome, res.Income.Type)
	assert.Equal(t, models.CategoryTransfer, res.Income.Category)
	assert.Equal(t, "lunch from alice", res.Income.Description)
	assert.Equal(t, bob, res.Income.WalletID)
	assert.Equal(t, 30.0, res.Income.BalanceAfter)

	assert.Equal(t, int64(2), env.countTransactions(t, alice))
	assert.Equal(t, int64(1), env.countTransactions(t, bob))
}

func TestTransfer_DefaultDescription(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	env.register(t, "bob")
	env.deposit(t, alice, 10)

	res, err := env.svc.Transfer(context.Background(), "alice", "bob", 10, "  ")
	require.NoError(t, err)
	assert.Equal(t, "Transfer to bob", res.Expense.Description)
	assert.Equal(t, "Transfer from alice", res.Income.Description)
	assert.Equal(t, 0.0, res.SenderBalance)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	env.deposit(t, alice, 20)

	_, err := env.svc.Transfer(context.Background(), "alice", "bob", 50, "")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var insufficient *InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 30.0, insufficient.Shortfall)

	assert.Equal(t, 20.0, env.balance(t, alice))
	assert.Equal(t, 0.0, env.balance(t, bob))
	assert.Equal(t, int64(1), env.countTransactions(t, alice))
	assert.Equal(t, int64(0), env.countTransactions(t, bob))
}

func TestTransfer_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.register(t, "bob")
	env.deposit(t, alice, 20)

	_, err := env.svc.Transfer(ctx, "ghost", "bob", 5, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "ghost")

	_, err = env.svc.Transfer(ctx, "alice", "ghost", 5, "")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// 用户不存在优先于余额不足
	_, err = env.svc.Transfer(ctx, "alice", "ghost", 500, "")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.svc.Transfer(ctx, "alice", "alice", 5, "")
	assert.ErrorIs(t, err, ErrSelfTransfer)

	_, err = env.svc.Transfer(ctx, "alice", "bob", 0, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, 20.0, env.balance(t, alice))
	assert.Equal(t, int64(1), env.countTransactions(t, alice))
}

func TestTransfer_RollsBackWhenSecondLegFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	env.deposit(t, alice, 100)

	// 付款方在 Transfer 类别上设了很小的预算，支出一侧会触发超支提醒
	_, err := env.svc.SetBudget(ctx, alice, models.CategoryTransfer, 1)
	require.NoError(t, err)

	boom := errors.New("write failed")
	require.NoError(t, env.db.Callback().Create().Before("gorm:create").Register("test:fail_income", func(db *gorm.DB) {
		if txn, ok := db.Statement.Dest.(*models.Transaction); ok && txn.Type == models.TransactionIncome && txn.Reference != "" {
			_ = db.AddError(boom)
		}
	}))

	_, err = env.svc.Transfer(ctx, "alice", "bob", 40, "")
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 100.0, env.balance(t, alice))
	assert.Equal(t, 0.0, env.balance(t, bob))
	assert.Equal(t, int64(1), env.countTransactions(t, alice))
	assert.Equal(t, int64(0), env.countTransactions(t, bob))

	b, err := env.svc.GetBudget(ctx, alice, models.CategoryTransfer)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.CurrentSpent)
	assert.Empty(t, env.recorder.Events())
}

func TestTransfer_CountsAgainstSenderBudget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.register(t, "bob")
	env.deposit(t, alice, 100)

	_, err := env.svc.SetBudget(ctx, alice, models.CategoryTransfer, 50)
	require.NoError(t, err)

	_, err = env.svc.Transfer(ctx, "alice", "bob", 60, "rent share")
	require.NoError(t, err)

	exceeded := env.recorder.OfKind(notify.KindBudgetExceeded)
	require.Len(t, exceeded, 1)
	assert.Equal(t, "alice", exceeded[0].Username)
	assert.Equal(t, models.CategoryTransfer, exceeded[0].Category)
}

func TestTransfer_ConcurrentOpposingDirections(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	env.deposit(t, alice, 100)
	env.deposit(t, bob, 100)

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := env.svc.Transfer(context.Background(), "alice", "bob", 7, "")
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := env.svc.Transfer(context.Background(), "bob", "alice", 5, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrInsufficientFunds)
		}
	}

	total := env.balance(t, alice) + env.balance(t, bob)
	assert.InDelta(t, 200.0, total, 1e-9)
	assert.GreaterOrEqual(t, env.balance(t, alice), 0.0)
	assert.GreaterOrEqual(t, env.balance(t, bob), 0.0)
	assert.InDelta(t, env.signedSum(t, alice), env.balance(t, alice), 1e-9)
	assert.InDelta(t, env.signedSum(t, bob), env.balance(t, bob), 1e-9)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.Register(ctx, " carol ", "hash", "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	require.NotNil(t, user.Wallet)
	assert.Equal(t, 0.0, user.Wallet.Balance)

	_, err = env.svc.Register(ctx, "carol", "hash", "")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = env.svc.Register(ctx, "", "hash", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	email, err := env.svc.EmailOf(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", email)

	email, err = env.svc.EmailOf(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, email)

	found, err := env.svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Wallet.ID, found.Wallet.ID)

	_, err = env.svc.FindUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = env.svc.Register(ctx, "dave", string(hash), "")
	require.NoError(t, err)

	user, err := env.svc.Authenticate(ctx, "dave", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "dave", user.Username)
	require.NotNil(t, user.Wallet)

	_, err = env.svc.Authenticate(ctx, "dave", "wrong")
	assert.ErrorIs(t, err, ErrIncorrectCredential)

	_, err = env.svc.Authenticate(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrIncorrectCredential)
}
