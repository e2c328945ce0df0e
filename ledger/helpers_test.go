package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"walletledger/database"
	"walletledger/models"
	"walletledger/notify"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stepClock 每次取时间前进一分钟，保证交易时间严格递增
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock(start time.Time) *stepClock {
	return &stepClock{t: start}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type testEnv struct {
	svc      *Service
	db       *gorm.DB
	recorder *notify.Recorder
	clock    *stepClock
}

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newTestEnv 使用内存 sqlite 创建独立的记账服务
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	clock := newStepClock(baseTime)
	recorder := notify.NewRecorder()
	return &testEnv{
		svc:      NewService(db, recorder, WithClock(clock.Now)),
		db:       db,
		recorder: recorder,
		clock:    clock,
	}
}

// register 创建用户并返回其钱包 ID
func (e *testEnv) register(t *testing.T, username string) uint {
	t.Helper()
	user, err := e.svc.Register(context.Background(), username, "hash", username+"@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.Wallet)
	return user.Wallet.ID
}

func (e *testEnv) deposit(t *testing.T, walletID uint, amount float64) {
	t.Helper()
	_, err := e.svc.ApplyTransaction(context.Background(), walletID, TransactionInput{
		Type:     models.TransactionIncome,
		Amount:   amount,
		Category: "Salary",
	})
	require.NoError(t, err)
}

func (e *testEnv) spend(t *testing.T, walletID uint, category string, amount float64) {
	t.Helper()
	_, err := e.svc.ApplyTransaction(context.Background(), walletID, TransactionInput{
		Type:     models.TransactionExpense,
		Amount:   amount,
		Category: category,
	})
	require.NoError(t, err)
}

func (e *testEnv) balance(t *testing.T, walletID uint) float64 {
	t.Helper()
	w, err := e.svc.GetWallet(context.Background(), walletID)
	require.NoError(t, err)
	return w.Balance
}

func (e *testEnv) countTransactions(t *testing.T, walletID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Transaction{}).Where("wallet_id = ?", walletID).Count(&n).Error)
	return n
}

// signedSum 交易记录的带符号合计
func (e *testEnv) signedSum(t *testing.T, walletID uint) float64 {
	t.Helper()
	var list []models.Transaction
	require.NoError(t, e.db.Where("wallet_id = ?", walletID).Find(&list).Error)
	var sum float64
	for _, tx := range list {
		sum += tx.Type.Signed(tx.Amount)
	}
	return sum
}
