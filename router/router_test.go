package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"walletledger/config"
	"walletledger/database"
	"walletledger/ledger"
	"walletledger/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: "router-secret", ExpireTime: time.Hour},
	}
	config.GlobalConfig = cfg
	middleware.InitJWT(cfg)
	t.Cleanup(func() { config.GlobalConfig = nil })

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	old := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = old
		_ = sqlDB.Close()
	})

	return SetupRouter(cfg, ledger.NewService(db, nil), middleware.NewMemoryLimiter(100, time.Minute))
}

func request(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	h := setupTestRouter(t)
	w := request(h, "GET", "/health", "", "")
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestCORSPreflight(t *testing.T) {
	h := setupTestRouter(t)
	w := request(h, "OPTIONS", "/api/v1/wallet", "", "")
	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := setupTestRouter(t)
	for _, path := range []string{"/api/v1/wallet", "/api/v1/budgets", "/api/v1/wallet/statistics", "/api/v1/export/json"} {
		w := request(h, "GET", path, "", "")
		assert.Equal(t, 401, w.Code, path)
	}
}

func TestEndToEnd_RegisterLoginTransact(t *testing.T) {
	h := setupTestRouter(t)

	w := request(h, "POST", "/api/v1/auth/register", `{"username":"alice","password":"password123"}`, "")
	require.Equal(t, 200, w.Code)
	w = request(h, "POST", "/api/v1/auth/register", `{"username":"bob","password":"password123"}`, "")
	require.Equal(t, 200, w.Code)

	token, err := middleware.GenerateToken(1, "alice", time.Hour)
	require.NoError(t, err)

	w = request(h, "POST", "/api/v1/wallet/transactions", `{"type":"INCOME","amount":100,"category":"Salary"}`, token)
	require.Equal(t, 200, w.Code)

	w = request(h, "POST", "/api/v1/transfers", `{"to_user":"bob","amount":40}`, token)
	require.Equal(t, 200, w.Code)

	w = request(h, "GET", "/api/v1/wallet", "", token)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":60`)
}
