package router

import (
	"context"
	"net/http"
	"time"

	"walletledger/api"
	"walletledger/config"
	"walletledger/database"
	_ "walletledger/docs"
	"walletledger/ledger"
	"walletledger/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// 转账限流：每个用户每分钟最多 transferRateLimit 次
const transferRateLimit = 30

// SetupRouter 设置路由
// transferLimiter 为空时使用进程内限流
func SetupRouter(cfg *config.Config, svc *ledger.Service, transferLimiter middleware.Limiter) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if transferLimiter == nil {
		transferLimiter = middleware.NewMemoryLimiter(transferRateLimit, time.Minute)
	}

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg, svc)
		auth := v1.Group("/auth")
		auth.Use(middleware.LoginRateLimit(10, time.Minute))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)

			walletHandler := api.NewWalletHandler(svc)
			wallet := authorized.Group("/wallet")
			{
				wallet.GET("", walletHandler.GetWallet)
				wallet.POST("/transactions", walletHandler.AddTransaction)
				wallet.GET("/transactions", walletHandler.ListTransactions)
				wallet.GET("/statistics", walletHandler.GetStatistics)
			}

			budgetHandler := api.NewBudgetHandler(svc)
			budgets := authorized.Group("/budgets")
			{
				budgets.GET("", budgetHandler.ListBudgets)
				budgets.POST("", budgetHandler.SetBudget)
				budgets.POST("/batch", budgetHandler.SetBudgets)
				budgets.DELETE("/:category", budgetHandler.DeleteBudget)
			}

			transferHandler := api.NewTransferHandler(svc)
			authorized.POST("/transfers",
				middleware.RateLimit(transferLimiter, middleware.ByUserOrIP, "转账过于频繁，请稍后再试"),
				transferHandler.Transfer)

			exportHandler := api.NewExportHandler(svc)
			export := authorized.Group("/export")
			{
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", HealthCheck)

	return r
}

// HealthCheck 健康检查，数据库不可用时返回 503
func HealthCheck(c *gin.Context) {
	db := database.GetDB()
	if db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": api.SafeErrorMessage(err, "unavailable"),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
