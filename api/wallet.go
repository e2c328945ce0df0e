package api

import (
	"strconv"

	"walletledger/ledger"
	"walletledger/middleware"
	"walletledger/models"

	"github.com/gin-gonic/gin"
)

// WalletHandler 钱包处理器
type WalletHandler struct {
	svc *ledger.Service
}

// NewWalletHandler 创建钱包处理器
func NewWalletHandler(svc *ledger.Service) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// TransactionRequest 记账请求
type TransactionRequest struct {
	Type        models.TransactionType `json:"type" binding:"required,oneof=INCOME EXPENSE" example:"EXPENSE"`
	Amount      float64                `json:"amount" example:"45.5"`
	Category    string                 `json:"category" binding:"required,max=100" example:"Food"`
	Description string                 `json:"description" binding:"max=255" example:"午餐"`
}

// currentWallet 当前登录用户的钱包
func (h *WalletHandler) currentWallet(c *gin.Context) (*models.Wallet, bool) {
	wallet, err := h.svc.WalletByUserID(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		ledgerError(c, err, "获取钱包失败")
		return nil, false
	}
	return wallet, true
}

// GetWallet 查询钱包
// @Summary 查询钱包
// @Description 查询当前用户的钱包余额
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.Wallet} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	wallet, ok := h.currentWallet(c)
	if !ok {
		return
	}
	Success(c, wallet)
}

// AddTransaction 记一笔收入或支出
// @Summary 记账
// @Description 对当前用户的钱包记一笔收入或支出；支出会计入同类别预算
// @Tags 钱包
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "交易信息"
// @Success 200 {object} Response{data=ledger.TransactionResult} "记账成功"
// @Failure 400 {object} Response "参数错误或余额不足"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallet/transactions [post]
func (h *WalletHandler) AddTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	wallet, ok := h.currentWallet(c)
	if !ok {
		return
	}

	result, err := h.svc.ApplyTransaction(c.Request.Context(), wallet.ID, ledger.TransactionInput{
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		ledgerError(c, err, "记账失败")
		return
	}
	SuccessWithMessage(c, "记账成功", result)
}

// ListTransactions 交易列表
// @Summary 交易列表
// @Description 分页查询当前用户的交易记录，按时间倒序
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category query string false "类别"
// @Param type query string false "类型 INCOME/EXPENSE"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse[models.Transaction]} "获取成功"
// @Router /api/v1/wallet/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	wallet, ok := h.currentWallet(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	q := ledger.TransactionQuery{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Type:     models.TransactionType(c.Query("type")),
		Start:    start,
		End:      end,
	}
	if q.Type != "" && !q.Type.Valid() {
		BadRequest(c, "交易类型只能是 INCOME 或 EXPENSE")
		return
	}

	list, total, err := h.svc.ListTransactions(c.Request.Context(), wallet.ID, q)
	if err != nil {
		ledgerError(c, err, "查询交易记录失败")
		return
	}
	Success(c, NewPageResponse(list, total, page, pageSize))
}

// GetStatistics 收支统计
// @Summary 收支统计
// @Description 按类别、时间区间统计收支与预算执行情况；时间区间需同时提供开始与结束
// @Tags 钱包
// @Produce json
// @Security BearerAuth
// @Param categories query string false "类别，逗号分隔"
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=ledger.Statistics} "获取成功"
// @Router /api/v1/wallet/statistics [get]
func (h *WalletHandler) GetStatistics(c *gin.Context) {
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	wallet, ok := h.currentWallet(c)
	if !ok {
		return
	}

	stats, err := h.svc.GetStatistics(c.Request.Context(), wallet.ID, ledger.StatisticsFilter{
		Categories: splitCategories(c.Query("categories")),
		Start:      start,
		End:        end,
	})
	if err != nil {
		ledgerError(c, err, "统计失败")
		return
	}
	Success(c, stats)
}
