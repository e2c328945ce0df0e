package api

import (
	"errors"
	"strings"

	"walletledger/ledger"
	"walletledger/models"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct {
	wallets *WalletHandler
	svc     *ledger.Service
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(svc *ledger.Service) *BudgetHandler {
	return &BudgetHandler{wallets: NewWalletHandler(svc), svc: svc}
}

// BudgetRequest 设置预算请求
type BudgetRequest struct {
	Category    string  `json:"category" binding:"required,max=100" example:"Food"`
	LimitAmount float64 `json:"limit_amount" example:"500"`
}

// BatchBudgetRequest 批量设置预算请求
type BatchBudgetRequest struct {
	Budgets []ledger.BudgetInput `json:"budgets" binding:"required,min=1,dive"`
}

// BatchBudgetResponse 批量设置结果，失败时 Saved 为已成功的部分
type BatchBudgetResponse struct {
	Saved []models.Budget `json:"saved"`
	Error string          `json:"error,omitempty"`
}

// ListBudgets 预算列表
// @Summary 预算列表
// @Description 列出当前用户的全部分类预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Budget} "获取成功"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	wallet, ok := h.wallets.currentWallet(c)
	if !ok {
		return
	}
	budgets, err := h.svc.ListBudgets(c.Request.Context(), wallet.ID)
	if err != nil {
		ledgerError(c, err, "查询预算失败")
		return
	}
	Success(c, budgets)
}

// SetBudget 设置预算
// @Summary 设置预算
// @Description 创建或更新某类别的预算；更新只修改上限，已用金额不变
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "设置成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	wallet, ok := h.wallets.currentWallet(c)
	if !ok {
		return
	}
	budget, err := h.svc.SetBudget(c.Request.Context(), wallet.ID, req.Category, req.LimitAmount)
	if err != nil {
		ledgerError(c, err, "设置预算失败")
		return
	}
	SuccessWithMessage(c, "设置成功", budget)
}

// SetBudgets 批量设置预算
// @Summary 批量设置预算
// @Description 依次设置多个预算，遇到错误即停止；已成功的条目不会回滚
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BatchBudgetRequest true "预算列表"
// @Success 200 {object} Response{data=BatchBudgetResponse} "设置成功"
// @Failure 400 {object} Response{data=BatchBudgetResponse} "部分失败"
// @Router /api/v1/budgets/batch [post]
func (h *BudgetHandler) SetBudgets(c *gin.Context) {
	var req BatchBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	wallet, ok := h.wallets.currentWallet(c)
	if !ok {
		return
	}

	saved, err := h.svc.SetBudgets(c.Request.Context(), wallet.ID, req.Budgets)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) || errors.Is(err, ledger.ErrInvalidInput) {
			c.JSON(400, Response{
				Code:    400,
				Message: err.Error(),
				Data:    BatchBudgetResponse{Saved: saved, Error: err.Error()},
			})
			return
		}
		ledgerError(c, err, "设置预算失败")
		return
	}
	SuccessWithMessage(c, "设置成功", BatchBudgetResponse{Saved: saved})
}

// DeleteBudget 删除预算
// @Summary 删除预算
// @Description 删除某类别的预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param category path string true "类别"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{category} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	category := strings.TrimSpace(c.Param("category"))
	if category == "" {
		BadRequest(c, "类别不能为空")
		return
	}
	wallet, ok := h.wallets.currentWallet(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteBudget(c.Request.Context(), wallet.ID, category); err != nil {
		ledgerError(c, err, "删除预算失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
