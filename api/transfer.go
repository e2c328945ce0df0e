package api

import (
	"walletledger/ledger"
	"walletledger/middleware"

	"github.com/gin-gonic/gin"
)

// TransferHandler 转账处理器
type TransferHandler struct {
	svc *ledger.Service
}

// NewTransferHandler 创建转账处理器
func NewTransferHandler(svc *ledger.Service) *TransferHandler {
	return &TransferHandler{svc: svc}
}

// TransferRequest 转账请求，付款方为当前登录用户
type TransferRequest struct {
	ToUser      string  `json:"to_user" binding:"required" example:"bob"`
	Amount      float64 `json:"amount" example:"30"`
	Description string  `json:"description" binding:"max=200" example:"lunch"`
}

// Transfer 转账
// @Summary 转账
// @Description 从当前用户向另一用户转账，两笔 Transfer 类别的交易在同一事务中提交
// @Tags 转账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransferRequest true "转账信息"
// @Success 200 {object} Response{data=ledger.TransferResult} "转账成功"
// @Failure 400 {object} Response "参数错误或余额不足"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/v1/transfers [post]
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	fromUser := middleware.GetCurrentUsername(c)
	if fromUser == "" {
		Unauthorized(c, "请先登录")
		return
	}

	result, err := h.svc.Transfer(c.Request.Context(), fromUser, req.ToUser, req.Amount, req.Description)
	if err != nil {
		ledgerError(c, err, "转账失败")
		return
	}
	SuccessWithMessage(c, "转账成功", result)
}
