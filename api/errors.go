package api

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"walletledger/ledger"

	"github.com/gin-gonic/gin"
)

// ledgerError 把记账错误映射为 HTTP 响应
// 业务错误直接返回错误信息，其它错误按 fallback 处理
func ledgerError(c *gin.Context, err error, fallback string) {
	var insufficient *ledger.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		BadRequest(c, insufficient.Error())
	case errors.Is(err, ledger.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidInput),
		errors.Is(err, ledger.ErrSelfTransfer):
		BadRequest(c, err.Error())
	case errors.Is(err, ledger.ErrAlreadyExists):
		Error(c, http.StatusConflict, "用户名已存在")
	case errors.Is(err, ledger.ErrIncorrectCredential):
		Unauthorized(c, err.Error())
	default:
		log.Printf("%s: %v", fallback, err)
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}

// dateRange 解析 start_time / end_time 查询参数（2006-01-02），两端日期都包含
// 两个参数都为空时返回 nil；只给一个或格式错误视为参数错误
func dateRange(c *gin.Context) (start, end *time.Time, ok bool) {
	start, end, err := ledger.ParseDateRange(c.Query("start_time"), c.Query("end_time"), time.Local)
	if err != nil {
		BadRequest(c, err.Error())
		return nil, nil, false
	}
	return start, end, true
}

// splitCategories 解析逗号分隔的类别列表
func splitCategories(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
