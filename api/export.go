package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"walletledger/export"
	"walletledger/ledger"
	"walletledger/models"

	"github.com/gin-gonic/gin"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	wallets *WalletHandler
	svc     *ledger.Service
}

// NewExportHandler 创建导出处理器
func NewExportHandler(svc *ledger.Service) *ExportHandler {
	return &ExportHandler{wallets: NewWalletHandler(svc), svc: svc}
}

// exportScope 导出需要的钱包、时间区间与文件名后缀
type exportScope struct {
	wallet *models.Wallet
	start  *time.Time
	end    *time.Time
	suffix string
}

func (h *ExportHandler) scope(c *gin.Context) (*exportScope, bool) {
	start, end, ok := dateRange(c)
	if !ok {
		return nil, false
	}
	wallet, ok := h.wallets.currentWallet(c)
	if !ok {
		return nil, false
	}
	suffix := "all"
	if start != nil {
		suffix = fmt.Sprintf("%s_%s", start.Format(ledger.DateLayout), end.Format(ledger.DateLayout))
	}
	return &exportScope{wallet: wallet, start: start, end: end, suffix: suffix}, true
}

// transactions 区间内全部交易，按时间正序
func (h *ExportHandler) transactions(c *gin.Context, s *exportScope) ([]models.Transaction, bool) {
	list, err := h.svc.AllTransactions(c.Request.Context(), s.wallet.ID, s.start, s.end)
	if err != nil {
		ledgerError(c, err, "查询数据失败")
		return nil, false
	}
	return list, true
}

func (h *ExportHandler) statistics(c *gin.Context, s *exportScope) (*ledger.Statistics, bool) {
	stats, err := h.svc.GetStatistics(c.Request.Context(), s.wallet.ID, ledger.StatisticsFilter{Start: s.start, End: s.end})
	if err != nil {
		ledgerError(c, err, "统计失败")
		return nil, false
	}
	return stats, true
}

// ExportJSON 导出统计报告
// @Summary 导出统计报告
// @Description 导出带元数据的统计报告（JSON）
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=export.Report} "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	s, ok := h.scope(c)
	if !ok {
		return
	}
	stats, ok := h.statistics(c, s)
	if !ok {
		return
	}
	Success(c, export.NewReport(stats, s.start, s.end, time.Now()))
}

// ExportCSV 导出交易明细
// @Summary 导出交易明细
// @Description 根据时间范围导出交易记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	s, ok := h.scope(c)
	if !ok {
		return
	}
	list, ok := h.transactions(c, s)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	if err := export.WriteCSV(buf, list); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", s.suffix)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出 Excel
// @Summary 导出 Excel
// @Description 导出交易记录、预算执行与汇总三个工作表
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string false "开始时间 (2024-01-01)"
// @Param end_time query string false "结束时间 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	s, ok := h.scope(c)
	if !ok {
		return
	}
	list, ok := h.transactions(c, s)
	if !ok {
		return
	}
	stats, ok := h.statistics(c, s)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	if err := export.WriteExcel(buf, list, stats); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	filename := fmt.Sprintf("wallet_%s.xlsx", s.suffix)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
