package admin

import (
	"time"

	"github.com/suzaku-admin/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetAdminDashboard 后台首页概览，最近一周日报
func (h *Handler) GetAdminDashboard(c *gin.Context) {
	overview, err := h.StatService.Overview(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "获取概览失败", err)
		return
	}
	response.Success(c, overview)
}

// GetAdminDailyStats 日报区间查询
func (h *Handler) GetAdminDailyStats(c *gin.Context) {
	startDate := c.DefaultQuery("start_date", time.Now().AddDate(0, 0, -30).Format("2006-01-02"))
	endDate := c.DefaultQuery("end_date", time.Now().Format("2006-01-02"))
	if _, err := time.Parse("2006-01-02", startDate); err != nil {
		respondError(c, response.CodeBadRequest, "开始日期格式错误", err)
		return
	}
	if _, err := time.Parse("2006-01-02", endDate); err != nil {
		respondError(c, response.CodeBadRequest, "结束日期格式错误", err)
		return
	}

	stats, err := h.StatService.ListRange(startDate, endDate)
	if err != nil {
		respondError(c, response.CodeInternal, "获取日报失败", err)
		return
	}
	response.Success(c, stats)
}

// RebuildStatRequest 日报重建请求
type RebuildStatRequest struct {
	StatDate string `json:"stat_date" binding:"required"`
}

// RebuildAdminDailyStat 手动重建某日日报
func (h *Handler) RebuildAdminDailyStat(c *gin.Context) {
	var req RebuildStatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	stat, err := h.StatService.RebuildDailyStat(c.Request.Context(), req.StatDate)
	if err != nil {
		respondError(c, response.CodeInternal, "重建日报失败", err)
		return
	}
	response.Success(c, stat)
}
