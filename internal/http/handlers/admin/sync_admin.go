package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/suzaku-admin/internal/http/response"
	"github.com/suzaku-admin/internal/queue"
	"github.com/suzaku-admin/internal/service"

	"github.com/gin-gonic/gin"
)

const backfillMaxDays = 31

// TriggerSync 手动触发一次增量同步
func (h *Handler) TriggerSync(c *gin.Context) {
	report, err := h.SyncOrchestrator.TriggerRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrSyncRunning) {
			respondError(c, response.CodeTooManyRequests, "同步任务已在运行", nil)
			return
		}
		respondError(c, response.CodeInternal, "触发同步失败", err)
		return
	}
	response.Success(c, report)
}

// BackfillRequest 回补请求
type BackfillRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Async     bool   `json:"async"`
}

// TriggerBackfill 回补指定日期区间
// async 时任务进队列由 worker 执行，否则同步等待结果
func (h *Handler) TriggerBackfill(c *gin.Context) {
	var req BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "开始日期格式错误", err)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "结束日期格式错误", err)
		return
	}
	if end.Before(start) {
		respondError(c, response.CodeBadRequest, "结束日期不能早于开始日期", nil)
		return
	}
	if end.Sub(start) > backfillMaxDays*24*time.Hour {
		respondError(c, response.CodeBadRequest, "回补区间不能超过 31 天", nil)
		return
	}

	if req.Async && h.QueueClient.Enabled() {
		payload := queue.SyncBackfillPayload{StartDate: req.StartDate, EndDate: req.EndDate}
		if err := h.QueueClient.EnqueueSyncBackfill(payload); err != nil {
			respondError(c, response.CodeInternal, "回补任务入队失败", err)
			return
		}
		response.SuccessWithMsg(c, "回补任务已入队", gin.H{
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
		})
		return
	}

	report, err := h.SyncOrchestrator.TriggerBackfill(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, service.ErrSyncRunning) {
			respondError(c, response.CodeTooManyRequests, "同步任务已在运行", nil)
			return
		}
		respondError(c, response.CodeInternal, "回补失败", err)
		return
	}
	response.Success(c, report)
}

// GetSyncStatus 同步器状态
func (h *Handler) GetSyncStatus(c *gin.Context) {
	response.Success(c, h.SyncOrchestrator.Status())
}

// GetSyncLogs 同步记录列表
func (h *Handler) GetSyncLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	stage := c.Query("stage")

	var err error
	var logs interface{}
	if stage != "" {
		logs, err = h.SyncLogRepo.ListByStage(stage, limit)
	} else {
		logs, err = h.SyncLogRepo.ListRecent(limit)
	}
	if err != nil {
		respondError(c, response.CodeInternal, "获取同步记录失败", err)
		return
	}
	response.Success(c, logs)
}
