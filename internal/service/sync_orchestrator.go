package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/suzaku-admin/internal/config"
	"github.com/suzaku-admin/internal/constants"
	"github.com/suzaku-admin/internal/logger"
	"github.com/suzaku-admin/internal/models"
	"github.com/suzaku-admin/internal/repository"
	"github.com/suzaku-admin/internal/ta"
)

// RunReport 一次完整同步的汇总结果
type RunReport struct {
	StartedAt time.Time      `json:"started_at"`
	Stages    []*StageResult `json:"stages"`
	Success   bool           `json:"success"`
}

// SyncStatus 同步器当前状态
type SyncStatus struct {
	Enabled   bool       `json:"enabled"`
	Running   bool       `json:"running"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

// SyncOrchestrator 同步编排器：串行调度各阶段并保证单实例运行
type SyncOrchestrator struct {
	cfg         *config.Config
	syncService *SyncService
	statService *StatService
	syncLogRepo repository.SyncLogRepository

	running   atomic.Bool
	lastRunAt atomic.Pointer[time.Time]
}

// NewSyncOrchestrator 创建同步编排器实例
func NewSyncOrchestrator(
	cfg *config.Config,
	syncService *SyncService,
	statService *StatService,
	syncLogRepo repository.SyncLogRepository,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		cfg:         cfg,
		syncService: syncService,
		statService: statService,
		syncLogRepo: syncLogRepo,
	}
}

// Status 返回同步器状态
func (o *SyncOrchestrator) Status() SyncStatus {
	return SyncStatus{
		Enabled:   o.cfg.ThinkingData.SyncEnabled,
		Running:   o.running.Load(),
		LastRunAt: o.lastRunAt.Load(),
	}
}

// TriggerRun 执行一次常规同步，窗口为 [昨天, 今天]
// 已有运行中的任务时返回 ErrSyncRunning，不排队
func (o *SyncOrchestrator) TriggerRun(ctx context.Context) (*RunReport, error) {
	today := time.Now().Format(statDateLayout)
	yesterday := time.Now().AddDate(0, 0, -1).Format(statDateLayout)
	return o.run(ctx, yesterday, today)
}

// TriggerBackfill 回补指定日期区间
func (o *SyncOrchestrator) TriggerBackfill(ctx context.Context, startDate, endDate string) (*RunReport, error) {
	return o.run(ctx, startDate, endDate)
}

func (o *SyncOrchestrator) run(ctx context.Context, startDate, endDate string) (*RunReport, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrSyncRunning
	}
	defer o.running.Store(false)

	startedAt := time.Now()
	report := &RunReport{StartedAt: startedAt, Success: true}

	params := ta.QueryParams{StartDate: startDate, EndDate: endDate}
	roleParams := params
	roleParams.Limit = o.cfg.ThinkingData.RoleSyncLimit
	orderParams := params
	orderParams.Limit = o.cfg.ThinkingData.OrderSyncLimit

	// 阶段串行且互不阻断：角色失败不影响订单与登录阶段
	stages := []func(context.Context) *StageResult{
		func(ctx context.Context) *StageResult { return o.syncService.SyncRoles(ctx, roleParams) },
		func(ctx context.Context) *StageResult { return o.syncService.SyncOrders(ctx, orderParams) },
		func(ctx context.Context) *StageResult { return o.syncService.SyncLastLogin(ctx, params) },
		func(ctx context.Context) *StageResult { return o.syncService.SyncBehavior(ctx, params) },
	}
	for _, stage := range stages {
		result := stage(ctx)
		o.record(result)
		report.Stages = append(report.Stages, result)
		if result.Failed() {
			report.Success = false
		}
	}

	// 日报不重建今天，当日数据尚未完整
	rebuildEnd := endDate
	if yesterday := time.Now().AddDate(0, 0, -1).Format(statDateLayout); rebuildEnd > yesterday {
		rebuildEnd = yesterday
	}
	if rebuildEnd >= startDate {
		report.Stages = append(report.Stages, o.rebuildStats(ctx, startDate, rebuildEnd))
		if report.Stages[len(report.Stages)-1].Failed() {
			report.Success = false
		}
	}

	now := time.Now()
	o.lastRunAt.Store(&now)
	logger.Infow("sync_run_finished",
		"start_date", startDate,
		"end_date", endDate,
		"success", report.Success,
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)
	return report, nil
}

func (o *SyncOrchestrator) rebuildStats(ctx context.Context, startDate, endDate string) *StageResult {
	start := time.Now()
	result := &StageResult{Stage: constants.SyncStageDailyStat, TargetDate: startDate}

	rebuilt, err := o.statService.RebuildRange(ctx, startDate, endDate)
	result.Updated = rebuilt
	result.finish(start, err)
	o.record(result)
	return result
}

// record 每个阶段写一条同步日志，失败也要留痕
func (o *SyncOrchestrator) record(result *StageResult) {
	status := constants.SyncStatusSuccess
	if result.Failed() {
		status = constants.SyncStatusFailed
	}
	log := &models.SyncLog{
		Source:       constants.SyncSourceThinkingData,
		Stage:        result.Stage,
		TargetDate:   result.TargetDate,
		Status:       status,
		RecordCount:  result.RecordCount(),
		DurationMs:   result.DurationMs,
		ErrorMessage: result.Error,
	}
	if err := o.syncLogRepo.Append(log); err != nil {
		logger.Errorw("sync_log_append_failed", "stage", result.Stage, "error", err)
	}
}

// RecentLogs 最近同步记录
func (o *SyncOrchestrator) RecentLogs(limit int) ([]models.SyncLog, error) {
	return o.syncLogRepo.ListRecent(limit)
}
