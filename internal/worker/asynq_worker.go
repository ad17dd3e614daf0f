package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/suzaku-admin/internal/logger"
	"github.com/suzaku-admin/internal/provider"
	"github.com/suzaku-admin/internal/queue"
	"github.com/suzaku-admin/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSyncBackfill, c.handleSyncBackfill)
	mux.HandleFunc(queue.TaskStatRebuild, c.handleStatRebuild)
}

func (c *Consumer) handleSyncBackfill(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_sync_backfill_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SyncBackfillPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_sync_backfill_unmarshal_failed", "error", err)
		return err
	}
	if payload.StartDate == "" || payload.EndDate == "" {
		logger.Debugw("worker_sync_backfill_skip_invalid_payload",
			"start_date", payload.StartDate, "end_date", payload.EndDate)
		return nil
	}

	report, err := c.SyncOrchestrator.TriggerBackfill(ctx, payload.StartDate, payload.EndDate)
	if err != nil {
		if errors.Is(err, service.ErrSyncRunning) {
			// 正在运行时返回错误让 asynq 按退避重试，不排队第二个实例
			logger.Infow("worker_sync_backfill_busy",
				"start_date", payload.StartDate, "end_date", payload.EndDate)
		}
		return err
	}
	logger.Infow("worker_sync_backfill_done",
		"start_date", payload.StartDate,
		"end_date", payload.EndDate,
		"success", report.Success,
		"stages", len(report.Stages),
	)
	return nil
}

func (c *Consumer) handleStatRebuild(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_stat_rebuild_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StatRebuildPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_stat_rebuild_unmarshal_failed", "error", err)
		return err
	}
	if payload.StartDate == "" || payload.EndDate == "" {
		logger.Debugw("worker_stat_rebuild_skip_invalid_payload",
			"start_date", payload.StartDate, "end_date", payload.EndDate)
		return nil
	}

	rebuilt, err := c.StatService.RebuildRange(ctx, payload.StartDate, payload.EndDate)
	if err != nil {
		logger.Warnw("worker_stat_rebuild_failed",
			"start_date", payload.StartDate, "end_date", payload.EndDate, "error", err)
		return err
	}
	logger.Infow("worker_stat_rebuild_done",
		"start_date", payload.StartDate,
		"end_date", payload.EndDate,
		"rebuilt_days", rebuilt,
	)
	return nil
}
