package worker

import (
	"context"
	"errors"
	"time"

	"github.com/suzaku-admin/internal/config"
	"github.com/suzaku-admin/internal/logger"
	"github.com/suzaku-admin/internal/queue"
	"github.com/suzaku-admin/internal/service"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name     string
	cfg      *config.Config
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		cfg:      cfg,
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.cfg.ThinkingData.SyncEnabled && s.consumer != nil && s.consumer.SyncOrchestrator != nil {
		go s.runSyncLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runSyncLoop 周期触发增量同步，窗口为 [昨天, 今天]
func (s *Service) runSyncLoop(ctx context.Context) {
	interval := time.Duration(s.cfg.ThinkingData.SyncIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	runOnce := func() {
		report, err := s.consumer.SyncOrchestrator.TriggerRun(ctx)
		if err != nil {
			if errors.Is(err, service.ErrSyncRunning) {
				logger.Debugw("worker_sync_tick_skip_running")
				return
			}
			logger.Warnw("worker_sync_tick_failed", "error", err)
			return
		}
		if !report.Success {
			logger.Warnw("worker_sync_tick_partial_failure", "stages", len(report.Stages))
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
