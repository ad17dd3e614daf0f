package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/suzaku-admin/internal/config"
	"github.com/suzaku-admin/internal/constants"
	"github.com/suzaku-admin/internal/models"
	"github.com/suzaku-admin/internal/repository"
	"github.com/suzaku-admin/internal/ta"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrchestratorTest(t *testing.T, client QueryClient) (*SyncOrchestrator, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:sync_orchestrator_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Role{},
		&models.Order{},
		&models.UserBehaviorStat{},
		&models.DailyStat{},
		&models.SyncLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.ThinkingData = config.ThinkingDataConfig{
		EventView:   "v_event_1",
		UserView:    "v_user_1",
		SyncEnabled: true,
	}
	roleRepo := repository.NewRoleRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	syncSvc := NewSyncService(cfg, client, roleRepo, orderRepo, repository.NewBehaviorStatRepository(db))
	statSvc := NewStatService(roleRepo, orderRepo, repository.NewDailyStatRepository(db))
	return NewSyncOrchestrator(cfg, syncSvc, statSvc, repository.NewSyncLogRepository(db)), db
}

func TestOrchestratorWritesStageLogs(t *testing.T) {
	client := &stubQueryClient{results: map[string]*ta.Result{
		"roles": newResult(roleHeaders, [][]any{roleRow("R1", 28, 10)}),
	}}
	orch, db := setupOrchestratorTest(t, client)

	report, err := orch.TriggerRun(context.Background())
	if err != nil {
		t.Fatalf("trigger run failed: %v", err)
	}
	if !report.Success {
		t.Fatalf("run should succeed: %+v", report)
	}
	// 四个拉取阶段 + 日报重建
	if len(report.Stages) != 5 {
		t.Fatalf("expected 5 stages, got %d", len(report.Stages))
	}

	var logs []models.SyncLog
	if err := db.Order("id ASC").Find(&logs).Error; err != nil {
		t.Fatalf("load sync logs: %v", err)
	}
	if len(logs) != 5 {
		t.Fatalf("expected 5 sync logs, got %d", len(logs))
	}
	wantStages := []string{
		constants.SyncStageRoles,
		constants.SyncStageOrders,
		constants.SyncStageLastLogin,
		constants.SyncStageBehavior,
		constants.SyncStageDailyStat,
	}
	for i, log := range logs {
		if log.Stage != wantStages[i] {
			t.Fatalf("log %d stage = %q, want %q", i, log.Stage, wantStages[i])
		}
		if log.Source != constants.SyncSourceThinkingData {
			t.Fatalf("unexpected source: %q", log.Source)
		}
		if log.Status != constants.SyncStatusSuccess {
			t.Fatalf("stage %s status = %q", log.Stage, log.Status)
		}
	}

	status := orch.Status()
	if status.Running {
		t.Fatal("orchestrator should be idle after run")
	}
	if status.LastRunAt == nil {
		t.Fatal("last run time not recorded")
	}
}

func TestOrchestratorStageFailureDoesNotAbort(t *testing.T) {
	client := &stubQueryClient{err: errors.New("gateway timeout")}
	orch, db := setupOrchestratorTest(t, client)

	report, err := orch.TriggerRun(context.Background())
	if err != nil {
		t.Fatalf("trigger run failed: %v", err)
	}
	if report.Success {
		t.Fatal("run with failing stages must not report success")
	}
	// 拉取阶段全部失败也要记满日志，日报照常重建
	var failed int64
	db.Model(&models.SyncLog{}).Where("status = ?", constants.SyncStatusFailed).Count(&failed)
	if failed != 4 {
		t.Fatalf("expected 4 failed stage logs, got %d", failed)
	}
	var rebuilt int64
	db.Model(&models.SyncLog{}).
		Where("stage = ? AND status = ?", constants.SyncStageDailyStat, constants.SyncStatusSuccess).
		Count(&rebuilt)
	if rebuilt != 1 {
		t.Fatal("daily stat stage should still run")
	}
}

// blockingQueryClient 首次查询时阻塞，用于构造运行中状态
type blockingQueryClient struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingQueryClient) Query(ctx context.Context, _ string) (*ta.Result, error) {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &ta.Result{}, nil
}

func TestOrchestratorSingleFlight(t *testing.T) {
	client := &blockingQueryClient{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	orch, _ := setupOrchestratorTest(t, client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		orch.TriggerRun(context.Background())
	}()

	<-client.entered
	if _, err := orch.TriggerRun(context.Background()); !errors.Is(err, ErrSyncRunning) {
		t.Fatalf("expected ErrSyncRunning, got %v", err)
	}
	if !orch.Status().Running {
		t.Fatal("status should report running")
	}

	close(client.release)
	<-done

	// 运行结束后可以再次触发
	if _, err := orch.TriggerBackfill(context.Background(), "2024-05-01", "2024-05-02"); err != nil {
		t.Fatalf("trigger after completion failed: %v", err)
	}
}

func TestOrchestratorBackfillValidRange(t *testing.T) {
	client := &stubQueryClient{results: map[string]*ta.Result{}}
	orch, db := setupOrchestratorTest(t, client)

	report, err := orch.TriggerBackfill(context.Background(), "2024-05-01", "2024-05-03")
	if err != nil {
		t.Fatalf("backfill failed: %v", err)
	}
	if !report.Success {
		t.Fatalf("backfill should succeed: %+v", report)
	}
	var stats int64
	db.Model(&models.DailyStat{}).Count(&stats)
	if stats != 3 {
		t.Fatalf("expected 3 rebuilt daily stats, got %d", stats)
	}
}
