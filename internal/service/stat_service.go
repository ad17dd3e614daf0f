package service

import (
	"context"
	"fmt"
	"time"

	"github.com/suzaku-admin/internal/cache"
	"github.com/suzaku-admin/internal/logger"
	"github.com/suzaku-admin/internal/models"
	"github.com/suzaku-admin/internal/repository"
)

const (
	statDateLayout    = "2006-01-02"
	statOverviewTTL   = 60 * time.Second
	statOverviewKey   = "stat:overview"
	statOverviewDays  = 7
	statMaxRebuildDay = 92
)

// StatService 经营日报服务：从角色与订单事实表重建日聚合
type StatService struct {
	roleRepo  repository.RoleRepository
	orderRepo repository.OrderRepository
	statRepo  repository.DailyStatRepository
}

// NewStatService 创建日报服务实例
func NewStatService(
	roleRepo repository.RoleRepository,
	orderRepo repository.OrderRepository,
	statRepo repository.DailyStatRepository,
) *StatService {
	return &StatService{
		roleRepo:  roleRepo,
		orderRepo: orderRepo,
		statRepo:  statRepo,
	}
}

// RebuildDailyStat 重建某一天的日报，整行覆盖，可任意重放
func (s *StatService) RebuildDailyStat(ctx context.Context, statDate string) (*models.DailyStat, error) {
	day, err := time.ParseInLocation(statDateLayout, statDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("无效的统计日期 %q: %w", statDate, err)
	}
	from := day
	to := day.AddDate(0, 0, 1)

	newPlayers, err := s.roleRepo.CountRegisteredBetween(from, to)
	if err != nil {
		return nil, err
	}
	activePlayers, err := s.roleRepo.CountActiveBetween(from, to)
	if err != nil {
		return nil, err
	}
	summary, err := s.orderRepo.SummarizeBetween(from, to)
	if err != nil {
		return nil, err
	}

	stat := &models.DailyStat{
		StatDate:      day,
		NewPlayers:    newPlayers,
		ActivePlayers: activePlayers,
		PaidPlayers:   summary.PaidPlayers,
		TotalRevenue:  summary.TotalRevenue,
		TotalOrders:   summary.TotalOrders,
	}
	if err := s.statRepo.Replace(stat); err != nil {
		return nil, err
	}

	_ = cache.Del(ctx, statOverviewKey)
	logger.Infow("daily_stat_rebuilt",
		"stat_date", statDate,
		"new_players", newPlayers,
		"active_players", activePlayers,
		"paid_players", summary.PaidPlayers,
		"total_orders", summary.TotalOrders,
	)
	return stat, nil
}

// RebuildRange 按日期区间重建日报，单日失败不阻断后续日期
func (s *StatService) RebuildRange(ctx context.Context, startDate, endDate string) (int, error) {
	start, err := time.ParseInLocation(statDateLayout, startDate, time.Local)
	if err != nil {
		return 0, fmt.Errorf("无效的开始日期 %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation(statDateLayout, endDate, time.Local)
	if err != nil {
		return 0, fmt.Errorf("无效的结束日期 %q: %w", endDate, err)
	}
	if end.Before(start) {
		return 0, fmt.Errorf("结束日期 %s 早于开始日期 %s", endDate, startDate)
	}
	if int(end.Sub(start).Hours()/24) > statMaxRebuildDay {
		return 0, fmt.Errorf("重建区间不能超过 %d 天", statMaxRebuildDay)
	}

	rebuilt := 0
	var lastErr error
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if ctx.Err() != nil {
			return rebuilt, ctx.Err()
		}
		if _, err := s.RebuildDailyStat(ctx, day.Format(statDateLayout)); err != nil {
			logger.Errorw("daily_stat_rebuild_failed", "stat_date", day.Format(statDateLayout), "error", err)
			lastErr = err
			continue
		}
		rebuilt++
	}
	return rebuilt, lastErr
}

// StatOverview 后台首页概览
type StatOverview struct {
	Days []models.DailyStat `json:"days"`
}

// Overview 最近一周日报，带短缓存
func (s *StatService) Overview(ctx context.Context) (*StatOverview, error) {
	var cached StatOverview
	if hit, err := cache.GetJSON(ctx, statOverviewKey, &cached); err == nil && hit {
		return &cached, nil
	}

	now := time.Now()
	end, _ := time.ParseInLocation(statDateLayout, now.Format(statDateLayout), time.Local)
	days, err := s.statRepo.ListRange(end.AddDate(0, 0, -(statOverviewDays-1)), end)
	if err != nil {
		return nil, err
	}

	overview := &StatOverview{Days: days}
	_ = cache.SetJSON(ctx, statOverviewKey, overview, statOverviewTTL)
	return overview, nil
}

// ListRange 按区间查询日报
func (s *StatService) ListRange(startDate, endDate string) ([]models.DailyStat, error) {
	start, err := time.ParseInLocation(statDateLayout, startDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("无效的开始日期 %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation(statDateLayout, endDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("无效的结束日期 %q: %w", endDate, err)
	}
	return s.statRepo.ListRange(start, end)
}
