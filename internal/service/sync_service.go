package service

import (
	"context"
	"strings"
	"time"

	"github.com/suzaku-admin/internal/config"
	"github.com/suzaku-admin/internal/constants"
	"github.com/suzaku-admin/internal/logger"
	"github.com/suzaku-admin/internal/models"
	"github.com/suzaku-admin/internal/repository"
	"github.com/suzaku-admin/internal/ta"
)

// upsertBatchSize 单事务批量写入行数上限
const upsertBatchSize = 200

// QueryClient 数数平台查询客户端抽象，便于测试替换网络层
type QueryClient interface {
	Query(ctx context.Context, sql string) (*ta.Result, error)
}

// StageResult 单阶段同步结果
type StageResult struct {
	Stage      string        `json:"stage"`
	TargetDate string        `json:"target_date"`
	Fetched    int           `json:"fetched"`
	Inserted   int           `json:"inserted"`
	Updated    int           `json:"updated"`
	Skipped    int           `json:"skipped"`
	Malformed  int           `json:"malformed"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"duration_ms"`
	Error      string        `json:"error,omitempty"`
}

// RecordCount 实际落库行数
func (r *StageResult) RecordCount() int {
	return r.Inserted + r.Updated
}

// Failed 阶段是否失败
func (r *StageResult) Failed() bool {
	return r.Error != ""
}

// SyncService 同步服务：从数数平台拉取事件并幂等落库
type SyncService struct {
	cfg          *config.Config
	client       QueryClient
	roleRepo     repository.RoleRepository
	orderRepo    repository.OrderRepository
	behaviorRepo repository.BehaviorStatRepository
}

// NewSyncService 创建同步服务实例
func NewSyncService(
	cfg *config.Config,
	client QueryClient,
	roleRepo repository.RoleRepository,
	orderRepo repository.OrderRepository,
	behaviorRepo repository.BehaviorStatRepository,
) *SyncService {
	return &SyncService{
		cfg:          cfg,
		client:       client,
		roleRepo:     roleRepo,
		orderRepo:    orderRepo,
		behaviorRepo: behaviorRepo,
	}
}

func (s *SyncService) views() ta.Views {
	return ta.Views{
		Event:  s.cfg.ThinkingData.EventView,
		User:   s.cfg.ThinkingData.UserView,
		CpsDim: s.cfg.ThinkingData.CpsDimTable,
	}
}

func newStageResult(stage string, params ta.QueryParams) *StageResult {
	return &StageResult{Stage: stage, TargetDate: params.StartDate}
}

func (r *StageResult) finish(start time.Time, err error) *StageResult {
	r.Duration = time.Since(start)
	r.DurationMs = r.Duration.Milliseconds()
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// SyncRoles 同步角色档案
func (s *SyncService) SyncRoles(ctx context.Context, params ta.QueryParams) *StageResult {
	start := time.Now()
	result := newStageResult(constants.SyncStageRoles, params)

	sql, err := ta.BuildQuery(s.views(), ta.TargetRoles, params)
	if err != nil {
		return result.finish(start, err)
	}
	res, err := s.client.Query(ctx, sql)
	if err != nil {
		return result.finish(start, err)
	}
	result.Fetched = len(res.Rows)
	result.Malformed = res.Malformed

	// 第一遍：逐行解析与去重，保留首次出现（查询按时间倒序，首行最新）
	roles := make([]models.Role, 0, len(res.Rows))
	seen := make(map[string]struct{}, len(res.Rows))
	ids := make([]string, 0, len(res.Rows))
	for i := range res.Rows {
		row := res.Row(i)
		role, ok := s.parseRole(row)
		if !ok {
			result.Skipped++
			continue
		}
		if _, dup := seen[role.RoleID]; dup {
			result.Skipped++
			continue
		}
		seen[role.RoleID] = struct{}{}
		ids = append(ids, role.RoleID)
		roles = append(roles, *role)
	}

	existing, err := s.roleRepo.ListExistingIDs(ids)
	if err != nil {
		return result.finish(start, err)
	}

	s.writeRoleBatches(roles, existing, result)
	logger.Infow("sync_roles_done",
		"target_date", result.TargetDate,
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"malformed", result.Malformed,
	)
	return result.finish(start, nil)
}

func (s *SyncService) writeRoleBatches(roles []models.Role, existing map[string]struct{}, result *StageResult) {
	for offset := 0; offset < len(roles); offset += upsertBatchSize {
		end := offset + upsertBatchSize
		if end > len(roles) {
			end = len(roles)
		}
		batch := roles[offset:end]
		if err := s.roleRepo.UpsertBatch(batch); err == nil {
			for i := range batch {
				if _, ok := existing[batch[i].RoleID]; ok {
					result.Updated++
				} else {
					result.Inserted++
				}
			}
			continue
		} else {
			logger.Warnw("sync_role_batch_fallback", "offset", offset, "size", len(batch), "error", err)
		}
		// 批量失败，逐行回退隔离坏行
		for i := range batch {
			if err := s.roleRepo.Upsert(&batch[i]); err != nil {
				logger.Warnw("sync_role_row_skipped", "role_id", batch[i].RoleID, "error", err)
				result.Skipped++
				continue
			}
			if _, ok := existing[batch[i].RoleID]; ok {
				result.Updated++
			} else {
				result.Inserted++
			}
		}
	}
}

func (s *SyncService) parseRole(row ta.Row) (*models.Role, bool) {
	roleID := strings.TrimSpace(row.Str("role_id"))
	if roleID == "" {
		return nil, false
	}
	serverID, ok := row.IntStrict("server_id")
	if !ok {
		return nil, false
	}

	role := &models.Role{
		RoleID:             roleID,
		UserID:             strings.TrimSpace(row.Str("#user_id")),
		AccountID:          strings.TrimSpace(row.Str("#account_id")),
		RoleName:           row.Str("role_name"),
		RoleLevel:          row.Int("role_level"),
		VipLevel:           row.Int("vip_level"),
		ServerID:           serverID,
		ServerName:         row.Str("server_name"),
		Country:            row.Str("country"),
		DeviceType:         ta.NormalizeDeviceType(row.Str("dev_type")),
		ChannelID:          row.Int("channel_id"),
		TotalRechargeUsd:   models.NewMoneyFromDecimal(row.Decimal("total_recharge_usd")),
		TotalRechargeTimes: row.Int("total_recharge_times"),
		TotalLoginDays:     row.Int("total_login_days"),
		TfMedium:           row.Str("tf_medium"),
	}
	if t, ok := row.Time("register_time"); ok {
		role.RegisterTime = t
	}
	if t, ok := row.Time("last_login_time"); ok {
		role.LastLoginTime = &t
	}
	return role, true
}

// SyncOrders 同步充值订单，真实新单原子累加角色充值统计
func (s *SyncService) SyncOrders(ctx context.Context, params ta.QueryParams) *StageResult {
	start := time.Now()
	result := newStageResult(constants.SyncStageOrders, params)

	sql, err := ta.BuildQuery(s.views(), ta.TargetOrders, params)
	if err != nil {
		return result.finish(start, err)
	}
	res, err := s.client.Query(ctx, sql)
	if err != nil {
		return result.finish(start, err)
	}
	result.Fetched = len(res.Rows)
	result.Malformed = res.Malformed

	orders := make([]models.Order, 0, len(res.Rows))
	seen := make(map[string]struct{}, len(res.Rows))
	orderIDs := make([]string, 0, len(res.Rows))
	roleIDs := make([]string, 0, len(res.Rows))
	for i := range res.Rows {
		row := res.Row(i)
		order, ok := s.parseOrder(row)
		if !ok {
			result.Skipped++
			continue
		}
		if _, dup := seen[order.OrderID]; dup {
			result.Skipped++
			continue
		}
		seen[order.OrderID] = struct{}{}
		orderIDs = append(orderIDs, order.OrderID)
		roleIDs = append(roleIDs, order.RoleID)
		orders = append(orders, *order)
	}

	// 订单必须挂在已同步的角色上，角色缺失的订单跳过并计数，等下一轮角色先落库
	knownRoles, err := s.roleRepo.ListExistingIDs(roleIDs)
	if err != nil {
		return result.finish(start, err)
	}
	kept := orders[:0]
	for i := range orders {
		if _, ok := knownRoles[orders[i].RoleID]; !ok {
			result.Skipped++
			continue
		}
		kept = append(kept, orders[i])
	}
	orders = kept

	existing, err := s.orderRepo.ListExistingIDs(orderIDs)
	if err != nil {
		return result.finish(start, err)
	}

	s.writeOrderBatches(orders, existing, result)
	logger.Infow("sync_orders_done",
		"target_date", result.TargetDate,
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"malformed", result.Malformed,
	)
	return result.finish(start, nil)
}

func (s *SyncService) writeOrderBatches(orders []models.Order, existing map[string]struct{}, result *StageResult) {
	written := make([]*models.Order, 0, len(orders))
	for offset := 0; offset < len(orders); offset += upsertBatchSize {
		end := offset + upsertBatchSize
		if end > len(orders) {
			end = len(orders)
		}
		batch := orders[offset:end]
		if err := s.orderRepo.UpsertBatch(batch); err == nil {
			for i := range batch {
				written = append(written, &batch[i])
			}
			continue
		} else {
			logger.Warnw("sync_order_batch_fallback", "offset", offset, "size", len(batch), "error", err)
		}
		for i := range batch {
			if err := s.orderRepo.Upsert(&batch[i]); err != nil {
				logger.Warnw("sync_order_row_skipped", "order_id", batch[i].OrderID, "error", err)
				result.Skipped++
				continue
			}
			written = append(written, &batch[i])
		}
	}

	for _, order := range written {
		_, isUpdate := existing[order.OrderID]
		if isUpdate {
			result.Updated++
			continue
		}
		result.Inserted++
		// 只有真实新单累加角色充值统计，重复同步不会重复累加
		if order.IsSandbox {
			continue
		}
		if err := s.roleRepo.IncrementRecharge(order.RoleID, order.PayAmountUsd, 1); err != nil {
			logger.Errorw("sync_order_recharge_increment_failed",
				"order_id", order.OrderID, "role_id", order.RoleID, "error", err)
		}
	}
}

func (s *SyncService) parseOrder(row ta.Row) (*models.Order, bool) {
	orderID := strings.TrimSpace(row.Str("game_order_id"))
	if orderID == "" {
		return nil, false
	}
	roleID := strings.TrimSpace(row.Str("role_id"))
	if roleID == "" {
		return nil, false
	}
	payTime, ok := row.Time("#event_time")
	if !ok {
		return nil, false
	}

	return &models.Order{
		OrderID:        orderID,
		RoleID:         roleID,
		RoleName:       row.Str("role_name"),
		RoleLevel:      row.Int("role_level"),
		ServerID:       row.Int("server_id"),
		ServerName:     row.Str("server_name"),
		Country:        row.Str("#country"),
		DeviceType:     ta.NormalizeDeviceType(row.Str("dev_type")),
		ChannelID:      row.Int("channel_id"),
		GoodsID:        row.Str("goods_id"),
		PayAmountUsd:   models.NewMoneyFromDecimal(row.Decimal("pay_amount_usd")),
		CurrencyType:   row.Str("currency_type"),
		CurrencyAmount: models.NewMoneyFromDecimal(row.Decimal("currency_amount")),
		RechargeType:   ta.NormalizeRechargeType(row.Str("recharge_type")),
		PayChannel:     ta.NormalizePayChannel(row.Str("pay_type")),
		IsSandbox:      row.Bool("is_sandbox"),
		PayTime:        payTime,
	}, true
}

// SyncLastLogin 同步最后登录时间，只前进不回退
func (s *SyncService) SyncLastLogin(ctx context.Context, params ta.QueryParams) *StageResult {
	start := time.Now()
	result := newStageResult(constants.SyncStageLastLogin, params)

	sql, err := ta.BuildQuery(s.views(), ta.TargetLastLogin, params)
	if err != nil {
		return result.finish(start, err)
	}
	res, err := s.client.Query(ctx, sql)
	if err != nil {
		return result.finish(start, err)
	}
	result.Fetched = len(res.Rows)
	result.Malformed = res.Malformed

	for i := range res.Rows {
		row := res.Row(i)
		accountID := strings.TrimSpace(row.Str("account_id"))
		if accountID == "" {
			result.Skipped++
			continue
		}
		loginTime, ok := row.Time("last_login_time")
		if !ok {
			result.Skipped++
			continue
		}
		affected, err := s.roleRepo.UpdateLastLogin(accountID, loginTime)
		if err != nil {
			logger.Warnw("sync_last_login_row_skipped", "account_id", accountID, "error", err)
			result.Skipped++
			continue
		}
		if affected == 0 {
			result.Skipped++
			continue
		}
		result.Updated += int(affected)
	}

	logger.Infow("sync_last_login_done",
		"target_date", result.TargetDate,
		"fetched", result.Fetched,
		"updated", result.Updated,
		"skipped", result.Skipped,
	)
	return result.finish(start, nil)
}

// SyncBehavior 同步用户行为统计
func (s *SyncService) SyncBehavior(ctx context.Context, params ta.QueryParams) *StageResult {
	start := time.Now()
	result := newStageResult(constants.SyncStageBehavior, params)

	sql, err := ta.BuildQuery(s.views(), ta.TargetBehavior, params)
	if err != nil {
		return result.finish(start, err)
	}
	res, err := s.client.Query(ctx, sql)
	if err != nil {
		return result.finish(start, err)
	}
	result.Fetched = len(res.Rows)
	result.Malformed = res.Malformed

	eventDate, err := time.ParseInLocation("2006-01-02", params.StartDate, time.Local)
	if err != nil {
		return result.finish(start, err)
	}

	stats := make([]models.UserBehaviorStat, 0, len(res.Rows))
	for i := range res.Rows {
		row := res.Row(i)
		userID := strings.TrimSpace(row.Str("user_id"))
		eventName := strings.TrimSpace(row.Str("event_name"))
		if userID == "" || eventName == "" {
			result.Skipped++
			continue
		}
		stat := models.UserBehaviorStat{
			UserID:     userID,
			EventName:  eventName,
			EventDate:  eventDate,
			EventCount: int64(row.Int("event_count")),
			Source:     constants.SyncSourceThinkingData,
		}
		if t, ok := row.Time("last_event_time"); ok {
			stat.LastEventTime = &t
		}
		stats = append(stats, stat)
	}

	for offset := 0; offset < len(stats); offset += upsertBatchSize {
		end := offset + upsertBatchSize
		if end > len(stats) {
			end = len(stats)
		}
		if err := s.behaviorRepo.UpsertBatch(stats[offset:end]); err != nil {
			return result.finish(start, err)
		}
		result.Updated += end - offset
	}

	logger.Infow("sync_behavior_done",
		"target_date", result.TargetDate,
		"fetched", result.Fetched,
		"written", result.Updated,
		"skipped", result.Skipped,
	)
	return result.finish(start, nil)
}
