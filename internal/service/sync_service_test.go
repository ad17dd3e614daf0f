package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/suzaku-admin/internal/config"
	"github.com/suzaku-admin/internal/models"
	"github.com/suzaku-admin/internal/repository"
	"github.com/suzaku-admin/internal/ta"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// stubQueryClient 按阶段返回预置结果
type stubQueryClient struct {
	results map[string]*ta.Result
	err     error
}

func (s *stubQueryClient) Query(_ context.Context, sql string) (*ta.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	for key, res := range s.results {
		if containsSQL(sql, key) {
			return res, nil
		}
	}
	return &ta.Result{}, nil
}

// containsSQL 通过各目标独有的查询片段区分阶段
func containsSQL(sql, key string) bool {
	switch key {
	case "roles":
		return strings.Contains(sql, "create_role_id")
	case "orders":
		return strings.Contains(sql, "sdk_order_purchase")
	case "last_login":
		return strings.Contains(sql, "role_login")
	case "behavior":
		return strings.Contains(sql, "event_count")
	}
	return false
}

func newResult(headers []string, rows [][]any) *ta.Result {
	lines := fmt.Sprintf(`{"return_code":0,"data":{"headers":%s}}`, mustJSON(headers))
	for _, row := range rows {
		lines += "\n" + mustJSON(row)
	}
	res, err := ta.ParseResponse([]byte(lines))
	if err != nil {
		panic(err)
	}
	return res
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func setupSyncServiceTest(t *testing.T, client QueryClient) (*SyncService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:sync_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Role{},
		&models.Order{},
		&models.UserBehaviorStat{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.ThinkingData = config.ThinkingDataConfig{
		EventView: "v_event_1",
		UserView:  "v_user_1",
	}
	svc := NewSyncService(
		cfg,
		client,
		repository.NewRoleRepository(db),
		repository.NewOrderRepository(db),
		repository.NewBehaviorStatRepository(db),
	)
	return svc, db
}

var roleHeaders = []string{
	"#user_id", "#account_id", "role_id", "role_name", "role_level", "vip_level",
	"server_id", "server_name", "country", "dev_type", "channel_id",
	"total_recharge_usd", "total_recharge_times", "total_login_days",
	"register_time", "last_login_time", "tf_medium",
}

func roleRow(roleID string, serverID any, level int) []any {
	return []any{
		"U_" + roleID, "ACC_" + roleID, roleID, "玩家" + roleID, level, 1,
		serverID, "S28", "US", "Android 14", 1003,
		"19.99", 3, 7,
		"2024-05-01 08:00:00.000", "2024-05-01 09:30:00.000", "Organic",
	}
}

func TestSyncRolesPartialFailure(t *testing.T) {
	client := &stubQueryClient{results: map[string]*ta.Result{
		"roles": newResult(roleHeaders, [][]any{
			roleRow("R1", 28, 10),
			{nil, nil, "", "无名", 5, 0, 29, "S29", "US", "iOS", 1003, "0", 0, 1, "2024-05-01 08:00:00", nil, "Organic"},
			roleRow("R2", "not-a-number", 3),
		}),
	}}
	svc, db := setupSyncServiceTest(t, client)

	result := svc.SyncRoles(context.Background(), ta.QueryParams{StartDate: "2024-05-01", EndDate: "2024-05-02"})
	if result.Failed() {
		t.Fatalf("stage failed: %s", result.Error)
	}
	if result.Fetched != 3 || result.Inserted != 1 || result.Skipped != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	var role models.Role
	if err := db.Where("role_id = ?", "R1").First(&role).Error; err != nil {
		t.Fatalf("role not written: %v", err)
	}
	if role.ServerID != 28 || role.RoleLevel != 10 {
		t.Fatalf("unexpected role: %+v", role)
	}
	if role.CpsVisible {
		t.Fatal("new role must default to cps invisible")
	}
	if !role.TotalRechargeUsd.Decimal.Equal(decimal.NewFromFloat(19.99)) {
		t.Fatalf("unexpected recharge total: %s", role.TotalRechargeUsd.String())
	}
}

func TestSyncRolesBatchFallbackIsolatesBadRow(t *testing.T) {
	row1 := roleRow("R1", 28, 10)
	row2 := roleRow("R2", 29, 11)
	row2[1] = row1[1] // 撞库：两个角色共用同一账号
	client := &stubQueryClient{results: map[string]*ta.Result{
		"roles": newResult(roleHeaders, [][]any{row1, row2}),
	}}
	svc, db := setupSyncServiceTest(t, client)
	if err := db.Exec("CREATE UNIQUE INDEX idx_roles_account_unique ON roles(account_id)").Error; err != nil {
		t.Fatalf("create index failed: %v", err)
	}

	result := svc.SyncRoles(context.Background(), ta.QueryParams{StartDate: "2024-05-01", EndDate: "2024-05-02"})
	if result.Failed() {
		t.Fatalf("stage failed: %s", result.Error)
	}
	if result.Fetched != 2 || result.Inserted != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	var count int64
	if err := db.Model(&models.Role{}).Count(&count).Error; err != nil {
		t.Fatalf("count roles failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("role count want 1 got %d", count)
	}
	var role models.Role
	if err := db.Where("role_id = ?", "R1").First(&role).Error; err != nil {
		t.Fatalf("good row should survive batch failure: %v", err)
	}
}

func TestSyncRolesUpdatePreservesCpsBinding(t *testing.T) {
	client := &stubQueryClient{results: map[string]*ta.Result{
		"roles": newResult(roleHeaders, [][]any{roleRow("R1", 28, 10)}),
	}}
	svc, db := setupSyncServiceTest(t, client)
	params := ta.QueryParams{StartDate: "2024-05-01"}

	if result := svc.SyncRoles(context.Background(), params); result.Inserted != 1 {
		t.Fatalf("first sync: %+v", result)
	}
	// 审核流写入归因后，再次同步不得覆盖
	if err := db.Model(&models.Role{}).Where("role_id = ?", "R1").
		Updates(map[string]any{"cps_group": "g-007", "cps_visible": true}).Error; err != nil {
		t.Fatalf("set binding failed: %v", err)
	}

	client.results["roles"] = newResult(roleHeaders, [][]any{roleRow("R1", 28, 12)})
	result := svc.SyncRoles(context.Background(), params)
	if result.Updated != 1 || result.Inserted != 0 {
		t.Fatalf("second sync: %+v", result)
	}

	var role models.Role
	if err := db.Where("role_id = ?", "R1").First(&role).Error; err != nil {
		t.Fatalf("reload role: %v", err)
	}
	if role.RoleLevel != 12 {
		t.Fatalf("level should advance, got %d", role.RoleLevel)
	}
	if role.CpsGroup != "g-007" || !role.CpsVisible {
		t.Fatalf("sync must not touch cps binding: group=%q visible=%v", role.CpsGroup, role.CpsVisible)
	}
}

func TestSyncRolesDedupKeepsFirst(t *testing.T) {
	dup := roleRow("R1", 28, 10)
	older := roleRow("R1", 28, 8)
	client := &stubQueryClient{results: map[string]*ta.Result{
		"roles": newResult(roleHeaders, [][]any{dup, older}),
	}}
	svc, db := setupSyncServiceTest(t, client)

	result := svc.SyncRoles(context.Background(), ta.QueryParams{StartDate: "2024-05-01"})
	if result.Inserted != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	var role models.Role
	if err := db.Where("role_id = ?", "R1").First(&role).Error; err != nil {
		t.Fatalf("reload role: %v", err)
	}
	// 查询按时间倒序，首行是最新状态
	if role.RoleLevel != 10 {
		t.Fatalf("expected first occurrence to win, got level %d", role.RoleLevel)
	}
}

var orderHeaders = []string{
	"game_order_id", "role_id", "role_name", "role_level", "server_id", "server_name",
	"#country", "dev_type", "channel_id", "goods_id", "pay_amount_usd",
	"currency_type", "currency_amount", "recharge_type", "is_sandbox", "#event_time", "pay_type",
}

func orderRow(orderID, roleID, amount string, sandbox bool) []any {
	return []any{
		orderID, roleID, "玩家" + roleID, 10, 28, "S28",
		"US", "Android", 1003, "gem_pack_60", amount,
		"USD", amount, "现金", sandbox, "2024-05-01 12:00:00.000", "1",
	}
}

func seedSyncedRole(t *testing.T, svc *SyncService, client *stubQueryClient, roleID string) {
	t.Helper()
	client.results["roles"] = newResult(roleHeaders, [][]any{roleRow(roleID, 28, 10)})
	if result := svc.SyncRoles(context.Background(), ta.QueryParams{StartDate: "2024-05-01"}); result.Failed() {
		t.Fatalf("seed role failed: %s", result.Error)
	}
}

func TestSyncOrdersRechargeIncrementOnce(t *testing.T) {
	client := &stubQueryClient{results: map[string]*ta.Result{}}
	svc, db := setupSyncServiceTest(t, client)
	seedSyncedRole(t, svc, client, "R1")

	client.results["orders"] = newResult(orderHeaders, [][]any{
		orderRow("ORD-1", "R1", "4.99", false),
	})
	params := ta.QueryParams{StartDate: "2024-05-01"}

	result := svc.SyncOrders(context.Background(), params)
	if result.Inserted != 1 || result.Updated != 0 {
		t.Fatalf("first sync: %+v", result)
	}

	// 幂等重放：订单只更新，不再累加
	result = svc.SyncOrders(context.Background(), params)
	if result.Inserted != 0 || result.Updated != 1 {
		t.Fatalf("replay sync: %+v", result)
	}

	var role models.Role
	if err := db.Where("role_id = ?", "R1").First(&role).Error; err != nil {
		t.Fatalf("reload role: %v", err)
	}
	want := decimal.NewFromFloat(19.99).Add(decimal.NewFromFloat(4.99))
	if !role.TotalRechargeUsd.Decimal.Equal(want) {
		t.Fatalf("recharge total = %s, want %s", role.TotalRechargeUsd.String(), want)
	}
	if role.TotalRechargeTimes != 4 {
		t.Fatalf("recharge times = %d, want 4", role.TotalRechargeTimes)
	}

	var count int64
	db.Model(&models.Order{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 order, got %d", count)
	}
}

func TestSyncOrdersSandboxSkipsIncrement(t *testing.T) {
	client := &stubQueryClient{results: map[string]*ta.Result{}}
	svc, db := setupSyncServiceTest(t, client)
	seedSyncedRole(t, svc, client, "R1")

	client.results["orders"] = newResult(orderHeaders, [][]any{
		orderRow("ORD-SBX", "R1", "99.99", true),
	})
	result := svc.SyncOrders(context.Background(), ta.QueryParams{StartDate: "2024-05-01"})
	if result.Inserted != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	var order models.Order
	if err := db.Where("order_id = ?", "ORD-SBX").First(&order).Error; err != nil {
		t.Fatalf("sandbox order should still be stored: %v", err)
	}
	if !order.IsSandbox {
		t.Fatal("sandbox flag lost")
	}

	var role models.Role
	db.Where("role_id = ?", "R1").First(&role)
	if !role.TotalRechargeUsd.Decimal.Equal(decimal.NewFromFloat(19.99)) {
		t.Fatalf("sandbox order must not touch recharge total, got %s", role.TotalRechargeUsd.String())
	}
}

func TestSyncOrdersMissingRoleSkipped(t *testing.T) {
	client := &stubQueryClient{results: map[string]*ta.Result{}}
	svc, db := setupSyncServiceTest(t, client)
	seedSyncedRole(t, svc, client, "R1")

	client.results["orders"] = newResult(orderHeaders, [][]any{
		orderRow("ORD-1", "R1", "4.99", false),
		orderRow("ORD-GHOST", "R404", "9.99", false),
	})
	result := svc.SyncOrders(context.Background(), ta.QueryParams{StartDate: "2024-05-01"})
	if result.Inserted != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	var count int64
	db.Model(&models.Order{}).Where("order_id = ?", "ORD-GHOST").Count(&count)
	if count != 0 {
		t.Fatal("order without a known role must not be stored")
	}
}

func TestSyncLastLoginMonotonic(t *testing.T) {
	client := &stubQueryClient{results: map[string]*ta.Result{}}
	svc, db := setupSyncServiceTest(t, client)
	seedSyncedRole(t, svc, client, "R1")

	headers := []string{"account_id", "last_login_time", "server_id", "role_name", "server_name"}
	client.results["last_login"] = newResult(headers, [][]any{
		{"ACC_R1", "2024-05-02 20:00:00.000", 28, "玩家R1", "S28"},
	})
	params := ta.QueryParams{StartDate: "2024-05-02"}

	result := svc.SyncLastLogin(context.Background(), params)
	if result.Updated != 1 {
		t.Fatalf("first pass: %+v", result)
	}

	// 回退的时间不生效
	client.results["last_login"] = newResult(headers, [][]any{
		{"ACC_R1", "2024-05-01 08:00:00.000", 28, "玩家R1", "S28"},
	})
	result = svc.SyncLastLogin(context.Background(), params)
	if result.Updated != 0 || result.Skipped != 1 {
		t.Fatalf("stale pass: %+v", result)
	}

	var role models.Role
	db.Where("role_id = ?", "R1").First(&role)
	want := time.Date(2024, 5, 2, 20, 0, 0, 0, time.Local)
	if role.LastLoginTime == nil || !role.LastLoginTime.Equal(want) {
		t.Fatalf("last login = %v, want %v", role.LastLoginTime, want)
	}
}

func TestSyncBehaviorWritesDailyAggregates(t *testing.T) {
	client := &stubQueryClient{results: map[string]*ta.Result{}}
	svc, db := setupSyncServiceTest(t, client)

	headers := []string{"user_id", "event_name", "event_count", "last_event_time"}
	client.results["behavior"] = newResult(headers, [][]any{
		{"U1", "login", 5, "2024-05-01 23:10:00.000"},
		{"U1", "recharge_complete", 1, "2024-05-01 12:00:00.000"},
		{"", "login", 2, nil},
	})
	result := svc.SyncBehavior(context.Background(), ta.QueryParams{StartDate: "2024-05-01"})
	if result.Updated != 2 || result.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	// 重放同窗口不产生重复行
	result = svc.SyncBehavior(context.Background(), ta.QueryParams{StartDate: "2024-05-01"})
	if result.Failed() {
		t.Fatalf("replay failed: %s", result.Error)
	}
	var count int64
	db.Model(&models.UserBehaviorStat{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 rows after replay, got %d", count)
	}
}

func TestSyncStageQueryFailure(t *testing.T) {
	client := &stubQueryClient{err: errors.New("network down")}
	svc, _ := setupSyncServiceTest(t, client)

	result := svc.SyncRoles(context.Background(), ta.QueryParams{StartDate: "2024-05-01"})
	if !result.Failed() {
		t.Fatal("expected failed stage")
	}
	if result.RecordCount() != 0 {
		t.Fatalf("failed stage should not count records: %+v", result)
	}
}
