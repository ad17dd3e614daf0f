package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/suzaku-admin/internal/models"
	"github.com/suzaku-admin/internal/provider"
	"github.com/suzaku-admin/internal/repository"
	"github.com/suzaku-admin/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPlayerHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:player_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Role{}, &models.Order{}, &models.UserBehaviorStat{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	roleRepo := repository.NewRoleRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	behaviorRepo := repository.NewBehaviorStatRepository(db)
	h := &Handler{Container: &provider.Container{
		PlayerService: service.NewPlayerService(roleRepo, orderRepo, behaviorRepo),
	}}
	return h, db
}

func seedPlayerData(t *testing.T, db *gorm.DB) {
	t.Helper()
	roles := []models.Role{
		{
			RoleID:       "R1",
			UserID:       "U1",
			RoleName:     "远征的猫",
			ServerID:     28,
			DeviceType:   "Android",
			RegisterTime: time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local),
		},
		{
			RoleID:       "R2",
			UserID:       "U2",
			RoleName:     "夜行者",
			ServerID:     29,
			DeviceType:   "iOS",
			RegisterTime: time.Date(2024, 5, 2, 10, 0, 0, 0, time.Local),
		},
	}
	for i := range roles {
		if err := db.Create(&roles[i]).Error; err != nil {
			t.Fatalf("create role failed: %v", err)
		}
	}
	orders := []models.Order{
		{
			OrderID:      "ORD-1",
			RoleID:       "R1",
			ServerID:     28,
			PayAmountUsd: models.MoneyFromFloat(4.99),
			PayTime:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local),
		},
		{
			OrderID:      "ORD-SBX",
			RoleID:       "R1",
			ServerID:     28,
			PayAmountUsd: models.MoneyFromFloat(99.99),
			IsSandbox:    true,
			PayTime:      time.Date(2024, 5, 1, 13, 0, 0, 0, time.Local),
		},
	}
	for i := range orders {
		if err := db.Create(&orders[i]).Error; err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}
	behavior := models.UserBehaviorStat{
		UserID:     "U1",
		EventName:  "login",
		EventDate:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local),
		EventCount: 5,
	}
	if err := db.Create(&behavior).Error; err != nil {
		t.Fatalf("create behavior failed: %v", err)
	}
}

type listEnvelope struct {
	StatusCode int                      `json:"status_code"`
	Msg        string                   `json:"msg"`
	Data       []map[string]interface{} `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

func doGet(t *testing.T, handle gin.HandlerFunc, url string, params gin.Params) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, url, nil)
	c.Params = params
	handle(c)
	return w
}

func TestGetAdminRolesFilterByServer(t *testing.T) {
	h, db := setupPlayerHandlerTest(t)
	seedPlayerData(t, db)

	w := doGet(t, h.GetAdminRoles, "/admin/roles?server_id=28", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp listEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.StatusCode != 0 || resp.Pagination.Total != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Data[0]["role_id"] != "R1" {
		t.Fatalf("unexpected role: %v", resp.Data[0])
	}
}

func TestGetAdminRolesKeyword(t *testing.T) {
	h, db := setupPlayerHandlerTest(t)
	seedPlayerData(t, db)

	w := doGet(t, h.GetAdminRoles, "/admin/roles?keyword=夜行", nil)
	var resp listEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.Pagination.Total != 1 || resp.Data[0]["role_id"] != "R2" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetAdminRoleNotFound(t *testing.T) {
	h, db := setupPlayerHandlerTest(t)
	seedPlayerData(t, db)

	w := doGet(t, h.GetAdminRole, "/admin/roles/R404", gin.Params{{Key: "role_id", Value: "R404"}})
	var resp listEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("status_code want 404 got %d", resp.StatusCode)
	}
}

func TestGetAdminOrdersHidesSandbox(t *testing.T) {
	h, db := setupPlayerHandlerTest(t)
	seedPlayerData(t, db)

	w := doGet(t, h.GetAdminOrders, "/admin/orders", nil)
	var resp listEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.Pagination.Total != 1 || resp.Data[0]["order_id"] != "ORD-1" {
		t.Fatalf("sandbox should be hidden: %+v", resp)
	}

	w = doGet(t, h.GetAdminOrders, "/admin/orders?include_sandbox=1", nil)
	resp = listEnvelope{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.Pagination.Total != 2 {
		t.Fatalf("include_sandbox should show both: %+v", resp)
	}
}

func TestGetAdminRoleBehavior(t *testing.T) {
	h, db := setupPlayerHandlerTest(t)
	seedPlayerData(t, db)

	w := doGet(t, h.GetAdminRoleBehavior, "/admin/roles/R1/behavior", gin.Params{{Key: "role_id", Value: "R1"}})
	var resp struct {
		StatusCode int                      `json:"status_code"`
		Data       []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.StatusCode != 0 || len(resp.Data) != 1 {
		t.Fatalf("unexpected behavior response: %+v", resp)
	}
	if resp.Data[0]["event_name"] != "login" {
		t.Fatalf("unexpected event: %v", resp.Data[0])
	}
}
