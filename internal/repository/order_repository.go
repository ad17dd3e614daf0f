package repository

import (
	"errors"
	"time"

	"github.com/suzaku-admin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderSyncColumns 订单同步可覆盖的列
var orderSyncColumns = []string{
	"role_id", "role_name", "role_level", "server_id", "server_name",
	"country", "device_type", "channel_id", "goods_id",
	"pay_amount_usd", "currency_type", "currency_amount",
	"recharge_type", "pay_channel", "is_sandbox", "pay_time", "updated_at",
}

// RevenueSummary 窗口营收汇总
type RevenueSummary struct {
	TotalRevenue models.Money
	TotalOrders  int64
	PaidPlayers  int64
}

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	GetByOrderID(orderID string) (*models.Order, error)
	ListExistingIDs(orderIDs []string) (map[string]struct{}, error)
	UpsertBatch(orders []models.Order) error
	Upsert(order *models.Order) error
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	SummarizeBetween(from, to time.Time) (*RevenueSummary, error)
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// GetByOrderID 根据业务键获取订单
func (r *GormOrderRepository) GetByOrderID(orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListExistingIDs 批量查询已存在的订单业务键
func (r *GormOrderRepository) ListExistingIDs(orderIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(orderIDs))
	if len(orderIDs) == 0 {
		return existing, nil
	}
	var found []string
	if err := r.db.Model(&models.Order{}).
		Where("order_id IN ?", orderIDs).
		Pluck("order_id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// UpsertBatch 事务内批量 upsert，冲突键为 order_id
func (r *GormOrderRepository) UpsertBatch(orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns(orderSyncColumns),
		}).Create(&orders).Error
	})
}

// Upsert 单行 upsert
func (r *GormOrderRepository) Upsert(order *models.Order) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns(orderSyncColumns),
	}).Create(order).Error
}

// ListAdmin 后台订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.OrderID != "" {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.RoleID != "" {
		query = query.Where("role_id = ?", filter.RoleID)
	}
	if filter.ServerID > 0 {
		query = query.Where("server_id = ?", filter.ServerID)
	}
	if filter.RechargeType != "" {
		query = query.Where("recharge_type = ?", filter.RechargeType)
	}
	if filter.PayChannel != "" {
		query = query.Where("pay_channel = ?", filter.PayChannel)
	}
	if !filter.IncludeSandbox {
		query = query.Where("is_sandbox = ?", false)
	}
	if filter.PayTimeFrom != nil {
		query = query.Where("pay_time >= ?", *filter.PayTimeFrom)
	}
	if filter.PayTimeTo != nil {
		query = query.Where("pay_time < ?", *filter.PayTimeTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := applyPagination(query.Order("pay_time DESC"), filter.Page, filter.PageSize).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// SummarizeBetween 统计窗口内真实订单的营收、单量与付费人数（排除沙盒单）
func (r *GormOrderRepository) SummarizeBetween(from, to time.Time) (*RevenueSummary, error) {
	base := r.db.Model(&models.Order{}).
		Where("is_sandbox = ?", false).
		Where("pay_time >= ? AND pay_time < ?", from, to)

	var row struct {
		TotalRevenue models.Money
		TotalOrders  int64
	}
	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(pay_amount_usd), 0) AS total_revenue, COUNT(*) AS total_orders").
		Scan(&row).Error; err != nil {
		return nil, err
	}

	var paidPlayers int64
	if err := base.Session(&gorm.Session{}).
		Distinct("role_id").Count(&paidPlayers).Error; err != nil {
		return nil, err
	}

	return &RevenueSummary{
		TotalRevenue: row.TotalRevenue,
		TotalOrders:  row.TotalOrders,
		PaidPlayers:  paidPlayers,
	}, nil
}
