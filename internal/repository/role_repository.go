package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/suzaku-admin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// roleSyncColumns 角色同步可覆盖的列。
// 不含 cps_visible / cps_group：这两列归审核流所有，同步永不触碰。
var roleSyncColumns = []string{
	"user_id", "account_id", "role_name", "role_level", "vip_level",
	"server_id", "server_name", "country", "device_type", "channel_id",
	"total_recharge_usd", "total_recharge_times", "total_login_days",
	"register_time", "last_login_time", "tf_medium", "updated_at",
}

// RoleRepository 角色数据访问接口
type RoleRepository interface {
	GetByRoleID(roleID string) (*models.Role, error)
	ListExistingIDs(roleIDs []string) (map[string]struct{}, error)
	UpsertBatch(roles []models.Role) error
	Upsert(role *models.Role) error
	IncrementRecharge(roleID string, amount models.Money, times int) error
	UpdateLastLogin(accountID string, loginTime time.Time) (int64, error)
	SetCpsBinding(roleID, cpsGroup string, visible bool) error
	ListAdmin(filter RoleListFilter) ([]models.Role, int64, error)
	CountRegisteredBetween(from, to time.Time) (int64, error)
	CountActiveBetween(from, to time.Time) (int64, error)
}

// GormRoleRepository GORM 实现
type GormRoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository 创建角色仓库
func NewRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// GetByRoleID 根据业务键获取角色
func (r *GormRoleRepository) GetByRoleID(roleID string) (*models.Role, error) {
	var role models.Role
	if err := r.db.Where("role_id = ?", roleID).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// ListExistingIDs 批量查询已存在的角色业务键
func (r *GormRoleRepository) ListExistingIDs(roleIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(roleIDs))
	if len(roleIDs) == 0 {
		return existing, nil
	}
	var found []string
	if err := r.db.Model(&models.Role{}).
		Where("role_id IN ?", roleIDs).
		Pluck("role_id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// UpsertBatch 事务内批量 upsert。冲突键为 role_id，更新仅覆盖同步列。
func (r *GormRoleRepository) UpsertBatch(roles []models.Role) error {
	if len(roles) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}},
			DoUpdates: clause.AssignmentColumns(roleSyncColumns),
		}).Create(&roles).Error
	})
}

// Upsert 单行 upsert，批量失败后的逐行回退路径
func (r *GormRoleRepository) Upsert(role *models.Role) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role_id"}},
		DoUpdates: clause.AssignmentColumns(roleSyncColumns),
	}).Create(role).Error
}

// IncrementRecharge 原子累加角色的累计充值金额与次数
func (r *GormRoleRepository) IncrementRecharge(roleID string, amount models.Money, times int) error {
	return r.db.Model(&models.Role{}).
		Where("role_id = ?", roleID).
		Updates(map[string]interface{}{
			"total_recharge_usd":   gorm.Expr("total_recharge_usd + ?", amount),
			"total_recharge_times": gorm.Expr("total_recharge_times + ?", times),
			"updated_at":           time.Now(),
		}).Error
}

// UpdateLastLogin 更新角色最后登录时间，只允许前进不允许回退
func (r *GormRoleRepository) UpdateLastLogin(accountID string, loginTime time.Time) (int64, error) {
	result := r.db.Model(&models.Role{}).
		Where("(role_id = ? OR account_id = ?)", accountID, accountID).
		Where("last_login_time IS NULL OR last_login_time < ?", loginTime).
		Updates(map[string]interface{}{
			"last_login_time": loginTime,
			"updated_at":      time.Now(),
		})
	return result.RowsAffected, result.Error
}

// SetCpsBinding 写入审核结果（同步流程之外唯一的角色归因写入口）
func (r *GormRoleRepository) SetCpsBinding(roleID, cpsGroup string, visible bool) error {
	return r.db.Model(&models.Role{}).
		Where("role_id = ?", roleID).
		Updates(map[string]interface{}{
			"cps_group":   cpsGroup,
			"cps_visible": visible,
			"updated_at":  time.Now(),
		}).Error
}

// ListAdmin 后台角色列表
func (r *GormRoleRepository) ListAdmin(filter RoleListFilter) ([]models.Role, int64, error) {
	query := r.db.Model(&models.Role{})

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("role_id LIKE ? OR role_name LIKE ?", pattern, pattern)
	}
	if filter.ServerID > 0 {
		query = query.Where("server_id = ?", filter.ServerID)
	}
	if filter.ChannelID > 0 {
		query = query.Where("channel_id = ?", filter.ChannelID)
	}
	if filter.DeviceType != "" {
		query = query.Where("device_type = ?", filter.DeviceType)
	}
	if filter.CpsGroup != "" {
		query = query.Where("cps_group = ?", filter.CpsGroup)
	}
	if filter.CpsVisible != nil {
		query = query.Where("cps_visible = ?", *filter.CpsVisible)
	}
	if filter.RegisteredFrom != nil {
		query = query.Where("register_time >= ?", *filter.RegisteredFrom)
	}
	if filter.RegisteredTo != nil {
		query = query.Where("register_time < ?", *filter.RegisteredTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var roles []models.Role
	if err := applyPagination(query.Order("register_time DESC"), filter.Page, filter.PageSize).
		Find(&roles).Error; err != nil {
		return nil, 0, err
	}
	return roles, total, nil
}

// CountRegisteredBetween 统计窗口内注册角色数
func (r *GormRoleRepository) CountRegisteredBetween(from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Role{}).
		Where("register_time >= ? AND register_time < ?", from, to).
		Count(&count).Error
	return count, err
}

// CountActiveBetween 统计窗口内有登录的角色数
func (r *GormRoleRepository) CountActiveBetween(from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Role{}).
		Where("last_login_time >= ? AND last_login_time < ?", from, to).
		Count(&count).Error
	return count, err
}
