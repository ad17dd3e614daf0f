package repository

import (
	"errors"

	"github.com/suzaku-admin/internal/constants"
	"github.com/suzaku-admin/internal/models"

	"gorm.io/gorm"
)

// BindingApplyRepository 归因绑定申请数据访问接口
type BindingApplyRepository interface {
	Create(apply *models.BindingApply) error
	GetByID(id uint) (*models.BindingApply, error)
	Update(apply *models.BindingApply) error
	HasPending(roleID string) (bool, error)
	ListAdmin(filter BindingApplyListFilter) ([]models.BindingApply, int64, error)
}

// GormBindingApplyRepository GORM 实现
type GormBindingApplyRepository struct {
	db *gorm.DB
}

// NewBindingApplyRepository 创建绑定申请仓库
func NewBindingApplyRepository(db *gorm.DB) *GormBindingApplyRepository {
	return &GormBindingApplyRepository{db: db}
}

// Create 新建申请
func (r *GormBindingApplyRepository) Create(apply *models.BindingApply) error {
	return r.db.Create(apply).Error
}

// GetByID 根据 ID 获取申请
func (r *GormBindingApplyRepository) GetByID(id uint) (*models.BindingApply, error) {
	var apply models.BindingApply
	if err := r.db.First(&apply, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &apply, nil
}

// Update 保存审核结果
func (r *GormBindingApplyRepository) Update(apply *models.BindingApply) error {
	return r.db.Save(apply).Error
}

// HasPending 角色是否已有待审申请
func (r *GormBindingApplyRepository) HasPending(roleID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BindingApply{}).
		Where("role_id = ? AND status = ?", roleID, constants.BindingApplyStatusPending).
		Count(&count).Error
	return count > 0, err
}

// ListAdmin 后台申请列表
func (r *GormBindingApplyRepository) ListAdmin(filter BindingApplyListFilter) ([]models.BindingApply, int64, error) {
	query := r.db.Model(&models.BindingApply{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RoleID != "" {
		query = query.Where("role_id = ?", filter.RoleID)
	}
	if filter.CpsGroup != "" {
		query = query.Where("cps_group = ?", filter.CpsGroup)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var applies []models.BindingApply
	if err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).
		Find(&applies).Error; err != nil {
		return nil, 0, err
	}
	return applies, total, nil
}
