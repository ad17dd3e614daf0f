package repository

import (
	"github.com/suzaku-admin/internal/models"

	"gorm.io/gorm"
)

// SyncLogRepository 同步日志数据访问接口
type SyncLogRepository interface {
	Append(log *models.SyncLog) error
	ListRecent(limit int) ([]models.SyncLog, error)
	ListByStage(stage string, limit int) ([]models.SyncLog, error)
}

// GormSyncLogRepository GORM 实现
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewSyncLogRepository 创建同步日志仓库
func NewSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

// Append 追加一条同步记录，只增不改
func (r *GormSyncLogRepository) Append(log *models.SyncLog) error {
	return r.db.Create(log).Error
}

// ListRecent 最近的同步记录，倒序
func (r *GormSyncLogRepository) ListRecent(limit int) ([]models.SyncLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var logs []models.SyncLog
	err := r.db.Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// ListByStage 按阶段筛选最近的同步记录
func (r *GormSyncLogRepository) ListByStage(stage string, limit int) ([]models.SyncLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var logs []models.SyncLog
	err := r.db.Where("stage = ?", stage).
		Order("id DESC").Limit(limit).
		Find(&logs).Error
	return logs, err
}
