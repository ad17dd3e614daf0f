package repository

import (
	"github.com/suzaku-admin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BehaviorStatRepository 用户行为统计数据访问接口
type BehaviorStatRepository interface {
	UpsertBatch(stats []models.UserBehaviorStat) error
	ListByUser(userID string, limit int) ([]models.UserBehaviorStat, error)
}

// GormBehaviorStatRepository GORM 实现
type GormBehaviorStatRepository struct {
	db *gorm.DB
}

// NewBehaviorStatRepository 创建行为统计仓库
func NewBehaviorStatRepository(db *gorm.DB) *GormBehaviorStatRepository {
	return &GormBehaviorStatRepository{db: db}
}

// UpsertBatch 批量 upsert，冲突键为 用户+事件+日期 联合键
func (r *GormBehaviorStatRepository) UpsertBatch(stats []models.UserBehaviorStat) error {
	if len(stats) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "event_name"}, {Name: "event_date"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"event_count", "last_event_time", "source", "updated_at",
			}),
		}).Create(&stats).Error
	})
}

// ListByUser 某用户最近的行为统计
func (r *GormBehaviorStatRepository) ListByUser(userID string, limit int) ([]models.UserBehaviorStat, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var stats []models.UserBehaviorStat
	err := r.db.Where("user_id = ?", userID).
		Order("event_date DESC").Limit(limit).
		Find(&stats).Error
	return stats, err
}
