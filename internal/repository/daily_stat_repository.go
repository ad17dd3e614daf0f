package repository

import (
	"errors"
	"time"

	"github.com/suzaku-admin/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyStatRepository 日报数据访问接口
type DailyStatRepository interface {
	Replace(stat *models.DailyStat) error
	GetByDate(statDate time.Time) (*models.DailyStat, error)
	ListRange(startDate, endDate time.Time) ([]models.DailyStat, error)
}

// GormDailyStatRepository GORM 实现
type GormDailyStatRepository struct {
	db *gorm.DB
}

// NewDailyStatRepository 创建日报仓库
func NewDailyStatRepository(db *gorm.DB) *GormDailyStatRepository {
	return &GormDailyStatRepository{db: db}
}

// Replace 按日期整行覆盖，重建多少次结果都一样
func (r *GormDailyStatRepository) Replace(stat *models.DailyStat) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stat_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"new_players", "active_players", "paid_players",
			"total_revenue", "total_orders", "updated_at",
		}),
	}).Create(stat).Error
}

// GetByDate 获取某日日报
func (r *GormDailyStatRepository) GetByDate(statDate time.Time) (*models.DailyStat, error) {
	var stat models.DailyStat
	if err := r.db.Where("stat_date = ?", statDate).First(&stat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stat, nil
}

// ListRange 按日期区间列出日报，升序
func (r *GormDailyStatRepository) ListRange(startDate, endDate time.Time) ([]models.DailyStat, error) {
	var stats []models.DailyStat
	err := r.db.Where("stat_date >= ? AND stat_date <= ?", startDate, endDate).
		Order("stat_date ASC").
		Find(&stats).Error
	return stats, err
}
