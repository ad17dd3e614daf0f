package models

import (
	"time"
)

// UserBehaviorStat 用户行为日统计表（同步自事件视图的按日聚合）
type UserBehaviorStat struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                                      // 主键
	UserID        string     `gorm:"not null;uniqueIndex:uk_behavior_user_event_date,priority:1" json:"user_id"`    // 数数 #user_id
	EventName     string     `gorm:"not null;uniqueIndex:uk_behavior_user_event_date,priority:2" json:"event_name"` // 事件名
	EventDate     time.Time  `gorm:"not null;uniqueIndex:uk_behavior_user_event_date,priority:3" json:"event_date"` // 事件日期
	EventCount    int64      `gorm:"not null;default:0" json:"event_count"`                                     // 当日事件次数
	LastEventTime *time.Time `json:"last_event_time,omitempty"`                                                 // 当日最后一次事件时间
	Source        string     `gorm:"index" json:"source"`                                                       // 数据来源
	CreatedAt     time.Time  `json:"created_at"`                                                                // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`                                                                // 更新时间
}

// TableName 指定表名
func (UserBehaviorStat) TableName() string {
	return "user_behavior_stats"
}
