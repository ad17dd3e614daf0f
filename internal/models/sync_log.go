package models

import (
	"time"
)

// SyncLog 同步运行日志表（仅追加，不修改不删除）
type SyncLog struct {
	ID           uint      `gorm:"primarykey" json:"id"`                 // 主键
	Source       string    `gorm:"index;not null" json:"source"`         // 数据来源（thinkingdata）
	Stage        string    `gorm:"index" json:"stage,omitempty"`         // 同步阶段（roles/orders/last_login/daily_stat/behavior）
	TargetDate   string    `gorm:"index" json:"target_date"`             // 目标日期或日期范围
	Status       string    `gorm:"index;not null" json:"status"`         // success / failed
	RecordCount  int       `gorm:"not null;default:0" json:"record_count"` // 处理记录数
	DurationMs   int64     `gorm:"not null;default:0" json:"duration_ms"`  // 耗时（毫秒）
	ErrorMessage string    `json:"error_message,omitempty"`              // 失败原因
	CreatedAt    time.Time `gorm:"index" json:"created_at"`              // 创建时间
}

// TableName 指定表名
func (SyncLog) TableName() string {
	return "sync_logs"
}
