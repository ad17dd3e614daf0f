package models

import (
	"time"
)

// DailyStat 每日运营统计表（纯派生数据，可随时重建）
type DailyStat struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                     // 主键
	StatDate      time.Time `gorm:"uniqueIndex;not null" json:"stat_date"`                    // 统计日期（业务键）
	NewPlayers    int64     `gorm:"not null;default:0" json:"new_players"`                    // 新增角色数
	ActivePlayers int64     `gorm:"not null;default:0" json:"active_players"`                 // 活跃角色数
	PaidPlayers   int64     `gorm:"not null;default:0" json:"paid_players"`                   // 付费角色数（去重）
	TotalRevenue  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_revenue"` // 总收入（USD，不含沙盒）
	TotalOrders   int64     `gorm:"not null;default:0" json:"total_orders"`                   // 订单数（不含沙盒）
	CreatedAt     time.Time `json:"created_at"`                                               // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                               // 更新时间
}

// TableName 指定表名
func (DailyStat) TableName() string {
	return "daily_stats"
}
