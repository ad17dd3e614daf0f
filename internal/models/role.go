package models

import (
	"time"
)

// Role 游戏角色表（同步自数数用户视图，业务键 role_id）
type Role struct {
	ID                 uint       `gorm:"primarykey" json:"id"`                                         // 主键
	RoleID             string     `gorm:"uniqueIndex;not null" json:"role_id"`                          // 角色ID（平台分配，业务键）
	UserID             string     `gorm:"index" json:"user_id,omitempty"`                               // 数数 #user_id
	AccountID          string     `gorm:"index" json:"account_id,omitempty"`                            // SDK 账号ID
	RoleName           string     `json:"role_name,omitempty"`                                          // 角色名
	RoleLevel          int        `gorm:"not null;default:1" json:"role_level"`                         // 角色等级
	VipLevel           int        `gorm:"not null;default:0" json:"vip_level"`                          // VIP 等级
	ServerID           int        `gorm:"index;not null" json:"server_id"`                              // 区服ID
	ServerName         string     `json:"server_name,omitempty"`                                        // 区服名
	Country            string     `json:"country,omitempty"`                                            // 国家/地区
	DeviceType         string     `json:"device_type,omitempty"`                                        // 设备类型（Android/iOS/unknown）
	ChannelID          int        `gorm:"index" json:"channel_id,omitempty"`                            // 渠道ID
	TotalRechargeUsd   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_recharge_usd"` // 累计充值金额（USD）
	TotalRechargeTimes int        `gorm:"not null;default:0" json:"total_recharge_times"`               // 累计充值次数
	TotalLoginDays     int        `gorm:"not null;default:0" json:"total_login_days"`                   // 累计登录天数
	RegisterTime       time.Time  `gorm:"index" json:"register_time"`                                   // 注册时间
	LastLoginTime      *time.Time `gorm:"index" json:"last_login_time"`                                 // 最后登录时间
	TfMedium           string     `json:"tf_medium,omitempty"`                                          // 归因媒介
	CpsGroup           string     `gorm:"index" json:"cps_group,omitempty"`                             // CPS 归因分组（审核流写入）
	CpsVisible         bool       `gorm:"not null;default:false;index" json:"cps_visible"`              // CPS 可见标记（仅审核流可改）
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt          time.Time  `json:"updated_at"`                                                   // 更新时间
}

// TableName 指定表名
func (Role) TableName() string {
	return "roles"
}
