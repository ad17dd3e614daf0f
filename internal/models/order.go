package models

import (
	"time"
)

// Order 充值订单表（同步自 recharge_complete 事件，业务键 order_id）
type Order struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                       // 主键
	OrderID        string    `gorm:"uniqueIndex;not null" json:"order_id"`                       // 游戏订单号（全局唯一，业务键）
	RoleID         string    `gorm:"index;not null" json:"role_id"`                              // 所属角色 role_id
	RoleName       string    `json:"role_name,omitempty"`                                        // 下单时角色名
	RoleLevel      int       `json:"role_level,omitempty"`                                       // 下单时角色等级
	ServerID       int       `gorm:"index;not null" json:"server_id"`                            // 区服ID
	ServerName     string    `json:"server_name,omitempty"`                                      // 区服名
	Country        string    `json:"country,omitempty"`                                          // 国家/地区
	DeviceType     string    `json:"device_type,omitempty"`                                      // 设备类型
	ChannelID      int       `json:"channel_id,omitempty"`                                       // 渠道ID
	GoodsID        string    `json:"goods_id,omitempty"`                                         // 商品ID
	PayAmountUsd   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"pay_amount_usd"` // 支付金额（USD）
	CurrencyType   string    `json:"currency_type,omitempty"`                                    // 原始币种
	CurrencyAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"currency_amount"` // 原始币种金额
	RechargeType   string    `gorm:"index" json:"recharge_type,omitempty"`                       // 充值类型（cash/points/voucher）
	PayChannel     string    `gorm:"index" json:"pay_channel,omitempty"`                         // 支付渠道（google_pay 等）
	IsSandbox      bool      `gorm:"not null;default:false;index" json:"is_sandbox"`             // 沙盒订单标记
	PayTime        time.Time `gorm:"index" json:"pay_time"`                                      // 支付时间
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                                 // 更新时间
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
