package repository

import "time"

// RoleListFilter 查询角色列表的过滤条件
type RoleListFilter struct {
	Page           int
	PageSize       int
	Keyword        string // 角色ID/角色名模糊匹配
	ServerID       int
	ChannelID      int
	DeviceType     string
	CpsGroup       string
	CpsVisible     *bool
	RegisteredFrom *time.Time
	RegisteredTo   *time.Time
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page           int
	PageSize       int
	OrderID        string
	RoleID         string
	ServerID       int
	RechargeType   string
	PayChannel     string
	IncludeSandbox bool
	PayTimeFrom    *time.Time
	PayTimeTo      *time.Time
}

// BindingApplyListFilter 查询绑定申请列表的过滤条件
type BindingApplyListFilter struct {
	Page     int
	PageSize int
	Status   string
	RoleID   string
	CpsGroup string
}
