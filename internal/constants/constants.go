package constants

// 设备类型常量
const (
	DeviceTypeAndroid = "Android"
	DeviceTypeIOS     = "iOS"
	DeviceTypeUnknown = "unknown"
)

// 充值类型常量
const (
	RechargeTypeCash    = "cash"
	RechargeTypePoints  = "points"
	RechargeTypeVoucher = "voucher"
)

// 支付渠道常量（sdk_order_purchase.pay_type 映射）
const (
	PayChannelGoogle   = "google_pay"
	PayChannelApple    = "apple_pay"
	PayChannelPlatform = "platform_pay"
	PayChannelUnknown  = "unknown"
)

// 同步来源与状态常量
const (
	SyncSourceThinkingData = "thinkingdata"

	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// 同步阶段常量
const (
	SyncStageRoles     = "roles"
	SyncStageOrders    = "orders"
	SyncStageLastLogin = "last_login"
	SyncStageDailyStat = "daily_stat"
	SyncStageBehavior  = "behavior"
)

// 绑定申请状态常量
const (
	BindingApplyStatusPending  = "pending"
	BindingApplyStatusApproved = "approved"
	BindingApplyStatusRejected = "rejected"
)

// 异步任务类型常量
const (
	TaskSyncBackfill = "sync:backfill"
	TaskStatRebuild  = "stat:rebuild"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)
