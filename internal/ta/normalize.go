package ta

import (
	"strings"

	"github.com/suzaku-admin/internal/constants"
)

// NormalizeDeviceType 设备类型标准化。
// 子串匹配，未识别的值原样透传，空值归为 unknown。
func NormalizeDeviceType(value string) string {
	if strings.TrimSpace(value) == "" {
		return constants.DeviceTypeUnknown
	}
	lower := strings.ToLower(value)
	if strings.Contains(lower, "android") {
		return constants.DeviceTypeAndroid
	}
	if strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") || strings.Contains(lower, "ios") {
		return constants.DeviceTypeIOS
	}
	return value
}

// NormalizeRechargeType 充值类型标准化，空值默认 cash
func NormalizeRechargeType(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.RechargeTypeCash
	}
	switch strings.ToLower(trimmed) {
	case "现金", "cash":
		return constants.RechargeTypeCash
	case "积分", "points":
		return constants.RechargeTypePoints
	case "代金券", "voucher":
		return constants.RechargeTypeVoucher
	default:
		return value
	}
}

// payChannelNames pay_type 数字编码到渠道名的映射
var payChannelNames = map[string]string{
	"1": constants.PayChannelGoogle,
	"2": constants.PayChannelApple,
	"3": constants.PayChannelPlatform,
}

// NormalizePayChannel 支付渠道标准化，未识别或缺失归为 unknown
func NormalizePayChannel(value string) string {
	if name, ok := payChannelNames[strings.TrimSpace(value)]; ok {
		return name
	}
	return constants.PayChannelUnknown
}
