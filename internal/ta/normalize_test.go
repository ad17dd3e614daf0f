package ta

import (
	"testing"

	"github.com/suzaku-admin/internal/constants"
)

func TestNormalizeDeviceType(t *testing.T) {
	cases := map[string]string{
		"":                constants.DeviceTypeUnknown,
		"  ":              constants.DeviceTypeUnknown,
		"Android 14":      constants.DeviceTypeAndroid,
		"samsung_android": constants.DeviceTypeAndroid,
		"iPhone 15 Pro":   constants.DeviceTypeIOS,
		"iPad Air":        constants.DeviceTypeIOS,
		"iOS 17":          constants.DeviceTypeIOS,
		"Windows PC":      "Windows PC",
	}
	for in, want := range cases {
		if got := NormalizeDeviceType(in); got != want {
			t.Errorf("NormalizeDeviceType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeRechargeType(t *testing.T) {
	cases := map[string]string{
		"":        constants.RechargeTypeCash,
		"现金":      constants.RechargeTypeCash,
		"Cash":    constants.RechargeTypeCash,
		"积分":      constants.RechargeTypePoints,
		"voucher": constants.RechargeTypeVoucher,
		"补偿发放":    "补偿发放",
	}
	for in, want := range cases {
		if got := NormalizeRechargeType(in); got != want {
			t.Errorf("NormalizeRechargeType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizePayChannel(t *testing.T) {
	cases := map[string]string{
		"1":  constants.PayChannelGoogle,
		"2":  constants.PayChannelApple,
		"3":  constants.PayChannelPlatform,
		" 1": constants.PayChannelGoogle,
		"":   constants.PayChannelUnknown,
		"99": constants.PayChannelUnknown,
	}
	for in, want := range cases {
		if got := NormalizePayChannel(in); got != want {
			t.Errorf("NormalizePayChannel(%q) = %q, want %q", in, got, want)
		}
	}
}
