package main

import (
	"fmt"
	"time"

	"github.com/suzaku-admin/internal/config"
	"github.com/suzaku-admin/internal/constants"
	"github.com/suzaku-admin/internal/logger"
	"github.com/suzaku-admin/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// 开发环境演示数据：若干角色、订单与一天的日报
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	yesterday := time.Now().AddDate(0, 0, -1)
	registerTime := yesterday.Add(-72 * time.Hour)
	lastLogin := yesterday.Add(20 * time.Hour)

	roles := []models.Role{
		{
			RoleID:             "seed-role-1001",
			UserID:             "u-1001",
			AccountID:          "acc-1001",
			RoleName:           "朱雀",
			RoleLevel:          42,
			VipLevel:           5,
			ServerID:           28,
			ServerName:         "S28-瑶光",
			Country:            "MY",
			DeviceType:         constants.DeviceTypeAndroid,
			ChannelID:          3,
			TotalRechargeUsd:   models.NewMoneyFromDecimal(decimal.NewFromFloat(129.90)),
			TotalRechargeTimes: 6,
			TotalLoginDays:     18,
			RegisterTime:       registerTime,
			LastLoginTime:      &lastLogin,
			TfMedium:           "Organic",
		},
		{
			RoleID:       "seed-role-1002",
			UserID:       "u-1002",
			AccountID:    "acc-1002",
			RoleName:     "玄武",
			RoleLevel:    7,
			ServerID:     29,
			ServerName:   "S29-天枢",
			Country:      "TH",
			DeviceType:   constants.DeviceTypeIOS,
			ChannelID:    1,
			RegisterTime: yesterday,
			TfMedium:     "WA_CPS_link_007",
		},
	}
	for i := range roles {
		if err := models.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}},
			DoNothing: true,
		}).Create(&roles[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed role: %v", err)
		}
	}

	orders := []models.Order{
		{
			OrderID:        "seed-order-9001",
			RoleID:         "seed-role-1001",
			RoleName:       "朱雀",
			RoleLevel:      42,
			ServerID:       28,
			ServerName:     "S28-瑶光",
			Country:        "MY",
			DeviceType:     constants.DeviceTypeAndroid,
			ChannelID:      3,
			GoodsID:        "gift_pack_648",
			PayAmountUsd:   models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			CurrencyType:   "MYR",
			CurrencyAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(469.00)),
			RechargeType:   constants.RechargeTypeCash,
			PayChannel:     constants.PayChannelGoogle,
			PayTime:        yesterday.Add(14 * time.Hour),
		},
		{
			OrderID:      "seed-order-9002",
			RoleID:       "seed-role-1001",
			GoodsID:      "gift_pack_30",
			PayAmountUsd: models.NewMoneyFromDecimal(decimal.NewFromFloat(4.99)),
			RechargeType: constants.RechargeTypeCash,
			PayChannel:   constants.PayChannelApple,
			IsSandbox:    true,
			PayTime:      yesterday.Add(15 * time.Hour),
		},
	}
	for i := range orders {
		if err := models.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).Create(&orders[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed order: %v", err)
		}
	}

	stat := models.DailyStat{
		StatDate:      yesterday.Truncate(24 * time.Hour),
		NewPlayers:    1,
		ActivePlayers: 1,
		PaidPlayers:   1,
		TotalRevenue:  models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
		TotalOrders:   1,
	}
	if err := models.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stat_date"}},
		DoNothing: true,
	}).Create(&stat).Error; err != nil {
		stdLog.Fatalf("Failed to seed daily stat: %v", err)
	}

	fmt.Println("演示数据写入完成")
}
