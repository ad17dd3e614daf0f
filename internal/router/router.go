package router

import (
	"fmt"
	"strings"

	"github.com/suzaku-admin/internal/cache"
	"github.com/suzaku-admin/internal/config"
	adminhandlers "github.com/suzaku-admin/internal/http/handlers/admin"
	"github.com/suzaku-admin/internal/logger"
	"github.com/suzaku-admin/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sz"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				// 账号
				authorized.GET("/me", adminHandler.GetAdminInfo)
				authorized.PUT("/password", adminHandler.ChangeAdminPassword)

				// 仪表盘与日报
				authorized.GET("/dashboard/overview", adminHandler.GetAdminDashboard)
				authorized.GET("/daily-stats", adminHandler.GetAdminDailyStats)
				authorized.POST("/daily-stats/rebuild", adminHandler.RebuildAdminDailyStat)

				// 角色与订单
				authorized.GET("/roles", adminHandler.GetAdminRoles)
				authorized.GET("/roles/:role_id", adminHandler.GetAdminRole)
				authorized.GET("/roles/:role_id/behavior", adminHandler.GetAdminRoleBehavior)
				authorized.GET("/orders", adminHandler.GetAdminOrders)

				// CPS 绑定审核
				authorized.GET("/binding-applies", adminHandler.GetAdminBindingApplies)
				authorized.POST("/binding-applies", adminHandler.CreateAdminBindingApply)
				authorized.POST("/binding-applies/:id/review", adminHandler.ReviewAdminBindingApply)

				// 同步管理
				authorized.GET("/sync/status", adminHandler.GetSyncStatus)
				authorized.GET("/sync/logs", adminHandler.GetSyncLogs)
				authorized.POST("/sync/trigger", adminHandler.TriggerSync)
				authorized.POST("/sync/backfill", adminHandler.TriggerBackfill)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
