package provider

import (
	"github.com/suzaku-admin/internal/cache"
	"github.com/suzaku-admin/internal/config"
	"github.com/suzaku-admin/internal/logger"
	"github.com/suzaku-admin/internal/models"
	"github.com/suzaku-admin/internal/queue"
	"github.com/suzaku-admin/internal/repository"
	"github.com/suzaku-admin/internal/service"
	"github.com/suzaku-admin/internal/ta"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	RoleRepo         repository.RoleRepository
	OrderRepo        repository.OrderRepository
	DailyStatRepo    repository.DailyStatRepository
	SyncLogRepo      repository.SyncLogRepository
	BindingApplyRepo repository.BindingApplyRepository
	BehaviorStatRepo repository.BehaviorStatRepository

	// Services
	AuthService      *service.AuthService
	SyncService      *service.SyncService
	StatService      *service.StatService
	SyncOrchestrator *service.SyncOrchestrator
	BindingService   *service.BindingService
	PlayerService    *service.PlayerService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.RoleRepo = repository.NewRoleRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.DailyStatRepo = repository.NewDailyStatRepository(db)
	c.SyncLogRepo = repository.NewSyncLogRepository(db)
	c.BindingApplyRepo = repository.NewBindingApplyRepository(db)
	c.BehaviorStatRepo = repository.NewBehaviorStatRepository(db)
}

func (c *Container) initServices() {
	taClient := ta.NewClient(&c.Config.ThinkingData)

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.SyncService = service.NewSyncService(c.Config, taClient, c.RoleRepo, c.OrderRepo, c.BehaviorStatRepo)
	c.StatService = service.NewStatService(c.RoleRepo, c.OrderRepo, c.DailyStatRepo)
	c.SyncOrchestrator = service.NewSyncOrchestrator(c.Config, c.SyncService, c.StatService, c.SyncLogRepo)
	c.BindingService = service.NewBindingService(c.BindingApplyRepo, c.RoleRepo)
	c.PlayerService = service.NewPlayerService(c.RoleRepo, c.OrderRepo, c.BehaviorStatRepo)
}
