package provider

import (
	"github.com/ecomatch/internal/cache"
	"github.com/ecomatch/internal/config"
	"github.com/ecomatch/internal/logger"
	"github.com/ecomatch/internal/models"
	"github.com/ecomatch/internal/queue"
	"github.com/ecomatch/internal/repository"
	"github.com/ecomatch/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AnnouncementRepo repository.AnnouncementRepository
	DelivererRepo    repository.DelivererRepository
	CriteriaRepo     repository.CriteriaRepository
	PreferencesRepo  repository.PreferencesRepository
	MatchRepo        repository.MatchRepository
	NotificationRepo repository.NotificationRepository

	// Services
	CriteriaService     *service.CriteriaService
	PreferenceService   *service.PreferenceService
	MatchingService     *service.MatchingService
	LifecycleService    *service.LifecycleService
	StatsService        *service.StatsService
	NotificationService *service.NotificationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
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
	c.AnnouncementRepo = repository.NewAnnouncementRepository(db)
	c.DelivererRepo = repository.NewDelivererRepository(db)
	c.CriteriaRepo = repository.NewCriteriaRepository(db)
	c.PreferencesRepo = repository.NewPreferencesRepository(db)
	c.MatchRepo = repository.NewMatchRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	c.CriteriaService = service.NewCriteriaService(c.CriteriaRepo, c.AnnouncementRepo, c.Config.Matching)
	c.PreferenceService = service.NewPreferenceService(c.PreferencesRepo, c.DelivererRepo)
	c.MatchingService = service.NewMatchingService(
		c.AnnouncementRepo,
		c.DelivererRepo,
		c.MatchRepo,
		c.CriteriaService,
		c.PreferenceService,
		c.QueueClient,
		c.Config.Matching,
	)
	c.LifecycleService = service.NewLifecycleService(models.DB, c.AnnouncementRepo, c.MatchRepo, c.CriteriaRepo, c.QueueClient)
	c.StatsService = service.NewStatsService(c.MatchRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.MatchRepo, c.AnnouncementRepo)
}
