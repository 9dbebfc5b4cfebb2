package router

import (
	"fmt"
	"strings"

	"github.com/ecomatch/internal/cache"
	"github.com/ecomatch/internal/config"
	adminhandlers "github.com/ecomatch/internal/http/handlers/admin"
	publichandlers "github.com/ecomatch/internal/http/handlers/public"
	"github.com/ecomatch/internal/logger"
	"github.com/ecomatch/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/管理分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "em"
	}
	redisClient := cache.Client()
	matchRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:match", redisPrefix),
		WindowSeconds: cfg.Security.MatchRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.MatchRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.MatchRateLimit.BlockSeconds,
		Message:       "too many matching requests",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公告侧接口
		announcements := apiV1.Group("/announcements")
		{
			announcements.PUT("/:id/criteria", publicHandler.UpsertCriteria)
			announcements.GET("/:id/criteria", publicHandler.GetCriteria)
			announcements.POST("/:id/matching/run", RateLimitMiddleware(redisClient, matchRule, KeyByIP), publicHandler.RunMatching)
			announcements.POST("/:id/matching/cancel", publicHandler.CancelMatching)
		}

		// 配送员侧接口
		deliverers := apiV1.Group("/deliverers")
		{
			deliverers.GET("/:id/preferences", publicHandler.GetPreferences)
			deliverers.PUT("/:id/preferences", publicHandler.UpsertPreferences)
		}

		// 撮合候选接口
		matches := apiV1.Group("/matches")
		{
			matches.GET("", publicHandler.ListMatches)
			matches.GET("/:id", publicHandler.GetMatch)
			matches.POST("/:id/respond", RateLimitMiddleware(redisClient, matchRule, KeyByIP), publicHandler.RespondMatch)
		}

		// 管理端接口（鉴权由上游网关负责）
		admin := apiV1.Group("/admin")
		{
			admin.GET("/matching/stats", adminHandler.GetMatchingStats)
			admin.POST("/announcements/:id/matching/cancel", adminHandler.CancelMatching)
			admin.PUT("/announcements/:id/criteria", adminHandler.UpsertCriteria)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
