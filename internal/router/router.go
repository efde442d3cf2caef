package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/course-feed/internal/config"
	"github.com/stemsi/course-feed/internal/handler"
	"github.com/stemsi/course-feed/internal/middleware"
	"github.com/stemsi/course-feed/internal/response"
	"github.com/stemsi/course-feed/internal/service"
)

// Public catalog responses may be cached briefly by clients and proxies.
const publicMaxAge = 60

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Schedule *handler.ScheduleHandler
	Admin    *handler.AdminHandler
	WS       *handler.WSHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background goroutines owned by middleware.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(log), gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", middleware.NoStore(), handlers.System.Health)

	// ─── 1. Public Catalog (Rate Limited) ──────────────────────────────
	publicLimiter := middleware.NewRateLimiter(ctx, 120, time.Minute)

	publicAPI := router.Group("/api/v1")
	publicAPI.Use(publicLimiter.Middleware(), middleware.CacheControl(publicMaxAge))
	{
		publicAPI.GET("/schedule", handlers.Schedule.GetSchedule)
		publicAPI.GET("/subjects", handlers.Schedule.ListSubjects)
		publicAPI.GET("/courses", handlers.Schedule.ListCourses)
		publicAPI.GET("/courses/:subject/:code", handlers.Schedule.GetCourse)
	}

	// ─── 2. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminWSAuth(authService))
	{
		ws.GET("/ingest/progress", handlers.WS.IngestProgressStream)
	}

	// ─── 3. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService), middleware.NoStore())
	{
		adminAPI.POST("/refresh", handlers.Admin.RequestRefresh)
		adminAPI.POST("/refresh/now", handlers.Admin.RunRefresh)
		adminAPI.GET("/runs", handlers.Admin.ListRuns)

		// System Monitoring
		adminAPI.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	return router
}
