package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftcare/backend/config"
	"shiftcare/backend/internal/api/handler"
	"shiftcare/backend/internal/api/middleware"
	"shiftcare/backend/internal/swap"
	"shiftcare/backend/pkg/jwt"
)

const maxBodyBytes = 1 << 20

// Setup 构建 gin 引擎；Redis 不可用时 blacklist 与 limiter 可为 nil
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, blacklist middleware.TokenBlacklist, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", h.Health.Check)

	adminOnly := middleware.RoleAuth(swap.RoleOwner, swap.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// browsers cannot send headers on the upgrade request
		v1.GET("/ws", middleware.QueryTokenAuth(jwtMgr, blacklist), h.Realtime.Connect)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		authorized.Use(middleware.RateLimit(limiter, cfg.Swap.RateLimit, cfg.Swap.RateLimitWindow))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			swaps := authorized.Group("/swap-requests")
			{
				swaps.POST("", h.Swap.Create)
				swaps.GET("", h.Swap.List)
				swaps.GET("/pending-admin", adminOnly, h.Swap.ListPendingAdmin)
				swaps.GET("/:id", h.Swap.Get)
				swaps.POST("/:id/respond", h.Swap.Respond)
				swaps.POST("/:id/resolve", adminOnly, h.Swap.Resolve)
				swaps.POST("/:id/cancel", h.Swap.Cancel)
			}

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}

			shifts := authorized.Group("/shifts")
			{
				shifts.GET("/me", h.Shift.ListMine)
				shifts.GET("/me/calendar.ics", h.Shift.Calendar)
			}

			export := authorized.Group("/export")
			{
				export.GET("/swaps", adminOnly, h.Export.ExportSwaps)
			}
		}
	}

	return r
}
