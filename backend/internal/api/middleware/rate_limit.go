package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"shiftcare/backend/pkg/response"
)

// RateLimiter 滑动窗口计数器
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按调用方和路由限流。已认证按员工 ID，匿名按客户端 IP；
// limiter 为 nil 或出错时放行。
func RateLimit(limiter RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		caller := c.ClientIP()
		if staffID := c.GetString(KeyStaffID); staffID != "" {
			caller = "staff:" + staffID
		}
		key := fmt.Sprintf("rate_limit:%s:%s:%s", caller, c.Request.Method, c.FullPath())

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
