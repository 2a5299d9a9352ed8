package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"shiftcare/backend/pkg/response"
)

// Pinger 由 *sql.DB 实现
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler 存活探针
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler 创建 HealthHandler，db 可为 nil
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			response.ServiceUnavailable(c, "database unavailable")
			return
		}
	}
	response.OK(c, gin.H{"status": "ok"})
}
