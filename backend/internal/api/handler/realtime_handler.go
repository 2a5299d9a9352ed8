package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Connector 将升级后的 websocket 绑定到员工
type Connector interface {
	Serve(w http.ResponseWriter, r *http.Request, staffID string) error
}

// RealtimeHandler websocket 接口
type RealtimeHandler struct {
	hub    Connector
	logger *zap.Logger
}

// NewRealtimeHandler 创建 RealtimeHandler
func NewRealtimeHandler(hub Connector, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, logger: logger}
}

// Connect GET /api/v1/ws?token=
func (h *RealtimeHandler) Connect(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	// upgrader 会自行写入错误响应
	if err := h.hub.Serve(c.Writer, c.Request, actor.StaffID); err != nil {
		h.logger.Debug("websocket upgrade failed", zap.String("staff_id", actor.StaffID), zap.Error(err))
	}
}
