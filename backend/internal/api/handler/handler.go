package handler

import (
	"go.uber.org/zap"

	"shiftcare/backend/internal/service"
)

// Handler 聚合所有 HTTP 处理器
type Handler struct {
	Swap         *SwapHandler
	Notification *NotificationHandler
	Shift        *ShiftHandler
	Export       *ExportHandler
	Auth         *AuthHandler
	Realtime     *RealtimeHandler
	Health       *HealthHandler
}

// Deps 处理器依赖的非 service 组件，Revoker 与 DB 可为 nil
type Deps struct {
	Hub     Connector
	Revoker TokenRevoker
	DB      Pinger
	Logger  *zap.Logger
}

// NewHandler 构建聚合处理器
func NewHandler(svc *service.Service, deps Deps) *Handler {
	return &Handler{
		Swap:         NewSwapHandler(svc.Swap),
		Notification: NewNotificationHandler(svc.Notification),
		Shift:        NewShiftHandler(svc.Shift),
		Export:       NewExportHandler(svc.Export),
		Auth:         NewAuthHandler(deps.Revoker, deps.Logger),
		Realtime:     NewRealtimeHandler(deps.Hub, deps.Logger),
		Health:       NewHealthHandler(deps.DB),
	}
}
