package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/service"
	"shiftcare/backend/pkg/response"
)

// NotificationHandler 站内通知接口
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// List GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.NotificationListRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.notificationSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// MarkRead PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 18001, "notification not found")
			return
		}
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// MarkAllRead PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.notificationSvc.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
