package service

import (
	"go.uber.org/zap"

	"shiftcare/backend/internal/repository"
)

// Service 聚合所有 Service
type Service struct {
	Swap         SwapService
	Reassign     ReassignService
	Notification NotificationService
	Shift        ShiftService
	Export       ExportService
}

// NewService 构建聚合
func NewService(repo *repository.Repository, publisher EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		Swap:         NewSwapService(repo, publisher, logger),
		Reassign:     NewReassignService(repo, logger),
		Notification: NewNotificationService(repo, logger),
		Shift:        NewShiftService(repo, logger),
		Export:       NewExportService(repo, logger),
	}
}
