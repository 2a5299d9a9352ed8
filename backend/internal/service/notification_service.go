package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/repository"
	"shiftcare/backend/internal/swap"
)

// ── Notification errors ──

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService 当前员工的通知收件箱
type NotificationService interface {
	List(ctx context.Context, actor swap.Actor, req *dto.NotificationListRequest) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, actor swap.Actor, id string) error
	MarkAllRead(ctx context.Context, actor swap.Actor) (*dto.MarkAllReadResponse, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService 创建 NotificationService
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger, now: time.Now}
}

func (s *notificationService) List(ctx context.Context, actor swap.Actor, req *dto.NotificationListRequest) (*dto.NotificationListResponse, error) {
	rows, total, err := s.repo.Notification.ListByStaff(ctx, actor.StaffID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("staff_id", actor.StaffID), zap.Error(err))
		return nil, err
	}
	unread, err := s.repo.Notification.CountUnread(ctx, actor.StaffID)
	if err != nil {
		s.logger.Warn("count unread notifications failed", zap.String("staff_id", actor.StaffID), zap.Error(err))
		unread = 0
	}

	list := make([]dto.NotificationResponse, 0, len(rows))
	for i := range rows {
		list = append(list, toNotificationResponse(&rows[i]))
	}
	return &dto.NotificationListResponse{
		List:        list,
		Total:       total,
		UnreadCount: unread,
		Page:        req.GetPage(),
		PageSize:    req.GetPageSize(),
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor swap.Actor, id string) error {
	err := s.repo.Notification.MarkRead(ctx, id, actor.StaffID, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("mark notification read failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor swap.Actor) (*dto.MarkAllReadResponse, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, actor.StaffID, s.now())
	if err != nil {
		s.logger.Error("mark all notifications read failed", zap.String("staff_id", actor.StaffID), zap.Error(err))
		return nil, err
	}
	return &dto.MarkAllReadResponse{Updated: n}, nil
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.NotificationID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    formatTimePtr(n.ReadAt),
		CreatedAt: formatTime(n.CreatedAt),
	}
}
