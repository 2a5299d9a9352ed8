package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shiftcare/backend/internal/model"
)

// NotificationRepository 通知数据访问
type NotificationRepository interface {
	BatchCreate(ctx context.Context, notifications []model.Notification) error
	ListByStaff(ctx context.Context, staffID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, staffID string) (int64, error)
	// MarkRead 通知不存在或不属于该员工时返回 gorm.ErrRecordNotFound
	MarkRead(ctx context.Context, id, staffID string, at time.Time) error
	MarkAllRead(ctx context.Context, staffID string, at time.Time) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) BatchCreate(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return getDB(ctx, r.db).Create(&notifications).Error
}

func (r *notificationRepo) ListByStaff(ctx context.Context, staffID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	db := getDB(ctx, r.db).Model(&model.Notification{}).Where("staff_id = ?", staffID)
	if unreadOnly {
		db = db.Where("NOT is_read")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, staffID string) (int64, error) {
	var count int64
	err := getDB(ctx, r.db).
		Model(&model.Notification{}).
		Where("staff_id = ? AND NOT is_read", staffID).
		Count(&count).Error
	return count, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, staffID string, at time.Time) error {
	var n model.Notification
	err := getDB(ctx, r.db).
		Where("notification_id = ? AND staff_id = ?", id, staffID).
		First(&n).Error
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return getDB(ctx, r.db).
		Model(&model.Notification{}).
		Where("notification_id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, staffID string, at time.Time) (int64, error) {
	result := getDB(ctx, r.db).
		Model(&model.Notification{}).
		Where("staff_id = ? AND NOT is_read", staffID).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected, result.Error
}
