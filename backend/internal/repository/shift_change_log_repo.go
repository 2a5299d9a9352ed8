package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftcare/backend/internal/model"
)

// ShiftChangeLogRepository 班次变更审计数据访问
type ShiftChangeLogRepository interface {
	BatchCreate(ctx context.Context, logs []model.ShiftChangeLog) error
	ListByShift(ctx context.Context, shiftID string) ([]model.ShiftChangeLog, error)
}

type shiftChangeLogRepo struct {
	db *gorm.DB
}

// NewShiftChangeLogRepo 创建 ShiftChangeLogRepository
func NewShiftChangeLogRepo(db *gorm.DB) ShiftChangeLogRepository {
	return &shiftChangeLogRepo{db: db}
}

func (r *shiftChangeLogRepo) BatchCreate(ctx context.Context, logs []model.ShiftChangeLog) error {
	if len(logs) == 0 {
		return nil
	}
	return getDB(ctx, r.db).Create(&logs).Error
}

func (r *shiftChangeLogRepo) ListByShift(ctx context.Context, shiftID string) ([]model.ShiftChangeLog, error) {
	var logs []model.ShiftChangeLog
	err := getDB(ctx, r.db).
		Where("shift_id = ?", shiftID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
