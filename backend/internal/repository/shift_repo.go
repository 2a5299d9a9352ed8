package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shiftcare/backend/internal/model"
	pkgerrors "shiftcare/backend/pkg/errors"
)

// ShiftRepository 班次数据访问
type ShiftRepository interface {
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	ListByStaff(ctx context.Context, organizationID, staffID string, from, to time.Time) ([]model.Shift, error)
	// Reassign 在乐观锁保护下将班次转给 newStaffID
	Reassign(ctx context.Context, shift *model.Shift, newStaffID string) error
}

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo 创建 ShiftRepository
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := getDB(ctx, r.db).
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListByStaff(ctx context.Context, organizationID, staffID string, from, to time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := getDB(ctx, r.db).
		Preload("Sector").
		Where("organization_id = ? AND staff_id = ?", organizationID, staffID).
		Where("starts_at >= ? AND starts_at < ?", from, to).
		Order("starts_at ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) Reassign(ctx context.Context, shift *model.Shift, newStaffID string) error {
	oldVersion := shift.Version
	result := getDB(ctx, r.db).
		Model(&model.Shift{}).
		Where("shift_id = ? AND version = ?", shift.ShiftID, oldVersion).
		Updates(map[string]interface{}{
			"staff_id":   newStaffID,
			"updated_at": time.Now(),
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	shift.StaffID = newStaffID
	shift.Version = oldVersion + 1
	return nil
}
