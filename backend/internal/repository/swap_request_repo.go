package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/swap"
	pkgerrors "shiftcare/backend/pkg/errors"
)

// SwapRequestFilter 列表条件，空字段忽略
type SwapRequestFilter struct {
	OrganizationID string
	Status         swap.Status
	AdminStatus    swap.AdminStatus
	// InvolvingStaffID 只保留该员工为申请人或目标的记录
	InvolvingStaffID string
	// VisibleToStaffID 额外包含公开申请
	VisibleToStaffID string
}

// SwapTransition 条件流转写入的列
type SwapTransition struct {
	To            swap.State
	TargetStaffID *string // set only when an open offer is claimed
	RespondedAt   *time.Time
	RespondedBy   *string
	ResolvedAt    *time.Time
	ResolvedBy    *string
	AdminNotes    *string
	UpdatedAt     time.Time
}

// SwapRequestRepository 换班申请数据访问
type SwapRequestRepository interface {
	Create(ctx context.Context, req *model.ShiftSwapRequest) error
	GetByID(ctx context.Context, id string) (*model.ShiftSwapRequest, error)
	GetDetail(ctx context.Context, id string) (*model.ShiftSwapRequest, error)
	List(ctx context.Context, filter SwapRequestFilter, offset, limit int) ([]model.ShiftSwapRequest, int64, error)
	HasOpenForShift(ctx context.Context, shiftID string) (bool, error)
	// Transition 仅当记录仍处于 from 状态时更新，
	// 竞争失败返回 pkgerrors.ErrConditionFailed
	Transition(ctx context.Context, id string, from swap.State, t SwapTransition) error
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]model.ShiftSwapRequest, error)
	ListForExport(ctx context.Context, organizationID string, from, to time.Time) ([]model.ShiftSwapRequest, error)
}

type swapRequestRepo struct {
	db *gorm.DB
}

// NewSwapRequestRepo 创建 SwapRequestRepository
func NewSwapRequestRepo(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepo{db: db}
}

func (r *swapRequestRepo) Create(ctx context.Context, req *model.ShiftSwapRequest) error {
	return translateError(getDB(ctx, r.db).Create(req).Error)
}

func (r *swapRequestRepo) GetByID(ctx context.Context, id string) (*model.ShiftSwapRequest, error) {
	var req model.ShiftSwapRequest
	err := getDB(ctx, r.db).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// withDetails 预加载详情读模型；班次不受软删除过滤，历史记录仍可展示
func withDetails(db *gorm.DB) *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }
	return db.
		Preload("Requester", unscoped).
		Preload("TargetStaff", unscoped).
		Preload("OriginalShift", unscoped).
		Preload("OriginalShift.Sector", unscoped).
		Preload("TargetShift", unscoped).
		Preload("TargetShift.Sector", unscoped)
}

func (r *swapRequestRepo) GetDetail(ctx context.Context, id string) (*model.ShiftSwapRequest, error) {
	var req model.ShiftSwapRequest
	err := withDetails(getDB(ctx, r.db)).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *swapRequestRepo) List(ctx context.Context, filter SwapRequestFilter, offset, limit int) ([]model.ShiftSwapRequest, int64, error) {
	var reqs []model.ShiftSwapRequest
	var total int64

	db := getDB(ctx, r.db).Model(&model.ShiftSwapRequest{})
	if filter.OrganizationID != "" {
		db = db.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.AdminStatus != "" {
		db = db.Where("admin_status = ?", filter.AdminStatus)
	}
	if filter.InvolvingStaffID != "" {
		db = db.Where("(requester_id = ? OR target_staff_id = ?)", filter.InvolvingStaffID, filter.InvolvingStaffID)
	}
	if filter.VisibleToStaffID != "" {
		db = db.Where("(requester_id = ? OR target_staff_id = ? OR target_staff_id IS NULL)",
			filter.VisibleToStaffID, filter.VisibleToStaffID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := withDetails(db).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}

func (r *swapRequestRepo) HasOpenForShift(ctx context.Context, shiftID string) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).
		Model(&model.ShiftSwapRequest{}).
		Where("original_shift_id = ?", shiftID).
		Where("(status = ? OR (status = ? AND admin_status = ?))",
			swap.StatusPending, swap.StatusAccepted, swap.AdminPendingAdmin).
		Count(&count).Error
	return count > 0, err
}

func (r *swapRequestRepo) Transition(ctx context.Context, id string, from swap.State, t SwapTransition) error {
	updates := map[string]interface{}{
		"status":       t.To.Status,
		"admin_status": t.To.AdminStatus,
		"updated_at":   t.UpdatedAt,
	}
	if t.TargetStaffID != nil {
		updates["target_staff_id"] = *t.TargetStaffID
	}
	if t.RespondedAt != nil {
		updates["responded_at"] = *t.RespondedAt
	}
	if t.RespondedBy != nil {
		updates["responded_by"] = *t.RespondedBy
	}
	if t.ResolvedAt != nil {
		updates["resolved_at"] = *t.ResolvedAt
	}
	if t.ResolvedBy != nil {
		updates["resolved_by"] = *t.ResolvedBy
	}
	if t.AdminNotes != nil {
		updates["admin_notes"] = *t.AdminNotes
	}

	result := getDB(ctx, r.db).
		Model(&model.ShiftSwapRequest{}).
		Where("id = ? AND status = ? AND admin_status = ?", id, from.Status, from.AdminStatus).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrConditionFailed
	}
	return nil
}

func (r *swapRequestRepo) ListExpirable(ctx context.Context, now time.Time, limit int) ([]model.ShiftSwapRequest, error) {
	var reqs []model.ShiftSwapRequest
	err := getDB(ctx, r.db).
		Joins("JOIN shifts ON shifts.shift_id = shift_swap_requests.original_shift_id").
		Where("shift_swap_requests.status = ? AND shift_swap_requests.admin_status = ?",
			swap.StatusPending, swap.AdminPendingStaff).
		Where("shifts.starts_at <= ?", now).
		Order("shifts.starts_at ASC").
		Limit(limit).
		Find(&reqs).Error
	return reqs, err
}

func (r *swapRequestRepo) ListForExport(ctx context.Context, organizationID string, from, to time.Time) ([]model.ShiftSwapRequest, error) {
	var reqs []model.ShiftSwapRequest
	err := withDetails(getDB(ctx, r.db)).
		Where("organization_id = ? AND created_at >= ? AND created_at < ?", organizationID, from, to).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}
