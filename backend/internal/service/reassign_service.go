package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/repository"
	"shiftcare/backend/internal/swap"
)

// ── Reassignment errors ──

var (
	ErrShiftOwnershipChanged = errors.New("shift changed hands after the swap was requested")
	ErrSwapMissingTarget     = errors.New("approved swap has no target staff")
)

// ReassignService 对已批准的换班执行班次调整
//
// 执行时审批已提交；失败只记录日志留待人工处理，不会回滚审批。
type ReassignService interface {
	HandleApproved(ctx context.Context, ev swap.Event) error
}

type reassignService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReassignService 创建 ReassignService
func NewReassignService(repo *repository.Repository, logger *zap.Logger) ReassignService {
	return &reassignService{repo: repo, logger: logger}
}

func (s *reassignService) HandleApproved(ctx context.Context, ev swap.Event) error {
	if ev.Type != swap.EventApproved {
		return nil
	}
	if ev.TargetStaffID == "" {
		s.logger.Error("swap reassignment skipped", zap.String("swap_request_id", ev.SwapRequestID), zap.Error(ErrSwapMissingTarget))
		return ErrSwapMissingTarget
	}

	err := s.repo.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		original, err := s.repo.Shift.GetByID(txCtx, ev.OriginalShiftID)
		if err != nil {
			return fmt.Errorf("load original shift: %w", err)
		}
		if original.StaffID != ev.RequesterID {
			return fmt.Errorf("original shift %s: %w", original.ShiftID, ErrShiftOwnershipChanged)
		}

		var target *model.Shift
		if ev.TargetShiftID != "" {
			target, err = s.repo.Shift.GetByID(txCtx, ev.TargetShiftID)
			if err != nil {
				return fmt.Errorf("load target shift: %w", err)
			}
			if target.StaffID != ev.TargetStaffID {
				return fmt.Errorf("target shift %s: %w", target.ShiftID, ErrShiftOwnershipChanged)
			}
		}

		if err := s.repo.Shift.Reassign(txCtx, original, ev.TargetStaffID); err != nil {
			return fmt.Errorf("reassign original shift: %w", err)
		}
		swapID := ev.SwapRequestID
		operator := ev.ActorID
		logs := []model.ShiftChangeLog{{
			OrganizationID:  ev.OrganizationID,
			ShiftID:         original.ShiftID,
			SwapRequestID:   &swapID,
			PreviousStaffID: ev.RequesterID,
			NewStaffID:      ev.TargetStaffID,
			ChangeType:      model.ChangeTypeSwap,
			OperatorID:      &operator,
			CreatedAt:       ev.OccurredAt,
		}}

		if target != nil {
			if err := s.repo.Shift.Reassign(txCtx, target, ev.RequesterID); err != nil {
				return fmt.Errorf("reassign target shift: %w", err)
			}
			logs = append(logs, model.ShiftChangeLog{
				OrganizationID:  ev.OrganizationID,
				ShiftID:         target.ShiftID,
				SwapRequestID:   &swapID,
				PreviousStaffID: ev.TargetStaffID,
				NewStaffID:      ev.RequesterID,
				ChangeType:      model.ChangeTypeSwap,
				OperatorID:      &operator,
				CreatedAt:       ev.OccurredAt,
			})
		}

		if err := s.repo.ShiftChangeLog.BatchCreate(txCtx, logs); err != nil {
			return fmt.Errorf("write shift change logs: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("swap reassignment failed",
			zap.String("swap_request_id", ev.SwapRequestID),
			zap.String("original_shift_id", ev.OriginalShiftID),
			zap.String("target_shift_id", ev.TargetShiftID),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("swap reassigned",
		zap.String("swap_request_id", ev.SwapRequestID),
		zap.String("requester_id", ev.RequesterID),
		zap.String("target_staff_id", ev.TargetStaffID),
	)
	return nil
}
