package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/repository"
	"shiftcare/backend/internal/swap"
	pkgerrors "shiftcare/backend/pkg/errors"
)

// EventPublisher 将生命周期事件交给异步消费者，Publish 不得阻塞
type EventPublisher interface {
	Publish(ev swap.Event) bool
}

// SwapService 换班申请生命周期
type SwapService interface {
	Create(ctx context.Context, actor swap.Actor, req *dto.CreateSwapRequest) (*dto.SwapRequestResponse, error)
	Respond(ctx context.Context, actor swap.Actor, id string, req *dto.RespondSwapRequest) (*dto.SwapRequestResponse, error)
	ResolveAdmin(ctx context.Context, actor swap.Actor, id string, req *dto.ResolveSwapRequest) (*dto.SwapRequestResponse, error)
	Cancel(ctx context.Context, actor swap.Actor, id string) (*dto.SwapRequestResponse, error)
	Get(ctx context.Context, actor swap.Actor, id string) (*dto.SwapRequestResponse, error)
	List(ctx context.Context, actor swap.Actor, req *dto.SwapRequestListRequest) ([]dto.SwapRequestResponse, int64, error)
	ListPendingAdmin(ctx context.Context, actor swap.Actor, req *dto.PaginationRequest) ([]dto.SwapRequestResponse, int64, error)
	// ExpireStale 取消原班次已开始的待处理申请
	ExpireStale(ctx context.Context, limit int) (int, error)
}

type swapService struct {
	repo      *repository.Repository
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewSwapService 创建 SwapService
func NewSwapService(repo *repository.Repository, publisher EventPublisher, logger *zap.Logger) SwapService {
	return &swapService{repo: repo, publisher: publisher, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *swapService) Create(ctx context.Context, actor swap.Actor, req *dto.CreateSwapRequest) (*dto.SwapRequestResponse, error) {
	now := s.now()

	shift, err := s.repo.Shift.GetByID(ctx, req.OriginalShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, swap.ErrShiftNotFound
		}
		s.logger.Error("load original shift failed", zap.String("shift_id", req.OriginalShiftID), zap.Error(err))
		return nil, persistenceError("load original shift", err)
	}
	if shift.OrganizationID != actor.OrganizationID {
		return nil, swap.ErrShiftNotFound
	}
	if shift.StaffID != actor.StaffID {
		return nil, swap.ErrNotEligible
	}
	if shift.HasStarted(now) {
		return nil, swap.ErrShiftAlreadyStarted
	}

	open, err := s.repo.SwapRequest.HasOpenForShift(ctx, shift.ShiftID)
	if err != nil {
		s.logger.Error("check open swap failed", zap.String("shift_id", shift.ShiftID), zap.Error(err))
		return nil, persistenceError("check open swap", err)
	}
	if open {
		return nil, swap.ErrShiftUnderOpenSwap
	}

	if err := s.checkTargets(ctx, actor, shift, req, now); err != nil {
		return nil, err
	}

	state := swap.NewState()
	record := &model.ShiftSwapRequest{
		OrganizationID:  actor.OrganizationID,
		RequesterID:     actor.StaffID,
		TargetStaffID:   req.TargetStaffID,
		OriginalShiftID: shift.ShiftID,
		TargetShiftID:   req.TargetShiftID,
		Status:          state.Status,
		AdminStatus:     state.AdminStatus,
		RequesterNotes:  req.Notes,
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := s.repo.SwapRequest.Create(ctx, record); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, swap.ErrShiftUnderOpenSwap
		}
		s.logger.Error("create swap request failed", zap.String("shift_id", shift.ShiftID), zap.Error(err))
		return nil, persistenceError("create swap request", err)
	}

	s.logger.Info("swap request created",
		zap.String("id", record.ID),
		zap.String("requester_id", actor.StaffID),
		zap.Bool("open_offer", record.TargetStaffID == nil),
	)
	s.publish(record.Event(swap.EventCreated, actor.StaffID, now))

	return s.reload(ctx, record), nil
}

// checkTargets 校验可选的目标员工与目标班次
func (s *swapService) checkTargets(ctx context.Context, actor swap.Actor, original *model.Shift, req *dto.CreateSwapRequest, now time.Time) error {
	if req.TargetStaffID != nil {
		target := *req.TargetStaffID
		if target == actor.StaffID {
			return fmt.Errorf("%w: cannot target yourself", swap.ErrInvalidTarget)
		}
		if _, err := s.repo.Member.GetActive(ctx, actor.OrganizationID, target); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: target staff is not an active member", swap.ErrInvalidTarget)
			}
			s.logger.Error("load target member failed", zap.String("staff_id", target), zap.Error(err))
			return persistenceError("load target member", err)
		}
	}

	if req.TargetShiftID == nil {
		return nil
	}
	if *req.TargetShiftID == original.ShiftID {
		return fmt.Errorf("%w: target shift equals original shift", swap.ErrInvalidTarget)
	}
	ts, err := s.repo.Shift.GetByID(ctx, *req.TargetShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: target shift not found", swap.ErrInvalidTarget)
		}
		s.logger.Error("load target shift failed", zap.String("shift_id", *req.TargetShiftID), zap.Error(err))
		return persistenceError("load target shift", err)
	}
	if ts.OrganizationID != actor.OrganizationID {
		return fmt.Errorf("%w: target shift not found", swap.ErrInvalidTarget)
	}
	if ts.StaffID == actor.StaffID {
		return fmt.Errorf("%w: target shift is your own", swap.ErrInvalidTarget)
	}
	if req.TargetStaffID != nil && ts.StaffID != *req.TargetStaffID {
		return fmt.Errorf("%w: target shift does not belong to target staff", swap.ErrInvalidTarget)
	}
	if ts.HasStarted(now) {
		return fmt.Errorf("%w: target shift has already started", swap.ErrInvalidTarget)
	}
	return nil
}

// ────────────────────── Respond ──────────────────────

func (s *swapService) Respond(ctx context.Context, actor swap.Actor, id string, req *dto.RespondSwapRequest) (*dto.SwapRequestResponse, error) {
	decision, err := swap.ParseDecision(req.Decision)
	if err != nil {
		return nil, err
	}

	record, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkResponder(ctx, actor, record); err != nil {
		return nil, err
	}

	from := record.State()
	to, err := from.Respond(decision)
	if err != nil {
		return nil, err
	}

	now := s.now()
	t := repository.SwapTransition{
		To:          to,
		RespondedAt: &now,
		RespondedBy: &actor.StaffID,
		UpdatedAt:   now,
	}
	claim := record.TargetStaffID == nil && decision == swap.DecisionAccept
	if claim {
		t.TargetStaffID = &actor.StaffID
	}

	if err := s.transition(ctx, record, from, t); err != nil {
		return nil, err
	}
	if claim {
		record.TargetStaffID = &actor.StaffID
		record.TargetStaff = nil
	}
	record.RespondedAt = &now
	record.RespondedBy = &actor.StaffID

	s.logger.Info("swap request answered",
		zap.String("id", record.ID),
		zap.String("decision", string(decision)),
		zap.String("staff_id", actor.StaffID),
	)
	s.publish(record.Event(swap.EventForResponse(decision), actor.StaffID, now))

	return s.reload(ctx, record), nil
}

// checkResponder 资格校验；公开申请的响应人须为在职成员且拥有指定的目标班次
func (s *swapService) checkResponder(ctx context.Context, actor swap.Actor, record *model.ShiftSwapRequest) error {
	p := record.Participants()
	if err := p.CheckResponder(actor.StaffID); err != nil {
		return err
	}
	if !p.IsOpenOffer() {
		return nil
	}

	if _, err := s.repo.Member.GetActive(ctx, record.OrganizationID, actor.StaffID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return swap.ErrNotEligible
		}
		s.logger.Error("load responder membership failed", zap.String("staff_id", actor.StaffID), zap.Error(err))
		return persistenceError("load responder membership", err)
	}

	if record.TargetShiftID == nil {
		return nil
	}
	ts, err := s.repo.Shift.GetByID(ctx, *record.TargetShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return swap.ErrNotEligible
		}
		s.logger.Error("load target shift failed", zap.String("shift_id", *record.TargetShiftID), zap.Error(err))
		return persistenceError("load target shift", err)
	}
	if ts.StaffID != actor.StaffID {
		return swap.ErrNotEligible
	}
	return nil
}

// ────────────────────── ResolveAdmin ──────────────────────

func (s *swapService) ResolveAdmin(ctx context.Context, actor swap.Actor, id string, req *dto.ResolveSwapRequest) (*dto.SwapRequestResponse, error) {
	decision, err := swap.ParseAdminDecision(req.Decision)
	if err != nil {
		return nil, err
	}

	record, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeAdmin(ctx, record.OrganizationID, actor); err != nil {
		return nil, err
	}

	from := record.State()
	to, err := from.Resolve(decision)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if to.Executed() {
		if err := s.checkNotStarted(ctx, record.OriginalShiftID, now); err != nil {
			return nil, err
		}
	}

	t := repository.SwapTransition{
		To:         to,
		ResolvedAt: &now,
		ResolvedBy: &actor.StaffID,
		AdminNotes: req.Notes,
		UpdatedAt:  now,
	}
	if err := s.transition(ctx, record, from, t); err != nil {
		return nil, err
	}
	record.ResolvedAt = &now
	record.ResolvedBy = &actor.StaffID
	if req.Notes != nil {
		record.AdminNotes = req.Notes
	}

	s.logger.Info("swap request resolved",
		zap.String("id", record.ID),
		zap.String("decision", string(decision)),
		zap.String("admin_id", actor.StaffID),
	)
	s.publish(record.Event(swap.EventForResolution(decision), actor.StaffID, now))

	return s.reload(ctx, record), nil
}

// checkNotStarted 原班次已开始时禁止批准，驳回不受影响
func (s *swapService) checkNotStarted(ctx context.Context, shiftID string, now time.Time) error {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return swap.ErrShiftNotFound
		}
		s.logger.Error("load original shift failed", zap.String("shift_id", shiftID), zap.Error(err))
		return persistenceError("load original shift", err)
	}
	if shift.HasStarted(now) {
		return swap.ErrShiftAlreadyStarted
	}
	return nil
}

// authorizeAdmin 核对成员表，而非只看令牌角色
func (s *swapService) authorizeAdmin(ctx context.Context, organizationID string, actor swap.Actor) error {
	member, err := s.repo.Member.GetActive(ctx, organizationID, actor.StaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return swap.ErrNotAuthorized
		}
		s.logger.Error("load admin membership failed", zap.String("staff_id", actor.StaffID), zap.Error(err))
		return persistenceError("load admin membership", err)
	}
	if !member.Role.CanResolve() {
		return swap.ErrNotAuthorized
	}
	return nil
}

// ────────────────────── Cancel ──────────────────────

func (s *swapService) Cancel(ctx context.Context, actor swap.Actor, id string) (*dto.SwapRequestResponse, error) {
	record, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := record.Participants().CheckCanceller(actor); err != nil {
		return nil, err
	}

	from := record.State()
	to, err := from.Cancel()
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.transition(ctx, record, from, repository.SwapTransition{To: to, UpdatedAt: now}); err != nil {
		return nil, err
	}

	s.logger.Info("swap request cancelled", zap.String("id", record.ID), zap.String("staff_id", actor.StaffID))
	s.publish(record.Event(swap.EventCancelled, actor.StaffID, now))

	return s.reload(ctx, record), nil
}

// ────────────────────── ExpireStale ──────────────────────

func (s *swapService) ExpireStale(ctx context.Context, limit int) (int, error) {
	now := s.now()
	stale, err := s.repo.SwapRequest.ListExpirable(ctx, now, limit)
	if err != nil {
		s.logger.Error("list expirable swap requests failed", zap.Error(err))
		return 0, persistenceError("list expirable swap requests", err)
	}

	expired := 0
	for i := range stale {
		record := &stale[i]
		from := record.State()
		to, err := from.Cancel()
		if err != nil {
			continue
		}
		err = s.transition(ctx, record, from, repository.SwapTransition{To: to, UpdatedAt: now})
		if errors.Is(err, swap.ErrInvalidState) {
			// answered between the scan and the update
			continue
		}
		if err != nil {
			return expired, err
		}
		expired++
		s.publish(record.Event(swap.EventCancelled, "", now))
	}

	if expired > 0 {
		s.logger.Info("stale swap requests expired", zap.Int("count", expired))
	}
	return expired, nil
}

// ────────────────────── Get / List ──────────────────────

func (s *swapService) Get(ctx context.Context, actor swap.Actor, id string) (*dto.SwapRequestResponse, error) {
	record, err := s.repo.SwapRequest.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, swap.ErrNotFound
		}
		s.logger.Error("load swap request failed", zap.String("id", id), zap.Error(err))
		return nil, persistenceError("load swap request", err)
	}
	if record.OrganizationID != actor.OrganizationID {
		return nil, swap.ErrNotFound
	}

	p := record.Participants()
	if !actor.Role.CanResolve() && !p.Involves(actor.StaffID) && !p.IsOpenOffer() {
		return nil, swap.ErrNotEligible
	}
	return toSwapRequestResponse(record), nil
}

func (s *swapService) List(ctx context.Context, actor swap.Actor, req *dto.SwapRequestListRequest) ([]dto.SwapRequestResponse, int64, error) {
	filter := repository.SwapRequestFilter{
		OrganizationID: actor.OrganizationID,
		Status:         swap.Status(req.Status),
		AdminStatus:    swap.AdminStatus(req.AdminStatus),
	}
	switch {
	case req.Mine:
		filter.InvolvingStaffID = actor.StaffID
	case !actor.Role.CanResolve():
		filter.VisibleToStaffID = actor.StaffID
	}
	return s.list(ctx, filter, &req.PaginationRequest)
}

func (s *swapService) ListPendingAdmin(ctx context.Context, actor swap.Actor, req *dto.PaginationRequest) ([]dto.SwapRequestResponse, int64, error) {
	if err := s.authorizeAdmin(ctx, actor.OrganizationID, actor); err != nil {
		return nil, 0, err
	}
	filter := repository.SwapRequestFilter{
		OrganizationID: actor.OrganizationID,
		Status:         swap.StatusAccepted,
		AdminStatus:    swap.AdminPendingAdmin,
	}
	return s.list(ctx, filter, req)
}

func (s *swapService) list(ctx context.Context, filter repository.SwapRequestFilter, page *dto.PaginationRequest) ([]dto.SwapRequestResponse, int64, error) {
	records, total, err := s.repo.SwapRequest.List(ctx, filter, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("list swap requests failed", zap.Error(err))
		return nil, 0, persistenceError("list swap requests", err)
	}
	result := make([]dto.SwapRequestResponse, 0, len(records))
	for i := range records {
		result = append(result, *toSwapRequestResponse(&records[i]))
	}
	return result, total, nil
}

// ────────────────────── helpers ──────────────────────

// load 读取操作人所在组织内的申请
func (s *swapService) load(ctx context.Context, actor swap.Actor, id string) (*model.ShiftSwapRequest, error) {
	record, err := s.repo.SwapRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, swap.ErrNotFound
		}
		s.logger.Error("load swap request failed", zap.String("id", id), zap.Error(err))
		return nil, persistenceError("load swap request", err)
	}
	if record.OrganizationID != actor.OrganizationID {
		return nil, swap.ErrNotFound
	}
	return record, nil
}

// transition 持久化状态变更并回写 record，竞争失败表现为 swap.ErrInvalidState
func (s *swapService) transition(ctx context.Context, record *model.ShiftSwapRequest, from swap.State, t repository.SwapTransition) error {
	err := s.repo.SwapRequest.Transition(ctx, record.ID, from, t)
	if errors.Is(err, pkgerrors.ErrConditionFailed) {
		s.logger.Info("swap transition lost to a concurrent writer",
			zap.String("id", record.ID),
			zap.String("from_status", string(from.Status)),
			zap.String("from_admin_status", string(from.AdminStatus)),
		)
		return fmt.Errorf("%w: request changed concurrently", swap.ErrInvalidState)
	}
	if err != nil {
		s.logger.Error("update swap request failed", zap.String("id", record.ID), zap.Error(err))
		return persistenceError("update swap request", err)
	}
	record.Status = t.To.Status
	record.AdminStatus = t.To.AdminStatus
	record.UpdatedAt = t.UpdatedAt
	return nil
}

func (s *swapService) publish(ev swap.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ev)
}

// reload 返回详情读模型；流转已提交，查询失败时退回内存中的记录
func (s *swapService) reload(ctx context.Context, record *model.ShiftSwapRequest) *dto.SwapRequestResponse {
	detail, err := s.repo.SwapRequest.GetDetail(ctx, record.ID)
	if err != nil {
		s.logger.Warn("reload swap request failed", zap.String("id", record.ID), zap.Error(err))
		return toSwapRequestResponse(record)
	}
	return toSwapRequestResponse(detail)
}
