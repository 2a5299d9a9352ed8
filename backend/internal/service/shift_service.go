package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/repository"
	"shiftcare/backend/internal/swap"
)

// ── Shift errors ──

var ErrInvalidDateRange = errors.New("invalid date range")

const (
	defaultShiftWindowDays = 30
	maxShiftWindowDays     = 366
	calendarProductID      = "-//shiftcare//shifts//EN"
)

// ShiftService 当前员工的班次
type ShiftService interface {
	ListMine(ctx context.Context, actor swap.Actor, req *dto.MyShiftsRequest) ([]dto.ShiftResponse, error)
	// CalendarICS 将班次渲染为 iCalendar
	CalendarICS(ctx context.Context, actor swap.Actor, req *dto.MyShiftsRequest) (string, error)
}

type shiftService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewShiftService 创建 ShiftService
func NewShiftService(repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, logger: logger, now: time.Now}
}

func (s *shiftService) listShifts(ctx context.Context, actor swap.Actor, req *dto.MyShiftsRequest) ([]model.Shift, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	from, to, err := parseWindow(req.From, req.To, today, defaultShiftWindowDays, maxShiftWindowDays)
	if err != nil {
		return nil, err
	}
	shifts, err := s.repo.Shift.ListByStaff(ctx, actor.OrganizationID, actor.StaffID, from, to)
	if err != nil {
		s.logger.Error("list shifts failed", zap.String("staff_id", actor.StaffID), zap.Error(err))
		return nil, err
	}
	return shifts, nil
}

func (s *shiftService) ListMine(ctx context.Context, actor swap.Actor, req *dto.MyShiftsRequest) ([]dto.ShiftResponse, error) {
	shifts, err := s.listShifts(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		sh := &shifts[i]
		result = append(result, dto.ShiftResponse{
			ID:             sh.ShiftID,
			OrganizationID: sh.OrganizationID,
			StaffID:        sh.StaffID,
			StartsAt:       formatTime(sh.StartsAt),
			EndsAt:         formatTime(sh.EndsAt),
			Notes:          sh.Notes,
			Sector:         toSectorBrief(sh.Sector),
			Version:        sh.Version,
		})
	}
	return result, nil
}

func (s *shiftService) CalendarICS(ctx context.Context, actor swap.Actor, req *dto.MyShiftsRequest) (string, error) {
	shifts, err := s.listShifts(ctx, actor, req)
	if err != nil {
		return "", err
	}

	stamp := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	for i := range shifts {
		sh := &shifts[i]
		event := cal.AddEvent(fmt.Sprintf("shift-%s@shiftcare", sh.ShiftID))
		event.SetDtStampTime(stamp)
		event.SetModifiedAt(sh.UpdatedAt.UTC())
		event.SetStartAt(sh.StartsAt.UTC())
		event.SetEndAt(sh.EndsAt.UTC())

		summary := "Shift"
		if sh.Sector != nil {
			summary = "Shift - " + sh.Sector.Name
			event.SetLocation(sh.Sector.Name)
		}
		event.SetSummary(summary)
		if sh.Notes != nil && *sh.Notes != "" {
			event.SetDescription(*sh.Notes)
		}
	}

	return cal.Serialize(), nil
}
