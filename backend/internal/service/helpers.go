package service

import (
	"fmt"
	"time"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/swap"
)

const dateLayout = "2006-01-02"

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// persistenceError 同时保留存储错误与 swap.ErrPersistence，均可 errors.Is
func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, swap.ErrPersistence, err)
}

// parseWindow 解析可选的 YYYY-MM-DD 区间；to 含当天，返回的结束时间不含
func parseWindow(from, to string, defFrom time.Time, defDays int, maxDays int) (time.Time, time.Time, error) {
	start := defFrom
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from", ErrInvalidDateRange)
		}
		start = t
	}
	end := start.AddDate(0, 0, defDays)
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to", ErrInvalidDateRange)
		}
		end = t.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to precedes from", ErrInvalidDateRange)
	}
	if end.Sub(start) > time.Duration(maxDays)*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: window exceeds %d days", ErrInvalidDateRange, maxDays)
	}
	return start, end, nil
}

func toStaffBrief(s *model.Staff) *dto.StaffBrief {
	if s == nil {
		return nil
	}
	return &dto.StaffBrief{ID: s.StaffID, Name: s.Name, AvatarURL: s.AvatarURL}
}

func toSectorBrief(s *model.Sector) *dto.SectorBrief {
	if s == nil {
		return nil
	}
	return &dto.SectorBrief{ID: s.SectorID, Name: s.Name, Color: s.Color}
}

func toShiftBrief(s *model.Shift) *dto.ShiftBrief {
	if s == nil {
		return nil
	}
	return &dto.ShiftBrief{
		ID:       s.ShiftID,
		StaffID:  s.StaffID,
		StartsAt: formatTime(s.StartsAt),
		EndsAt:   formatTime(s.EndsAt),
		Sector:   toSectorBrief(s.Sector),
	}
}

func toSwapRequestResponse(r *model.ShiftSwapRequest) *dto.SwapRequestResponse {
	resp := &dto.SwapRequestResponse{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		Status:         string(r.Status),
		AdminStatus:    string(r.AdminStatus),
		IsOpenOffer:    r.TargetStaffID == nil,
		Requester:      toStaffBrief(r.Requester),
		TargetStaff:    toStaffBrief(r.TargetStaff),
		OriginalShift:  toShiftBrief(r.OriginalShift),
		TargetShift:    toShiftBrief(r.TargetShift),
		RequesterNotes: r.RequesterNotes,
		AdminNotes:     r.AdminNotes,
		RespondedAt:    formatTimePtr(r.RespondedAt),
		RespondedBy:    r.RespondedBy,
		ResolvedAt:     formatTimePtr(r.ResolvedAt),
		ResolvedBy:     r.ResolvedBy,
		CreatedAt:      formatTime(r.CreatedAt),
		UpdatedAt:      formatTime(r.UpdatedAt),
	}
	// 未加载关联时退回只返回 ID
	if resp.Requester == nil {
		resp.Requester = &dto.StaffBrief{ID: r.RequesterID}
	}
	if resp.TargetStaff == nil && r.TargetStaffID != nil {
		resp.TargetStaff = &dto.StaffBrief{ID: *r.TargetStaffID}
	}
	if resp.OriginalShift == nil {
		resp.OriginalShift = &dto.ShiftBrief{ID: r.OriginalShiftID}
	}
	if resp.TargetShift == nil && r.TargetShiftID != nil {
		resp.TargetShift = &dto.ShiftBrief{ID: *r.TargetShiftID}
	}
	return resp
}
