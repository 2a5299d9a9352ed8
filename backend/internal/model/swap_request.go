package model

import (
	"time"

	"shiftcare/backend/internal/swap"
)

// ShiftSwapRequest 换班申请，对应 shift_swap_requests 表
type ShiftSwapRequest struct {
	ID              string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"    json:"id"`
	OrganizationID  string           `gorm:"type:uuid;not null"                                json:"organization_id"`
	RequesterID     string           `gorm:"type:uuid;not null"                                json:"requester_id"`
	TargetStaffID   *string          `gorm:"type:uuid"                                         json:"target_staff_id,omitempty"` // nil = open offer
	OriginalShiftID string           `gorm:"type:uuid;not null"                                json:"original_shift_id"`
	TargetShiftID   *string          `gorm:"type:uuid"                                         json:"target_shift_id,omitempty"` // nil = giveaway
	Status          swap.Status      `gorm:"type:varchar(20);not null;default:'pending'"       json:"status"`
	AdminStatus     swap.AdminStatus `gorm:"type:varchar(20);not null;default:'pending_staff'" json:"admin_status"`
	RequesterNotes  *string          `gorm:"type:text"                                         json:"requester_notes,omitempty"`
	AdminNotes      *string          `gorm:"type:text"                                         json:"admin_notes,omitempty"`
	RespondedAt     *time.Time       `json:"responded_at,omitempty"`
	RespondedBy     *string          `gorm:"type:uuid"                                         json:"responded_by,omitempty"`
	ResolvedAt      *time.Time       `json:"resolved_at,omitempty"`
	ResolvedBy      *string          `gorm:"type:uuid"                                         json:"resolved_by,omitempty"`
	BaseModel

	// 关联
	Requester     *Staff `gorm:"foreignKey:RequesterID;references:StaffID"     json:"requester,omitempty"`
	TargetStaff   *Staff `gorm:"foreignKey:TargetStaffID;references:StaffID"   json:"target_staff,omitempty"`
	OriginalShift *Shift `gorm:"foreignKey:OriginalShiftID;references:ShiftID" json:"original_shift,omitempty"`
	TargetShift   *Shift `gorm:"foreignKey:TargetShiftID;references:ShiftID"   json:"target_shift,omitempty"`
}

// TableName 表名
func (ShiftSwapRequest) TableName() string { return "shift_swap_requests" }

// State 返回两条状态轴
func (r *ShiftSwapRequest) State() swap.State {
	return swap.State{Status: r.Status, AdminStatus: r.AdminStatus}
}

// Participants 返回资格校验所需的参与方
func (r *ShiftSwapRequest) Participants() swap.Participants {
	p := swap.Participants{RequesterID: r.RequesterID}
	if r.TargetStaffID != nil {
		p.TargetStaffID = *r.TargetStaffID
	}
	return p
}

// Event 为本申请的一次状态流转构造事件
func (r *ShiftSwapRequest) Event(t swap.EventType, actorID string, at time.Time) swap.Event {
	ev := swap.Event{
		Type:            t,
		SwapRequestID:   r.ID,
		OrganizationID:  r.OrganizationID,
		RequesterID:     r.RequesterID,
		OriginalShiftID: r.OriginalShiftID,
		ActorID:         actorID,
		OccurredAt:      at,
	}
	if r.TargetStaffID != nil {
		ev.TargetStaffID = *r.TargetStaffID
	}
	if r.TargetShiftID != nil {
		ev.TargetShiftID = *r.TargetShiftID
	}
	switch t {
	case swap.EventCreated:
		if r.RequesterNotes != nil {
			ev.Notes = *r.RequesterNotes
		}
	case swap.EventApproved, swap.EventRejected:
		if r.AdminNotes != nil {
			ev.Notes = *r.AdminNotes
		}
	}
	return ev
}
