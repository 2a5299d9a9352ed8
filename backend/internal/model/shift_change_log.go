package model

import "time"

// 班次变更类型
const (
	ChangeTypeSwap = "swap"
)

// ShiftChangeLog 班次调整审计记录，对应 shift_change_logs 表
type ShiftChangeLog struct {
	ChangeLogID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"change_log_id"`
	OrganizationID  string    `gorm:"type:uuid;not null"                             json:"organization_id"`
	ShiftID         string    `gorm:"type:uuid;not null"                             json:"shift_id"`
	SwapRequestID   *string   `gorm:"type:uuid"                                      json:"swap_request_id,omitempty"`
	PreviousStaffID string    `gorm:"type:uuid;not null"                             json:"previous_staff_id"`
	NewStaffID      string    `gorm:"type:uuid;not null"                             json:"new_staff_id"`
	ChangeType      string    `gorm:"type:varchar(20);not null;default:'swap'"       json:"change_type"`
	OperatorID      *string   `gorm:"type:uuid"                                      json:"operator_id,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 表名
func (ShiftChangeLog) TableName() string { return "shift_change_logs" }
