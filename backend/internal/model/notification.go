package model

import "time"

// 通知类型常量
const (
	NotificationSwapCreated          = "swap_created"
	NotificationSwapAccepted         = "swap_accepted"
	NotificationSwapAwaitingApproval = "swap_awaiting_approval"
	NotificationSwapDeclined         = "swap_declined"
	NotificationSwapApproved         = "swap_approved"
	NotificationSwapRejected         = "swap_rejected"
	NotificationSwapCancelled        = "swap_cancelled"
)

// Notification 站内通知，对应 notifications 表
type Notification struct {
	NotificationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	OrganizationID string     `gorm:"type:uuid;not null"                             json:"organization_id"`
	StaffID        string     `gorm:"type:uuid;not null"                             json:"staff_id"`
	Type           string     `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Body           string     `gorm:"type:text;not null"                             json:"body"`
	Data           JSONMap    `gorm:"type:jsonb;not null;default:'{}'"               json:"data"`
	IsRead         bool       `gorm:"not null;default:false"                         json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 表名
func (Notification) TableName() string { return "notifications" }
