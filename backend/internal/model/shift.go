package model

import "time"

// Shift 排班班次，对应 shifts 表
type Shift struct {
	ShiftID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	OrganizationID string    `gorm:"type:uuid;not null"                             json:"organization_id"`
	SectorID       *string   `gorm:"type:uuid"                                      json:"sector_id,omitempty"`
	StaffID        string    `gorm:"type:uuid;not null"                             json:"staff_id"`
	StartsAt       time.Time `gorm:"not null"                                       json:"starts_at"`
	EndsAt         time.Time `gorm:"not null"                                       json:"ends_at"`
	Notes          *string   `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	// 关联
	Sector *Sector `gorm:"foreignKey:SectorID;references:SectorID" json:"sector,omitempty"`
	Staff  *Staff  `gorm:"foreignKey:StaffID;references:StaffID"   json:"staff,omitempty"`
}

// TableName 表名
func (Shift) TableName() string { return "shifts" }

// HasStarted 班次是否已开始
func (s *Shift) HasStarted(now time.Time) bool {
	return !s.StartsAt.After(now)
}
