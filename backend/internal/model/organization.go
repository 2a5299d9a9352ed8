package model

import "shiftcare/backend/internal/swap"

// Organization 租户组织，对应 organizations 表
type Organization struct {
	OrganizationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"organization_id"`
	Name           string `gorm:"type:varchar(200);not null"                     json:"name"`
	SoftDeleteModel
}

// TableName 表名
func (Organization) TableName() string { return "organizations" }

// OrganizationMember 组织成员，对应 organization_members 表
type OrganizationMember struct {
	OrganizationID string    `gorm:"type:uuid;primaryKey"                     json:"organization_id"`
	StaffID        string    `gorm:"type:uuid;primaryKey"                     json:"staff_id"`
	Role           swap.Role `gorm:"type:varchar(20);not null;default:'staff'" json:"role"` // owner | admin | staff
	IsActive       bool      `gorm:"not null;default:true"                    json:"is_active"`
	BaseModel

	// 关联
	Staff *Staff `gorm:"foreignKey:StaffID;references:StaffID" json:"staff,omitempty"`
}

// TableName 表名
func (OrganizationMember) TableName() string { return "organization_members" }
