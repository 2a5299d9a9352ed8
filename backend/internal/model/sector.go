package model

// Sector 组织内的科室或病区，对应 sectors 表
type Sector struct {
	SectorID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"sector_id"`
	OrganizationID string  `gorm:"type:uuid;not null"                             json:"organization_id"`
	Name           string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Color          *string `gorm:"type:varchar(20)"                               json:"color,omitempty"`
	SoftDeleteModel
}

// TableName 表名
func (Sector) TableName() string { return "sectors" }
