package model

// Staff 员工，对应 staff 表
type Staff struct {
	StaffID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"staff_id"`
	Name      string  `gorm:"type:varchar(200);not null"                     json:"name"`
	Email     string  `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone     *string `gorm:"type:varchar(50)"                               json:"phone,omitempty"`
	AvatarURL *string `gorm:"type:text"                                      json:"avatar_url,omitempty"`
	SoftDeleteModel
}

// TableName 表名
func (Staff) TableName() string { return "staff" }
