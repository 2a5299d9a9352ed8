package dto

// MyShiftsRequest 班次查询窗口，日期格式 YYYY-MM-DD
type MyShiftsRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}

// ShiftResponse 班次条目
type ShiftResponse struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id"`
	StaffID        string       `json:"staff_id"`
	StartsAt       string       `json:"starts_at"`
	EndsAt         string       `json:"ends_at"`
	Notes          *string      `json:"notes,omitempty"`
	Sector         *SectorBrief `json:"sector,omitempty"`
	Version        int          `json:"version"`
}
