package dto

// ── Swap request DTOs ──

// CreateSwapRequest 发起换班请求
type CreateSwapRequest struct {
	OriginalShiftID string  `json:"original_shift_id" binding:"required,uuid"`
	TargetShiftID   *string `json:"target_shift_id"   binding:"omitempty,uuid"`
	TargetStaffID   *string `json:"target_staff_id"   binding:"omitempty,uuid"`
	Notes           *string `json:"notes"             binding:"omitempty,max=1000"`
}

// RespondSwapRequest 目标员工的决定
type RespondSwapRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept decline"`
}

// ResolveSwapRequest 管理员的决定
type ResolveSwapRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=approve reject"`
	Notes    *string `json:"notes"    binding:"omitempty,max=1000"`
}

// SwapRequestListRequest 列表筛选
type SwapRequestListRequest struct {
	Status      string `form:"status"       binding:"omitempty,oneof=pending accepted declined cancelled"`
	AdminStatus string `form:"admin_status" binding:"omitempty,oneof=pending_staff pending_admin admin_approved admin_rejected"`
	Mine        bool   `form:"mine"`
	PaginationRequest
}

// ExportSwapsRequest 导出时间窗口，日期格式 YYYY-MM-DD
type ExportSwapsRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}

// ── Responses ──

// ShiftBrief 换班申请中的班次简要信息
type ShiftBrief struct {
	ID       string       `json:"id"`
	StaffID  string       `json:"staff_id"`
	StartsAt string       `json:"starts_at"`
	EndsAt   string       `json:"ends_at"`
	Sector   *SectorBrief `json:"sector,omitempty"`
}

// SwapRequestResponse 换班申请详情（含关联信息）
type SwapRequestResponse struct {
	ID             string      `json:"id"`
	OrganizationID string      `json:"organization_id"`
	Status         string      `json:"status"`
	AdminStatus    string      `json:"admin_status"`
	IsOpenOffer    bool        `json:"is_open_offer"`
	Requester      *StaffBrief `json:"requester,omitempty"`
	TargetStaff    *StaffBrief `json:"target_staff,omitempty"`
	OriginalShift  *ShiftBrief `json:"original_shift,omitempty"`
	TargetShift    *ShiftBrief `json:"target_shift,omitempty"`
	RequesterNotes *string     `json:"requester_notes,omitempty"`
	AdminNotes     *string     `json:"admin_notes,omitempty"`
	RespondedAt    *string     `json:"responded_at,omitempty"`
	RespondedBy    *string     `json:"responded_by,omitempty"`
	ResolvedAt     *string     `json:"resolved_at,omitempty"`
	ResolvedBy     *string     `json:"resolved_by,omitempty"`
	CreatedAt      string      `json:"created_at"`
	UpdatedAt      string      `json:"updated_at"`
}
