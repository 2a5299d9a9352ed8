package dto

// NotificationListRequest 通知列表筛选
type NotificationListRequest struct {
	UnreadOnly bool `form:"unread_only"`
	PaginationRequest
}

// NotificationResponse 通知条目
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *string                `json:"read_at,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

// NotificationListResponse 通知列表及未读数
type NotificationListResponse struct {
	List        []NotificationResponse `json:"list"`
	Total       int64                  `json:"total"`
	UnreadCount int64                  `json:"unread_count"`
	Page        int                    `json:"page"`
	PageSize    int                    `json:"page_size"`
}

// MarkAllReadResponse 受影响行数
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
