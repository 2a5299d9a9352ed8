package repository

import "gorm.io/gorm"

// Repository 聚合所有 Repository
type Repository struct {
	Tx             TxManager
	SwapRequest    SwapRequestRepository
	Shift          ShiftRepository
	Member         MemberRepository
	Notification   NotificationRepository
	ShiftChangeLog ShiftChangeLogRepository
}

// NewRepository 基于同一连接池构建聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Tx:             NewTxManager(db),
		SwapRequest:    NewSwapRequestRepo(db),
		Shift:          NewShiftRepo(db),
		Member:         NewMemberRepo(db),
		Notification:   NewNotificationRepo(db),
		ShiftChangeLog: NewShiftChangeLogRepo(db),
	}
}
