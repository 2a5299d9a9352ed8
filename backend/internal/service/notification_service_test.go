package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/model"
)

func setupNotificationService() (*notificationService, *fixture) {
	f := newFixture()
	f.notifications.rows = []model.Notification{
		{NotificationID: "n-1", StaffID: "alice", Type: model.NotificationSwapAccepted, Title: "accepted"},
		{NotificationID: "n-2", StaffID: "alice", Type: model.NotificationSwapApproved, Title: "approved"},
		{NotificationID: "n-3", StaffID: "bob", Type: model.NotificationSwapCreated, Title: "created"},
	}
	svc := &notificationService{repo: f.repo, logger: zap.NewNop(), now: f.clock}
	return svc, f
}

func TestNotificationService_List(t *testing.T) {
	svc, _ := setupNotificationService()

	resp, err := svc.List(context.Background(), alice, &dto.NotificationListRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Total != 2 || len(resp.List) != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
	if resp.UnreadCount != 2 {
		t.Errorf("unread = %d, want 2", resp.UnreadCount)
	}
	if resp.Page != 1 || resp.PageSize != 20 {
		t.Errorf("page = %d/%d, want 1/20", resp.Page, resp.PageSize)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc, f := setupNotificationService()

	if err := svc.MarkRead(context.Background(), alice, "n-1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !f.notifications.rows[0].IsRead || f.notifications.rows[0].ReadAt == nil {
		t.Error("notification not marked read")
	}

	// idempotent
	if err := svc.MarkRead(context.Background(), alice, "n-1"); err != nil {
		t.Errorf("second MarkRead: %v", err)
	}

	resp, _ := svc.List(context.Background(), alice, &dto.NotificationListRequest{UnreadOnly: true})
	if resp.Total != 1 || resp.UnreadCount != 1 {
		t.Errorf("unread list = %d/%d, want 1/1", resp.Total, resp.UnreadCount)
	}
}

func TestNotificationService_MarkRead_Foreign(t *testing.T) {
	svc, f := setupNotificationService()

	err := svc.MarkRead(context.Background(), alice, "n-3")
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("error = %v, want ErrNotificationNotFound", err)
	}
	if f.notifications.rows[2].IsRead {
		t.Error("another staff member's notification was marked read")
	}
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	svc, f := setupNotificationService()

	resp, err := svc.MarkAllRead(context.Background(), alice)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if resp.Updated != 2 {
		t.Errorf("updated = %d, want 2", resp.Updated)
	}
	if f.notifications.rows[2].IsRead {
		t.Error("bob's notification was marked read")
	}

	resp, _ = svc.MarkAllRead(context.Background(), alice)
	if resp.Updated != 0 {
		t.Errorf("second pass updated = %d, want 0", resp.Updated)
	}
}
