// Package notify turns swap lifecycle events into notification rows for the
// counterpart of each transition and pushes them to connected clients.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/realtime"
	"shiftcare/backend/internal/repository"
	"shiftcare/backend/internal/swap"
)

// FrameNotification is the realtime frame type carrying a notification.
const FrameNotification = "notification"

// Pusher delivers frames to online staff.
type Pusher interface {
	SendTo(staffID string, frame realtime.Frame)
}

type template struct {
	kind  string
	title string
	body  string
}

var templates = map[string]template{
	model.NotificationSwapCreated:          {model.NotificationSwapCreated, "New shift swap request", "A colleague asked you to take one of their shifts."},
	model.NotificationSwapAccepted:         {model.NotificationSwapAccepted, "Swap request accepted", "Your swap request was accepted and is awaiting admin approval."},
	model.NotificationSwapAwaitingApproval: {model.NotificationSwapAwaitingApproval, "Swap awaiting approval", "A shift swap was accepted and needs your approval."},
	model.NotificationSwapDeclined:         {model.NotificationSwapDeclined, "Swap request declined", "Your swap request was declined."},
	model.NotificationSwapApproved:         {model.NotificationSwapApproved, "Swap approved", "The shift swap was approved by an administrator."},
	model.NotificationSwapRejected:         {model.NotificationSwapRejected, "Swap rejected", "The shift swap was rejected by an administrator."},
	model.NotificationSwapCancelled:        {model.NotificationSwapCancelled, "Swap request cancelled", "A swap request involving you was cancelled."},
}

const expiredBody = "The swap request expired because the shift has already started."

// Notifier is an event handler; its failures never reach the transition.
type Notifier struct {
	notifications repository.NotificationRepository
	members       repository.MemberRepository
	pusher        Pusher
	logger        *zap.Logger
}

// NewNotifier creates a Notifier; pusher may be nil.
func NewNotifier(repo *repository.Repository, pusher Pusher, logger *zap.Logger) *Notifier {
	return &Notifier{
		notifications: repo.Notification,
		members:       repo.Member,
		pusher:        pusher,
		logger:        logger,
	}
}

// Handle builds, stores and pushes the notifications for ev.
func (n *Notifier) Handle(ctx context.Context, ev swap.Event) error {
	rows, err := n.build(ctx, ev)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	if err := n.notifications.BatchCreate(ctx, rows); err != nil {
		return fmt.Errorf("insert notifications for %s: %w", ev.Type, err)
	}

	n.logger.Debug("notifications created",
		zap.String("type", string(ev.Type)),
		zap.String("swap_request_id", ev.SwapRequestID),
		zap.Int("count", len(rows)),
	)

	if n.pusher != nil {
		for i := range rows {
			n.pusher.SendTo(rows[i].StaffID, realtime.Frame{Type: FrameNotification, Data: rows[i]})
		}
	}
	return nil
}

// recipient pairs a staff member with the notification kind they receive.
type recipient struct {
	staffID string
	kind    string
}

func (n *Notifier) recipients(ctx context.Context, ev swap.Event) ([]recipient, error) {
	var out []recipient
	add := func(staffID, kind string) {
		if staffID != "" {
			out = append(out, recipient{staffID: staffID, kind: kind})
		}
	}

	switch ev.Type {
	case swap.EventCreated:
		add(ev.TargetStaffID, model.NotificationSwapCreated)
	case swap.EventAccepted:
		add(ev.RequesterID, model.NotificationSwapAccepted)
		admins, err := n.members.ListAdmins(ctx, ev.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("list organization admins: %w", err)
		}
		for _, m := range admins {
			add(m.StaffID, model.NotificationSwapAwaitingApproval)
		}
	case swap.EventDeclined:
		add(ev.RequesterID, model.NotificationSwapDeclined)
	case swap.EventApproved:
		add(ev.RequesterID, model.NotificationSwapApproved)
		add(ev.TargetStaffID, model.NotificationSwapApproved)
	case swap.EventRejected:
		add(ev.RequesterID, model.NotificationSwapRejected)
		add(ev.TargetStaffID, model.NotificationSwapRejected)
	case swap.EventCancelled:
		add(ev.TargetStaffID, model.NotificationSwapCancelled)
		if ev.ActorID == "" {
			add(ev.RequesterID, model.NotificationSwapCancelled)
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}

	// the actor never notifies themselves; one row per staff and kind
	seen := make(map[recipient]struct{}, len(out))
	filtered := out[:0]
	for _, r := range out {
		if r.staffID == ev.ActorID {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

func (n *Notifier) build(ctx context.Context, ev swap.Event) ([]model.Notification, error) {
	recipients, err := n.recipients(ctx, ev)
	if err != nil {
		return nil, err
	}

	rows := make([]model.Notification, 0, len(recipients))
	for _, r := range recipients {
		tpl := templates[r.kind]
		body := tpl.body
		if ev.Type == swap.EventCancelled && ev.ActorID == "" {
			body = expiredBody
		}
		data := model.JSONMap{
			"swap_request_id":   ev.SwapRequestID,
			"original_shift_id": ev.OriginalShiftID,
			"event":             string(ev.Type),
		}
		if ev.TargetShiftID != "" {
			data["target_shift_id"] = ev.TargetShiftID
		}
		if ev.Notes != "" {
			data["notes"] = ev.Notes
		}
		rows = append(rows, model.Notification{
			OrganizationID: ev.OrganizationID,
			StaffID:        r.staffID,
			Type:           tpl.kind,
			Title:          tpl.title,
			Body:           body,
			Data:           data,
			CreatedAt:      ev.OccurredAt,
		})
	}
	return rows, nil
}
