package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/realtime"
	"shiftcare/backend/internal/repository"
	"shiftcare/backend/internal/swap"
)

// ── mocks ──

type mockNotificationRepo struct {
	repository.NotificationRepository
	created []model.Notification
	err     error
}

func (m *mockNotificationRepo) BatchCreate(_ context.Context, ns []model.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, ns...)
	return nil
}

type mockMemberRepo struct {
	repository.MemberRepository
	admins map[string][]model.OrganizationMember
	err    error
}

func (m *mockMemberRepo) ListAdmins(_ context.Context, orgID string) ([]model.OrganizationMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.admins[orgID], nil
}

type recordingPusher struct {
	mu     sync.Mutex
	frames map[string][]realtime.Frame
}

func (p *recordingPusher) SendTo(staffID string, f realtime.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frames == nil {
		p.frames = map[string][]realtime.Frame{}
	}
	p.frames[staffID] = append(p.frames[staffID], f)
}

func setup() (*Notifier, *mockNotificationRepo, *mockMemberRepo, *recordingPusher) {
	nr := &mockNotificationRepo{}
	mr := &mockMemberRepo{admins: map[string][]model.OrganizationMember{
		"org-1": {
			{OrganizationID: "org-1", StaffID: "admin-1", Role: swap.RoleAdmin, IsActive: true},
			{OrganizationID: "org-1", StaffID: "owner-1", Role: swap.RoleOwner, IsActive: true},
		},
	}}
	p := &recordingPusher{}
	n := NewNotifier(&repository.Repository{Notification: nr, Member: mr}, p, zap.NewNop())
	return n, nr, mr, p
}

func event(t swap.EventType, actor string) swap.Event {
	return swap.Event{
		Type:            t,
		SwapRequestID:   "swap-1",
		OrganizationID:  "org-1",
		RequesterID:     "req-1",
		TargetStaffID:   "tgt-1",
		OriginalShiftID: "shift-1",
		ActorID:         actor,
		OccurredAt:      time.Now(),
	}
}

func byStaff(ns []model.Notification) map[string]string {
	out := map[string]string{}
	for _, n := range ns {
		out[n.StaffID] = n.Type
	}
	return out
}

// ── tests ──

func TestNotifier_AcceptNotifiesRequesterAndAdmins(t *testing.T) {
	n, nr, _, p := setup()

	require.NoError(t, n.Handle(context.Background(), event(swap.EventAccepted, "tgt-1")))

	assert.Equal(t, map[string]string{
		"req-1":   model.NotificationSwapAccepted,
		"admin-1": model.NotificationSwapAwaitingApproval,
		"owner-1": model.NotificationSwapAwaitingApproval,
	}, byStaff(nr.created))
	for _, row := range nr.created {
		assert.Equal(t, "swap-1", row.Data["swap_request_id"])
		assert.Equal(t, "org-1", row.OrganizationID)
	}
	assert.Len(t, p.frames["admin-1"], 1)
	assert.Equal(t, FrameNotification, p.frames["req-1"][0].Type)
}

func TestNotifier_AcceptWithSingleAdminCreatesTwoRows(t *testing.T) {
	n, nr, mr, _ := setup()
	mr.admins["org-1"] = mr.admins["org-1"][:1]

	require.NoError(t, n.Handle(context.Background(), event(swap.EventAccepted, "tgt-1")))
	assert.Len(t, nr.created, 2)
}

func TestNotifier_AdminActorIsExcluded(t *testing.T) {
	n, nr, _, _ := setup()

	// the target is an admin accepting their own swap
	ev := event(swap.EventAccepted, "admin-1")
	ev.TargetStaffID = "admin-1"
	require.NoError(t, n.Handle(context.Background(), ev))

	_, notified := byStaff(nr.created)["admin-1"]
	assert.False(t, notified)
}

func TestNotifier_DeclineNotifiesRequesterOnly(t *testing.T) {
	n, nr, _, _ := setup()

	require.NoError(t, n.Handle(context.Background(), event(swap.EventDeclined, "tgt-1")))
	assert.Equal(t, map[string]string{"req-1": model.NotificationSwapDeclined}, byStaff(nr.created))
}

func TestNotifier_ResolutionNotifiesBothParties(t *testing.T) {
	for _, tc := range []struct {
		ev   swap.EventType
		kind string
	}{
		{swap.EventApproved, model.NotificationSwapApproved},
		{swap.EventRejected, model.NotificationSwapRejected},
	} {
		t.Run(string(tc.ev), func(t *testing.T) {
			n, nr, _, _ := setup()
			ev := event(tc.ev, "admin-1")
			ev.Notes = "ok by me"
			require.NoError(t, n.Handle(context.Background(), ev))

			assert.Equal(t, map[string]string{"req-1": tc.kind, "tgt-1": tc.kind}, byStaff(nr.created))
			assert.Equal(t, "ok by me", nr.created[0].Data["notes"])
		})
	}
}

func TestNotifier_CreatedOpenOfferNotifiesNobody(t *testing.T) {
	n, nr, _, p := setup()
	ev := event(swap.EventCreated, "req-1")
	ev.TargetStaffID = ""

	require.NoError(t, n.Handle(context.Background(), ev))
	assert.Empty(t, nr.created)
	assert.Empty(t, p.frames)
}

func TestNotifier_ExpiryNotifiesRequesterAndTarget(t *testing.T) {
	n, nr, _, _ := setup()

	require.NoError(t, n.Handle(context.Background(), event(swap.EventCancelled, "")))
	require.Len(t, nr.created, 2)
	assert.Equal(t, expiredBody, nr.created[0].Body)
}

func TestNotifier_WithdrawalNotifiesTarget(t *testing.T) {
	n, nr, _, _ := setup()

	require.NoError(t, n.Handle(context.Background(), event(swap.EventCancelled, "req-1")))
	assert.Equal(t, map[string]string{"tgt-1": model.NotificationSwapCancelled}, byStaff(nr.created))
}

func TestNotifier_StorageFailureIsReturnedAndNothingPushed(t *testing.T) {
	n, nr, _, p := setup()
	nr.err = errors.New("insert failed")

	err := n.Handle(context.Background(), event(swap.EventDeclined, "tgt-1"))
	assert.Error(t, err)
	assert.Empty(t, p.frames)
}

func TestNotifier_AdminLookupFailure(t *testing.T) {
	n, nr, mr, _ := setup()
	mr.err = errors.New("timeout")

	assert.Error(t, n.Handle(context.Background(), event(swap.EventAccepted, "tgt-1")))
	assert.Empty(t, nr.created)
}
