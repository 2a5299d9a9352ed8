package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/repository"
	"shiftcare/backend/internal/swap"
	pkgerrors "shiftcare/backend/pkg/errors"
)

// ── Mock SwapRequestRepository ──

type mockSwapRepo struct {
	requests      map[string]*model.ShiftSwapRequest
	seq           int
	createErr     error
	transitionErr error
	detailErr     error
	// beforeTransition runs inside Transition to simulate a concurrent writer.
	beforeTransition func(id string)
	transitions      int
}

func newMockSwapRepo() *mockSwapRepo {
	return &mockSwapRepo{requests: make(map[string]*model.ShiftSwapRequest)}
}

func cloneSwap(r *model.ShiftSwapRequest) *model.ShiftSwapRequest {
	c := *r
	return &c
}

func (m *mockSwapRepo) put(r *model.ShiftSwapRequest) {
	m.requests[r.ID] = cloneSwap(r)
}

func (m *mockSwapRepo) Create(_ context.Context, r *model.ShiftSwapRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.requests {
		if existing.OriginalShiftID == r.OriginalShiftID && existing.State().IsOpen() {
			return pkgerrors.ErrDuplicate
		}
	}
	m.seq++
	r.ID = fmt.Sprintf("swap-%d", m.seq)
	m.put(r)
	return nil
}

func (m *mockSwapRepo) GetByID(_ context.Context, id string) (*model.ShiftSwapRequest, error) {
	if r, ok := m.requests[id]; ok {
		return cloneSwap(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSwapRepo) GetDetail(ctx context.Context, id string) (*model.ShiftSwapRequest, error) {
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	return m.GetByID(ctx, id)
}

func (m *mockSwapRepo) List(_ context.Context, f repository.SwapRequestFilter, offset, limit int) ([]model.ShiftSwapRequest, int64, error) {
	var result []model.ShiftSwapRequest
	for _, r := range m.requests {
		if f.OrganizationID != "" && r.OrganizationID != f.OrganizationID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.AdminStatus != "" && r.AdminStatus != f.AdminStatus {
			continue
		}
		p := r.Participants()
		if f.InvolvingStaffID != "" && !p.Involves(f.InvolvingStaffID) {
			continue
		}
		if f.VisibleToStaffID != "" && !p.Involves(f.VisibleToStaffID) && !p.IsOpenOffer() {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockSwapRepo) HasOpenForShift(_ context.Context, shiftID string) (bool, error) {
	for _, r := range m.requests {
		if r.OriginalShiftID == shiftID && r.State().IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSwapRepo) Transition(_ context.Context, id string, from swap.State, t repository.SwapTransition) error {
	if m.transitionErr != nil {
		return m.transitionErr
	}
	if m.beforeTransition != nil {
		m.beforeTransition(id)
	}
	r, ok := m.requests[id]
	if !ok || r.State() != from {
		return pkgerrors.ErrConditionFailed
	}
	m.transitions++
	r.Status = t.To.Status
	r.AdminStatus = t.To.AdminStatus
	r.UpdatedAt = t.UpdatedAt
	if t.TargetStaffID != nil {
		v := *t.TargetStaffID
		r.TargetStaffID = &v
	}
	if t.RespondedAt != nil {
		v := *t.RespondedAt
		r.RespondedAt = &v
	}
	if t.RespondedBy != nil {
		v := *t.RespondedBy
		r.RespondedBy = &v
	}
	if t.ResolvedAt != nil {
		v := *t.ResolvedAt
		r.ResolvedAt = &v
	}
	if t.ResolvedBy != nil {
		v := *t.ResolvedBy
		r.ResolvedBy = &v
	}
	if t.AdminNotes != nil {
		v := *t.AdminNotes
		r.AdminNotes = &v
	}
	return nil
}

func (m *mockSwapRepo) ListExpirable(_ context.Context, now time.Time, limit int) ([]model.ShiftSwapRequest, error) {
	// shifts are not joined here; tests seed OriginalShift on the record
	var result []model.ShiftSwapRequest
	for _, r := range m.requests {
		if r.State() != swap.NewState() || r.OriginalShift == nil {
			continue
		}
		if !r.OriginalShift.StartsAt.After(now) {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockSwapRepo) ListForExport(_ context.Context, orgID string, from, to time.Time) ([]model.ShiftSwapRequest, error) {
	var result []model.ShiftSwapRequest
	for _, r := range m.requests {
		if r.OrganizationID == orgID && !r.CreatedAt.Before(from) && r.CreatedAt.Before(to) {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts      map[string]*model.Shift
	reassignErr map[string]error
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift), reassignErr: make(map[string]error)}
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) ListByStaff(_ context.Context, orgID, staffID string, from, to time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.OrganizationID == orgID && s.StaffID == staffID && !s.StartsAt.Before(from) && s.StartsAt.Before(to) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartsAt.Before(result[j].StartsAt) })
	return result, nil
}

func (m *mockShiftRepo) Reassign(_ context.Context, shift *model.Shift, newStaffID string) error {
	if err := m.reassignErr[shift.ShiftID]; err != nil {
		return err
	}
	stored, ok := m.shifts[shift.ShiftID]
	if !ok || stored.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.StaffID = newStaffID
	stored.Version++
	shift.StaffID = newStaffID
	shift.Version = stored.Version
	return nil
}

// ── Mock MemberRepository ──

type mockMemberRepo struct {
	members map[string]*model.OrganizationMember
	err     error
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{members: make(map[string]*model.OrganizationMember)}
}

func (m *mockMemberRepo) add(orgID, staffID string, role swap.Role) {
	m.members[orgID+"|"+staffID] = &model.OrganizationMember{
		OrganizationID: orgID, StaffID: staffID, Role: role, IsActive: true,
	}
}

func (m *mockMemberRepo) GetActive(_ context.Context, orgID, staffID string) (*model.OrganizationMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	if mem, ok := m.members[orgID+"|"+staffID]; ok && mem.IsActive {
		return mem, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMemberRepo) ListAdmins(_ context.Context, orgID string) ([]model.OrganizationMember, error) {
	var result []model.OrganizationMember
	for _, mem := range m.members {
		if mem.OrganizationID == orgID && mem.IsActive && mem.Role.CanResolve() {
			result = append(result, *mem)
		}
	}
	return result, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	rows []model.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) BatchCreate(_ context.Context, ns []model.Notification) error {
	for _, n := range ns {
		if n.NotificationID == "" {
			n.NotificationID = fmt.Sprintf("n-%d", len(m.rows)+1)
		}
		m.rows = append(m.rows, n)
	}
	return nil
}

func (m *mockNotificationRepo) ListByStaff(_ context.Context, staffID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.rows {
		if n.StaffID == staffID && (!unreadOnly || !n.IsRead) {
			result = append(result, n)
		}
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, staffID string) (int64, error) {
	var n int64
	for _, row := range m.rows {
		if row.StaffID == staffID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, staffID string, at time.Time) error {
	for i := range m.rows {
		if m.rows[i].NotificationID == id && m.rows[i].StaffID == staffID {
			if !m.rows[i].IsRead {
				m.rows[i].IsRead = true
				m.rows[i].ReadAt = &at
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, staffID string, at time.Time) (int64, error) {
	var n int64
	for i := range m.rows {
		if m.rows[i].StaffID == staffID && !m.rows[i].IsRead {
			m.rows[i].IsRead = true
			m.rows[i].ReadAt = &at
			n++
		}
	}
	return n, nil
}

// ── Mock ShiftChangeLogRepository ──

type mockChangeLogRepo struct {
	logs []model.ShiftChangeLog
	err  error
}

func (m *mockChangeLogRepo) BatchCreate(_ context.Context, logs []model.ShiftChangeLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, logs...)
	return nil
}

func (m *mockChangeLogRepo) ListByShift(_ context.Context, shiftID string) ([]model.ShiftChangeLog, error) {
	var result []model.ShiftChangeLog
	for _, l := range m.logs {
		if l.ShiftID == shiftID {
			result = append(result, l)
		}
	}
	return result, nil
}

// ── Mock TxManager ──

// mockTxManager snapshots shifts and restores them when fn fails.
type mockTxManager struct {
	shifts *mockShiftRepo
	logs   *mockChangeLogRepo
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	saved := make(map[string]model.Shift, len(m.shifts.shifts))
	for id, s := range m.shifts.shifts {
		saved[id] = *s
	}
	savedLogs := len(m.logs.logs)

	if err := fn(ctx); err != nil {
		for id, s := range saved {
			c := s
			m.shifts.shifts[id] = &c
		}
		m.logs.logs = m.logs.logs[:savedLogs]
		return err
	}
	return nil
}

// ── Recording publisher ──

type recordingPublisher struct {
	mu     sync.Mutex
	events []swap.Event
}

func (p *recordingPublisher) Publish(ev swap.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return true
}

func (p *recordingPublisher) types() []swap.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]swap.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// ── fixture ──

type fixture struct {
	repo          *repository.Repository
	swaps         *mockSwapRepo
	shifts        *mockShiftRepo
	members       *mockMemberRepo
	notifications *mockNotificationRepo
	logs          *mockChangeLogRepo
	publisher     *recordingPublisher
	now           time.Time
}

func newFixture() *fixture {
	f := &fixture{
		swaps:         newMockSwapRepo(),
		shifts:        newMockShiftRepo(),
		members:       newMockMemberRepo(),
		notifications: newMockNotificationRepo(),
		logs:          &mockChangeLogRepo{},
		publisher:     &recordingPublisher{},
		now:           time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	f.repo = &repository.Repository{
		Tx:             &mockTxManager{shifts: f.shifts, logs: f.logs},
		SwapRequest:    f.swaps,
		Shift:          f.shifts,
		Member:         f.members,
		Notification:   f.notifications,
		ShiftChangeLog: f.logs,
	}
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) addShift(id, orgID, staffID string, startsIn time.Duration) *model.Shift {
	s := &model.Shift{
		ShiftID:        id,
		OrganizationID: orgID,
		StaffID:        staffID,
		StartsAt:       f.now.Add(startsIn),
		EndsAt:         f.now.Add(startsIn + 8*time.Hour),
	}
	s.Version = 1
	f.shifts.shifts[id] = s
	return s
}
