// Package swap holds the shift-swap rules: the two status axes, the
// transitions between them, who may act, and the events a transition emits.
package swap

import "fmt"

// Status is the staff-consent axis.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

// AdminStatus is the administrator-approval axis.
type AdminStatus string

const (
	AdminPendingStaff AdminStatus = "pending_staff"
	AdminPendingAdmin AdminStatus = "pending_admin"
	AdminApproved     AdminStatus = "admin_approved"
	AdminRejected     AdminStatus = "admin_rejected"
)

// Valid reports whether a is a known admin status.
func (a AdminStatus) Valid() bool {
	switch a {
	case AdminPendingStaff, AdminPendingAdmin, AdminApproved, AdminRejected:
		return true
	}
	return false
}

// Decision is the target staff member's answer.
type Decision string

const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

// ParseDecision validates a raw decision.
func ParseDecision(raw string) (Decision, error) {
	switch d := Decision(raw); d {
	case DecisionAccept, DecisionDecline:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, raw)
}

// AdminDecision is the administrator's answer.
type AdminDecision string

const (
	AdminDecisionApprove AdminDecision = "approve"
	AdminDecisionReject  AdminDecision = "reject"
)

// ParseAdminDecision validates a raw admin decision.
func ParseAdminDecision(raw string) (AdminDecision, error) {
	switch d := AdminDecision(raw); d {
	case AdminDecisionApprove, AdminDecisionReject:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, raw)
}

// State composes both axes. The zero value is not a valid state; use NewState.
type State struct {
	Status      Status
	AdminStatus AdminStatus
}

// NewState is the state of a freshly created request.
func NewState() State {
	return State{Status: StatusPending, AdminStatus: AdminPendingStaff}
}

// Validate checks both axes and the joint constraint between them.
func (s State) Validate() error {
	if !s.Status.Valid() || !s.AdminStatus.Valid() {
		return fmt.Errorf("%w: %s/%s", ErrInvalidState, s.Status, s.AdminStatus)
	}
	if s.AdminStatus != AdminPendingStaff && s.Status != StatusAccepted {
		return fmt.Errorf("%w: admin status %s requires accepted, got %s", ErrInvalidState, s.AdminStatus, s.Status)
	}
	return nil
}

// IsTerminal reports whether no further transition exists.
func (s State) IsTerminal() bool {
	switch {
	case s.Status == StatusDeclined, s.Status == StatusCancelled:
		return true
	case s.AdminStatus == AdminApproved, s.AdminStatus == AdminRejected:
		return true
	}
	return false
}

// IsOpen reports whether the request still blocks its original shift.
func (s State) IsOpen() bool {
	return s.Status == StatusPending ||
		(s.Status == StatusAccepted && s.AdminStatus == AdminPendingAdmin)
}

// Executed reports whether the swap was approved and must be carried out.
func (s State) Executed() bool {
	return s.AdminStatus == AdminApproved
}

func (s State) awaitingStaff() bool {
	return s.Status == StatusPending && s.AdminStatus == AdminPendingStaff
}

// Respond applies the target's decision.
func (s State) Respond(d Decision) (State, error) {
	if !s.awaitingStaff() {
		return s, fmt.Errorf("%w: cannot respond in %s/%s", ErrInvalidState, s.Status, s.AdminStatus)
	}
	switch d {
	case DecisionAccept:
		return State{Status: StatusAccepted, AdminStatus: AdminPendingAdmin}, nil
	case DecisionDecline:
		return State{Status: StatusDeclined, AdminStatus: AdminPendingStaff}, nil
	}
	return s, fmt.Errorf("%w: %q", ErrInvalidDecision, d)
}

// Resolve applies the administrator's decision.
func (s State) Resolve(d AdminDecision) (State, error) {
	if s.Status != StatusAccepted || s.AdminStatus != AdminPendingAdmin {
		return s, fmt.Errorf("%w: cannot resolve in %s/%s", ErrInvalidState, s.Status, s.AdminStatus)
	}
	switch d {
	case AdminDecisionApprove:
		return State{Status: StatusAccepted, AdminStatus: AdminApproved}, nil
	case AdminDecisionReject:
		return State{Status: StatusAccepted, AdminStatus: AdminRejected}, nil
	}
	return s, fmt.Errorf("%w: %q", ErrInvalidDecision, d)
}

// Cancel withdraws a request nobody has answered yet.
func (s State) Cancel() (State, error) {
	if !s.awaitingStaff() {
		return s, fmt.Errorf("%w: cannot cancel in %s/%s", ErrInvalidState, s.Status, s.AdminStatus)
	}
	return State{Status: StatusCancelled, AdminStatus: AdminPendingStaff}, nil
}
