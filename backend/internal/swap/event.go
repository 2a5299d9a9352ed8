package swap

import "time"

// EventType names a lifecycle transition.
type EventType string

const (
	EventCreated   EventType = "swap.created"
	EventAccepted  EventType = "swap.accepted"
	EventDeclined  EventType = "swap.declined"
	EventApproved  EventType = "swap.approved"
	EventRejected  EventType = "swap.rejected"
	EventCancelled EventType = "swap.cancelled"
)

// AllEventTypes lists every lifecycle event.
var AllEventTypes = []EventType{
	EventCreated, EventAccepted, EventDeclined, EventApproved, EventRejected, EventCancelled,
}

// Event is emitted after a transition is persisted. Consumers never affect
// the transition that produced it.
type Event struct {
	Type            EventType
	SwapRequestID   string
	OrganizationID  string
	RequesterID     string
	TargetStaffID   string
	OriginalShiftID string
	TargetShiftID   string
	ActorID         string
	Notes           string
	OccurredAt      time.Time
}

// EventForResponse maps a respond decision to its event type.
func EventForResponse(d Decision) EventType {
	if d == DecisionAccept {
		return EventAccepted
	}
	return EventDeclined
}

// EventForResolution maps an admin decision to its event type.
func EventForResolution(d AdminDecision) EventType {
	if d == AdminDecisionApprove {
		return EventApproved
	}
	return EventRejected
}
