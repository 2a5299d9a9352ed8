package swap

// Role is an organization membership role.
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// CanResolve reports whether the role may approve or reject swaps.
func (r Role) CanResolve() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Actor is the caller of a lifecycle operation. It is passed explicitly
// instead of being read from session state.
type Actor struct {
	StaffID        string
	OrganizationID string
	Role           Role
}

// SystemActor acts for scheduled jobs; it has no staff identity.
func SystemActor(organizationID string) Actor {
	return Actor{OrganizationID: organizationID}
}

// IsSystem reports whether the actor is a scheduled job.
func (a Actor) IsSystem() bool {
	return a.StaffID == ""
}

// Participants identifies the parties of a request for eligibility checks.
type Participants struct {
	RequesterID   string
	TargetStaffID string // empty for an open offer
}

// IsOpenOffer reports whether any eligible staff member may respond.
func (p Participants) IsOpenOffer() bool {
	return p.TargetStaffID == ""
}

// CheckResponder applies the identity part of the respond rule: a fixed
// target must be the actor; an open offer may not be taken by the requester.
// Membership and shift ownership for open offers are checked by the caller.
func (p Participants) CheckResponder(staffID string) error {
	if staffID == "" {
		return ErrNotEligible
	}
	if p.IsOpenOffer() {
		if staffID == p.RequesterID {
			return ErrNotEligible
		}
		return nil
	}
	if staffID != p.TargetStaffID {
		return ErrNotEligible
	}
	return nil
}

// CheckCanceller allows only the requester to withdraw.
func (p Participants) CheckCanceller(a Actor) error {
	if a.IsSystem() {
		return nil
	}
	if a.StaffID != p.RequesterID {
		return ErrNotEligible
	}
	return nil
}

// Involves reports whether the staff member is a party to the request.
func (p Participants) Involves(staffID string) bool {
	return staffID != "" && (staffID == p.RequesterID || staffID == p.TargetStaffID)
}
