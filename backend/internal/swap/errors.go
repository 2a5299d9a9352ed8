package swap

import "errors"

// ── Swap lifecycle errors ──

var (
	ErrNotFound            = errors.New("swap request not found")
	ErrNotEligible         = errors.New("staff member is not eligible for this action")
	ErrNotAuthorized       = errors.New("only organization owners and admins may resolve swap requests")
	ErrInvalidState        = errors.New("action does not apply to the current swap state")
	ErrInvalidDecision     = errors.New("unknown decision")
	ErrShiftNotFound       = errors.New("shift not found")
	ErrShiftUnderOpenSwap  = errors.New("shift already has an open swap request")
	ErrShiftAlreadyStarted = errors.New("shift has already started")
	ErrInvalidTarget       = errors.New("invalid swap target")
	ErrPersistence         = errors.New("swap request storage failed")
)
