package model

import "fmt"

// BookingStatus is the canonical booking lifecycle vocabulary. Legacy
// clients still send "accepted"/"rejected"; those map onto
// confirmed/cancelled at the boundary and never appear in storage.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCompleted, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// legacyStatuses maps the dual-approval vocabulary used by older provider
// clients onto the canonical one.
var legacyStatuses = map[string]BookingStatus{
	"accepted": StatusConfirmed,
	"rejected": StatusCancelled,
}

func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the
// target is allowed. Re-applying the current status is always allowed; the
// service layer treats it as a no-op.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	if s == target {
		return true
	}
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s BookingStatus) String() string {
	return string(s)
}

// ActiveStatuses are the statuses that hold a scheduled slot.
func ActiveStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusConfirmed}
}

// ParseBookingStatus converts a string, canonical or legacy, to a canonical
// BookingStatus. It returns an error for anything outside both vocabularies.
func ParseBookingStatus(s string) (BookingStatus, error) {
	if canonical, ok := legacyStatuses[s]; ok {
		return canonical, nil
	}
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
