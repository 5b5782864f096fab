package domain

import "strings"

// Status represents the GTD lifecycle state of an item.
type Status string

const (
	StatusInbox     Status = "inbox"     // Captured, not yet clarified
	StatusNext      Status = "next"      // Next action
	StatusWaiting   Status = "waiting"   // Delegated or blocked on someone
	StatusScheduled Status = "scheduled" // Deferred to a date
	StatusSomeday   Status = "someday"   // Someday/maybe
	StatusReference Status = "reference" // Kept for reference, not actionable
	StatusDone      Status = "done"      // Completed
	StatusDeleted   Status = "deleted"   // Soft-deleted
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{
		StatusInbox,
		StatusNext,
		StatusWaiting,
		StatusScheduled,
		StatusSomeday,
		StatusReference,
		StatusDone,
		StatusDeleted,
	}
}

// clarified are the states an inbox item may be processed into.
var clarified = []Status{StatusNext, StatusWaiting, StatusScheduled, StatusSomeday, StatusReference}

// transitions defines the allowed status transitions in normal flow.
// Flow: inbox → clarified state → done → deleted
//
//	clarified states move freely among themselves; leaving done or
//	deleted is only possible through Reopen/Restore (see recoveries).
var transitions = map[Status][]Status{
	StatusInbox:     append(append([]Status{}, clarified...), StatusDone, StatusDeleted),
	StatusNext:      {StatusWaiting, StatusScheduled, StatusSomeday, StatusReference, StatusDone, StatusDeleted},
	StatusWaiting:   {StatusNext, StatusScheduled, StatusSomeday, StatusReference, StatusDone, StatusDeleted},
	StatusScheduled: {StatusNext, StatusWaiting, StatusSomeday, StatusReference, StatusDone, StatusDeleted},
	StatusSomeday:   {StatusNext, StatusWaiting, StatusScheduled, StatusReference, StatusDone, StatusDeleted},
	StatusReference: {StatusNext, StatusWaiting, StatusScheduled, StatusSomeday, StatusDone, StatusDeleted},
	StatusDone:      {StatusDeleted},
	StatusDeleted:   {},
}

// recoveries are the explicit ways out of a terminal state.
var recoveries = map[Status]Status{
	StatusDone:    StatusNext,  // reopen
	StatusDeleted: StatusInbox, // restore
}

// CanTransitionTo returns true if the status can move to target in normal flow.
// Staying in the same status is always allowed.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// RecoveryTarget returns the status a terminal item returns to when it is
// reopened (done) or restored (deleted).
func (s Status) RecoveryTarget() (Status, bool) {
	target, ok := recoveries[s]
	return target, ok
}

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusDeleted
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusInbox, StatusNext, StatusWaiting, StatusScheduled, StatusSomeday, StatusReference, StatusDone, StatusDeleted:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusInbox:
		return "Inbox"
	case StatusNext:
		return "Next"
	case StatusWaiting:
		return "Waiting For"
	case StatusScheduled:
		return "Scheduled"
	case StatusSomeday:
		return "Someday/Maybe"
	case StatusReference:
		return "Reference"
	case StatusDone:
		return "Done"
	case StatusDeleted:
		return "Deleted"
	default:
		return string(s)
	}
}

// ParseStatus normalizes and validates a status string.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", invalid(ErrInvalidStatus, s)
	}
	return status, nil
}
