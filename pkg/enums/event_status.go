package enums

import "fmt"

// EventStatus describes the state of a single tracking event.
type EventStatus string

const (
	EventStatusCompleted  EventStatus = "completed"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusPending    EventStatus = "pending"
)

var validEventStatuses = []EventStatus{
	EventStatusCompleted,
	EventStatusInProgress,
	EventStatusPending,
}

// String implements fmt.Stringer.
func (e EventStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EventStatus.
func (e EventStatus) IsValid() bool {
	for _, candidate := range validEventStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventStatus converts raw input into an EventStatus.
func ParseEventStatus(value string) (EventStatus, error) {
	for _, candidate := range validEventStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event status %q", value)
}
