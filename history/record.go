// Package history keeps the per-device table of recent hotplug transitions.
package history

import (
	"errors"
	"fmt"
	"time"
)

const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

var ErrUnsupportedAction = errors.New("unsupported action")

// Status is the last action observed for a device.
type Status int

const (
	StatusAdded Status = iota + 1
	StatusRemoved
)

// ParseStatus maps a udev action string to a Status.
func ParseStatus(action string) (Status, error) {
	switch action {
	case ActionAdd:
		return StatusAdded, nil
	case ActionRemove:
		return StatusRemoved, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAction, action)
	}
}

// Opposite returns the status a well-behaved device had before reaching s.
func (s Status) Opposite() Status {
	if s == StatusAdded {
		return StatusRemoved
	}
	return StatusAdded
}

func (s Status) Action() string {
	switch s {
	case StatusAdded:
		return ActionAdd
	case StatusRemoved:
		return ActionRemove
	default:
		return "unknown"
	}
}

func (s Status) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

type Record struct {
	Identity string
	LastSeen time.Time
	Status   Status
}

func NewRecord(identity string, status Status, seen time.Time) *Record {
	return &Record{
		Identity: identity,
		LastSeen: seen,
		Status:   status,
	}
}

// Touch folds a new observation into the record. LastSeen never moves backwards.
func (r *Record) Touch(status Status, seen time.Time) {
	if seen.After(r.LastSeen) {
		r.LastSeen = seen
	}
	r.Status = status
}

// Age is the time elapsed between the last observation and now. It is
// negative when now predates LastSeen.
func (r *Record) Age(now time.Time) time.Duration {
	return now.Sub(r.LastSeen)
}
