package debounce

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

const (
	ClockMonotonic = "monotonic"
	ClockWall      = "wall"
)

type Clock interface {
	Now() (time.Time, error)
}

// MonotonicClock reads CLOCK_MONOTONIC. Its values are only meaningful
// relative to each other.
type MonotonicClock struct{}

func (MonotonicClock) Now() (time.Time, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return time.Time{}, fmt.Errorf("clock_gettime(CLOCK_MONOTONIC): %w", err)
	}
	return time.Unix(ts.Unix()), nil
}

type SystemClock struct{}

func (SystemClock) Now() (time.Time, error) {
	return time.Now(), nil
}

func NewClock(kind string) (Clock, error) {
	switch kind {
	case ClockMonotonic, "":
		return MonotonicClock{}, nil
	case ClockWall:
		return SystemClock{}, nil
	default:
		return nil, fmt.Errorf("unsupported clock %q, must be '%s' or '%s'", kind, ClockMonotonic, ClockWall)
	}
}
