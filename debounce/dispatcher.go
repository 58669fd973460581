package debounce

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/b0bbywan/go-usbwatch/history"
	"github.com/b0bbywan/go-usbwatch/logger"
)

const DefaultWindow = 400 * time.Millisecond

var (
	ErrClock         = errors.New("failed to read clock")
	ErrInvalidWindow = errors.New("debounce window must be positive")
)

// Dispatcher is the single entry point for hotplug events. Each event is
// classified then followed by an eviction sweep, under one lock.
type Dispatcher struct {
	mu         sync.Mutex
	table      *history.Table
	classifier *Classifier
	clock      Clock
	window     time.Duration
	log        zerolog.Logger
}

func NewDispatcher(window time.Duration, clock Clock, sink Sink) (*Dispatcher, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWindow, window)
	}
	if clock == nil {
		clock = MonotonicClock{}
	}
	log := logger.WithComponent("dispatcher")
	return &Dispatcher{
		table:      history.NewTable(),
		classifier: NewClassifier(window, sink, log),
		clock:      clock,
		window:     window,
		log:        log,
	}, nil
}

func (d *Dispatcher) Window() time.Duration {
	return d.window
}

// HandleEvent classifies one event and evicts stale devices. The only error
// is a clock failure, in which case the table is left untouched.
func (d *Dispatcher) HandleEvent(identity string, status history.Status) (Outcome, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now, err := d.clock.Now()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrClock, err)
	}

	outcome := d.classifier.Classify(d.table, identity, status, now)

	if evicted := d.table.EvictOlderThan(now, d.window); evicted > 0 {
		d.log.Debug().Int("evicted", evicted).Int("tracked", d.table.Len()).Msg("Evicted stale devices")
	}
	return outcome, nil
}

// Tracked returns the identities currently held in the history table.
func (d *Dispatcher) Tracked() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.table.Identities()
}
