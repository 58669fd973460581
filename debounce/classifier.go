// Package debounce tells legitimate USB plug/unplug events apart from
// devices bouncing between added and removed.
package debounce

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/b0bbywan/go-usbwatch/history"
)

type Outcome int

const (
	// OutcomeNew: identity not tracked, informational notification.
	OutcomeNew Outcome = iota
	// OutcomeNormal: expected transition outside the window, informational notification.
	OutcomeNormal
	// OutcomeFlap: expected transition inside the window, problem notification.
	OutcomeFlap
	// OutcomeAbsorbed: same status repeated, no notification.
	OutcomeAbsorbed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNew:
		return "new"
	case OutcomeNormal:
		return "normal"
	case OutcomeFlap:
		return "flap"
	case OutcomeAbsorbed:
		return "absorbed"
	default:
		return "unknown"
	}
}

type Classifier struct {
	window time.Duration
	sink   Sink
	log    zerolog.Logger
}

func NewClassifier(window time.Duration, sink Sink, log zerolog.Logger) *Classifier {
	if sink == nil {
		sink = nopSink{}
	}
	return &Classifier{
		window: window,
		sink:   sink,
		log:    log,
	}
}

// Classify folds one event into table and notifies the sink.
//
// A transition to the opposite status no later than window after the
// previous one is a flap; equality counts as a flap. Repeating the same
// status updates the record silently.
func (c *Classifier) Classify(table *history.Table, identity string, status history.Status, now time.Time) Outcome {
	r, found := table.Find(identity)
	if !found {
		if err := table.Insert(history.NewRecord(identity, status, now)); err != nil {
			c.log.Error().Err(err).Str("identity", identity).Msg("Failed to track device")
		}
		c.notifyInfo(identity, status)
		c.log.Debug().
			Str("identity", identity).
			Stringer("status", status).
			Stringer("outcome", OutcomeNew).
			Msg("Classified event")
		return OutcomeNew
	}

	gap := r.Age(now)
	outcome := OutcomeAbsorbed
	if r.Status == status.Opposite() {
		if gap > c.window {
			outcome = OutcomeNormal
			c.notifyInfo(identity, status)
		} else {
			outcome = OutcomeFlap
			c.notifyProblem(identity, gap)
		}
	}
	r.Touch(status, now)

	c.log.Debug().
		Str("identity", identity).
		Stringer("status", status).
		Dur("gap", gap).
		Stringer("outcome", outcome).
		Msg("Classified event")
	return outcome
}

func (c *Classifier) notifyInfo(identity string, status history.Status) {
	defer c.recoverSink(identity)
	c.sink.NotifyInfo(identity, status)
}

func (c *Classifier) notifyProblem(identity string, gap time.Duration) {
	defer c.recoverSink(identity)
	c.log.Warn().Str("identity", identity).Dur("gap", gap).Msg("Device flapping")
	c.sink.NotifyProblem(identity)
}

func (c *Classifier) recoverSink(identity string) {
	if r := recover(); r != nil {
		c.log.Error().Str("identity", identity).Interface("panic", r).Msg("Recovered from notification sink panic")
	}
}
