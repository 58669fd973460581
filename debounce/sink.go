package debounce

import (
	"github.com/b0bbywan/go-usbwatch/history"
)

// Sink presents classified events. Implementations must not block and must
// absorb their own failures.
type Sink interface {
	NotifyInfo(identity string, status history.Status)
	NotifyProblem(identity string)
}

type nopSink struct{}

func (nopSink) NotifyInfo(string, history.Status) {}
func (nopSink) NotifyProblem(string)              {}
