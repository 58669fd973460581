package notifications

import (
	"github.com/b0bbywan/go-usbwatch/debounce"
	"github.com/b0bbywan/go-usbwatch/history"
)

// Multi forwards every notification to each of its sinks, in order.
type Multi []debounce.Sink

func (m Multi) NotifyInfo(identity string, status history.Status) {
	for _, s := range m {
		s.NotifyInfo(identity, status)
	}
}

func (m Multi) NotifyProblem(identity string) {
	for _, s := range m {
		s.NotifyProblem(identity)
	}
}
