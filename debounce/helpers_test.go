package debounce

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/b0bbywan/go-usbwatch/history"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

type fakeClock struct {
	now time.Time
	err error
}

func (c *fakeClock) Now() (time.Time, error) {
	if c.err != nil {
		return time.Time{}, c.err
	}
	return c.now, nil
}

func (c *fakeClock) set(ms int) {
	c.now = at(ms)
}

type notification struct {
	kind     string
	identity string
	status   history.Status
}

func (n notification) String() string {
	if n.kind == "problem" {
		return fmt.Sprintf("Problem with %s", n.identity)
	}
	if n.status == history.StatusAdded {
		return fmt.Sprintf("Added %s", n.identity)
	}
	return fmt.Sprintf("Removed %s", n.identity)
}

type recordingSink struct {
	mu   sync.Mutex
	sent []notification
}

func (s *recordingSink) NotifyInfo(identity string, status history.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, notification{kind: "info", identity: identity, status: status})
}

func (s *recordingSink) NotifyProblem(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, notification{kind: "problem", identity: identity})
}

func (s *recordingSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sent))
	for _, n := range s.sent {
		out = append(out, n.String())
	}
	return out
}

type panickingSink struct{}

func (panickingSink) NotifyInfo(string, history.Status) { panic("display gone") }
func (panickingSink) NotifyProblem(string)              { panic(errors.New("display gone")) }
