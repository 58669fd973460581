package notifications

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b0bbywan/go-usbwatch/debounce"
	"github.com/b0bbywan/go-usbwatch/history"
	"github.com/b0bbywan/go-usbwatch/logger"
)

const port = "/sys/devices/pci0000:00/0000:00:14.0/usb1/1-2"

type fakeBus struct {
	mu    sync.Mutex
	calls [][]interface{}
	err   error
}

func (f *fakeBus) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]interface{}{method}, args...))
	return &dbus.Call{Err: f.err}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Added "+port, InfoMessage(port, history.StatusAdded))
	assert.Equal(t, "Removed "+port, InfoMessage(port, history.StatusRemoved))
	assert.Equal(t, "Problem with "+port, ProblemMessage(port))
}

func TestDesktopNotifyInfo(t *testing.T) {
	bus := &fakeBus{}
	d := newDesktop(bus, "usbwatch", 0)

	d.NotifyInfo(port, history.StatusAdded)
	d.Close()

	require.Len(t, bus.calls, 1)
	call := bus.calls[0]
	assert.Equal(t, notifyMethod, call[0])
	assert.Equal(t, "usbwatch", call[1])
	assert.Equal(t, uint32(0), call[2])
	assert.Equal(t, Icon, call[3])
	assert.Equal(t, InfoSummary, call[4])
	assert.Equal(t, "Added "+port, call[5])
	hints := call[7].(map[string]dbus.Variant)
	assert.Equal(t, urgencyNormal, hints["urgency"].Value())
	assert.Equal(t, serverTimeout, call[8])
}

func TestDesktopNotifyProblemIsCritical(t *testing.T) {
	bus := &fakeBus{}
	d := newDesktop(bus, "usbwatch", 0)

	d.NotifyProblem(port)
	d.Close()

	require.Len(t, bus.calls, 1)
	call := bus.calls[0]
	assert.Equal(t, ProblemSummary, call[4])
	assert.Equal(t, "Problem with "+port, call[5])
	hints := call[7].(map[string]dbus.Variant)
	assert.Equal(t, urgencyCritical, hints["urgency"].Value())
	assert.Equal(t, int32(20000), call[8])
}

func TestDesktopCustomProblemTimeout(t *testing.T) {
	bus := &fakeBus{}
	d := newDesktop(bus, "usbwatch", 5*time.Second)

	d.NotifyProblem(port)
	d.Close()

	require.Len(t, bus.calls, 1)
	assert.Equal(t, int32(5000), bus.calls[0][8])
}

func TestDesktopProblemTimeoutSaturates(t *testing.T) {
	bus := &fakeBus{}
	d := newDesktop(bus, "usbwatch", 1000*time.Hour)

	d.NotifyProblem(port)
	d.Close()

	require.Len(t, bus.calls, 1)
	assert.Equal(t, int32(math.MaxInt32), bus.calls[0][8])
}

func TestDesktopFailureIsAbsorbed(t *testing.T) {
	bus := &fakeBus{err: errors.New("org.freedesktop.DBus.Error.ServiceUnknown")}
	d := newDesktop(bus, "usbwatch", 0)

	assert.NotPanics(t, func() {
		d.NotifyInfo(port, history.StatusRemoved)
		d.NotifyProblem(port)
		d.Close()
	})
	assert.Len(t, bus.calls, 2)
}

func TestLogSink(t *testing.T) {
	t.Cleanup(func() { _ = logger.Init(logger.DefaultConfig()) })
	require.NoError(t, logger.Init(logger.DefaultConfig()))
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	sink := NewLogSink()
	sink.NotifyInfo(port, history.StatusRemoved)
	sink.NotifyProblem(port)

	out := buf.String()
	assert.Contains(t, out, `"message":"Removed `+port+`"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"message":"Problem with `+port+`"`)
}

type countingSink struct {
	info, problem int
}

func (c *countingSink) NotifyInfo(string, history.Status) { c.info++ }
func (c *countingSink) NotifyProblem(string)              { c.problem++ }

func TestMultiFansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	var sink debounce.Sink = Multi{a, b}

	sink.NotifyInfo(port, history.StatusAdded)
	sink.NotifyProblem(port)
	sink.NotifyProblem(port)

	assert.Equal(t, 1, a.info)
	assert.Equal(t, 2, a.problem)
	assert.Equal(t, *a, *b)

	assert.NotPanics(t, func() { Multi(nil).NotifyProblem(port) })
}

type fakePlayer struct {
	mu      sync.Mutex
	played  []string
	err     error
	closed  bool
	started chan struct{}
	release chan struct{}
}

func (f *fakePlayer) Play(name string) error {
	f.mu.Lock()
	f.played = append(f.played, name)
	first := len(f.played) == 1
	f.mu.Unlock()
	if f.started != nil && first {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.err
}

func (f *fakePlayer) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakePlayer) sounds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

func (f *fakePlayer) count() int {
	return len(f.sounds())
}

func TestNotifierPlaysSounds(t *testing.T) {
	player := &fakePlayer{}
	n := newNotifier(player, logger.NewTestLogger())

	n.NotifyInfo(port, history.StatusAdded)
	assert.Eventually(t, func() bool { return player.count() == 1 }, time.Second, time.Millisecond)
	n.NotifyInfo(port, history.StatusRemoved)
	assert.Eventually(t, func() bool { return player.count() == 2 }, time.Second, time.Millisecond)
	n.NotifyProblem(port)
	assert.Eventually(t, func() bool { return player.count() == 3 }, time.Second, time.Millisecond)
	n.Close()

	assert.Equal(t, []string{EventAdd, EventRemove, EventError}, player.sounds())
	assert.True(t, player.closed)
}

func TestNotifierDropsSoundsWhilePlaying(t *testing.T) {
	player := &fakePlayer{started: make(chan struct{}), release: make(chan struct{})}
	n := newNotifier(player, logger.NewTestLogger())

	n.NotifyProblem(port)
	select {
	case <-player.started:
	case <-time.After(time.Second):
		t.Fatal("first sound never played")
	}

	queued := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			n.NotifyProblem(port)
		}
		close(queued)
	}()
	select {
	case <-queued:
	case <-time.After(time.Second):
		t.Fatal("NotifyProblem blocked while a sound was playing")
	}

	closed := make(chan struct{})
	go func() {
		n.Close()
		close(closed)
	}()
	close(player.release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}

	assert.LessOrEqual(t, player.count(), 2)
	assert.True(t, player.closed)

	// closed notifiers stay silent
	n.NotifyProblem(port)
	n.Close()
	assert.LessOrEqual(t, player.count(), 2)
}

func TestNotifierPlayErrorIsAbsorbed(t *testing.T) {
	player := &fakePlayer{err: errors.New("sink busy")}
	n := newNotifier(player, logger.NewTestLogger())

	assert.NotPanics(t, func() {
		n.NotifyProblem(port)
		assert.Eventually(t, func() bool { return player.count() == 1 }, time.Second, time.Millisecond)
		n.Close()
	})
	assert.Equal(t, []string{EventError}, player.sounds())
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.NotifyInfo(port, history.StatusAdded)
		n.NotifyProblem(port)
		n.Close()
	})
}

func TestNewNotifierDisabled(t *testing.T) {
	cfg := NewNotificationConfig("usbwatch", true, 0, BackendNone, "", t.TempDir())
	assert.Nil(t, NewNotifier(cfg))
}

func TestNewNotifierMissingSounds(t *testing.T) {
	cfg := NewNotificationConfig("usbwatch", true, 0, BackendPulse, "", t.TempDir())
	assert.Nil(t, NewNotifier(cfg))
}

func TestNewNotificationConfig(t *testing.T) {
	cfg := NewNotificationConfig("usbwatch", false, time.Second, BackendAlsa, "unix:/run/pulse", "/usr/share/usbwatch")

	assert.Equal(t, "usbwatch", cfg.AppName)
	assert.False(t, cfg.Desktop)
	assert.Equal(t, time.Second, cfg.ProblemTimeout)
	assert.Equal(t, filepath.Join("/usr/share/usbwatch", "in.mp3"), cfg.SoundPaths[EventAdd])
	assert.Equal(t, filepath.Join("/usr/share/usbwatch", "out.mp3"), cfg.SoundPaths[EventRemove])
	assert.Equal(t, filepath.Join("/usr/share/usbwatch", "error.mp3"), cfg.SoundPaths[EventError])
}

func TestNewSoundCacheMissingFile(t *testing.T) {
	_, err := NewSoundCache(map[string]string{EventAdd: filepath.Join(t.TempDir(), "in.mp3")})
	assert.Error(t, err)
}
