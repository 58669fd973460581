package notifications

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/b0bbywan/go-usbwatch/history"
	"github.com/b0bbywan/go-usbwatch/logger"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod = notifyDest + ".Notify"

	urgencyNormal   byte = 1
	urgencyCritical byte = 2

	// expire_timeout value letting the notification server decide.
	serverTimeout int32 = -1

	DefaultProblemTimeout = 20 * time.Second
	callTimeout           = 5 * time.Second
)

type busObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Desktop shows freedesktop notifications through the session bus.
type Desktop struct {
	conn           *dbus.Conn
	obj            busObject
	appName        string
	problemTimeout time.Duration
	wg             sync.WaitGroup
	log            zerolog.Logger
}

type desktopNotification struct {
	summary string
	body    string
	urgency byte
	timeout int32
}

func NewDesktop(appName string, problemTimeout time.Duration) (*Desktop, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	d := newDesktop(conn.Object(notifyDest, notifyPath), appName, problemTimeout)
	d.conn = conn
	return d, nil
}

func newDesktop(obj busObject, appName string, problemTimeout time.Duration) *Desktop {
	if problemTimeout <= 0 {
		problemTimeout = DefaultProblemTimeout
	}
	return &Desktop{
		obj:            obj,
		appName:        appName,
		problemTimeout: problemTimeout,
		log:            logger.WithComponent("notifications"),
	}
}

func (d *Desktop) NotifyInfo(identity string, status history.Status) {
	d.send(desktopNotification{
		summary: InfoSummary,
		body:    InfoMessage(identity, status),
		urgency: urgencyNormal,
		timeout: serverTimeout,
	})
}

func (d *Desktop) NotifyProblem(identity string) {
	d.send(desktopNotification{
		summary: ProblemSummary,
		body:    ProblemMessage(identity),
		urgency: urgencyCritical,
		timeout: expireTimeout(d.problemTimeout),
	})
}

// expireTimeout converts to the protocol's int32 milliseconds, saturating.
func expireTimeout(d time.Duration) int32 {
	ms := d / time.Millisecond
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(ms)
}

// Close waits for in-flight notifications and releases the bus connection.
func (d *Desktop) Close() {
	d.wg.Wait()
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			d.log.Error().Err(err).Msg("Failed to close session bus")
		}
	}
}

func (d *Desktop) send(n desktopNotification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		hints := map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(n.urgency),
		}
		call := d.obj.CallWithContext(ctx, notifyMethod, 0,
			d.appName, uint32(0), Icon, n.summary, n.body, []string{}, hints, n.timeout)
		if call == nil {
			return
		}
		if call.Err != nil {
			d.log.Error().Err(call.Err).Str("summary", n.summary).Str("body", n.body).Msg("Failed to show desktop notification")
		}
	}()
}
