package hwcontrol

import (
	"context"
	"errors"
	"fmt"

	"github.com/b0bbywan/go-usbwatch/debounce"
	"github.com/b0bbywan/go-usbwatch/history"
	"github.com/b0bbywan/go-usbwatch/hwcontrol/detect"
	"github.com/b0bbywan/go-usbwatch/logger"
)

type Detector interface {
	Run(ctx context.Context, out chan<- detect.DeviceEvent) error
}

type EventHandler interface {
	HandleEvent(identity string, status history.Status) (debounce.Outcome, error)
}

// StartMonitor feeds detector events, one at a time and in arrival order, to
// handler. It returns when ctx is done or the detector stops.
func StartMonitor(ctx context.Context, detector Detector, handler EventHandler) error {
	log := logger.WithComponent("monitor")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan detect.DeviceEvent)
	detectorErr := make(chan error, 1)
	go func() {
		detectorErr <- detector.Run(ctx, events)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Monitor stopping...")
			return nil
		case err := <-detectorErr:
			if err != nil {
				return fmt.Errorf("detector failed: %w", err)
			}
			if ctx.Err() != nil {
				return nil
			}
			return errors.New("detector stopped unexpectedly")
		case ev := <-events:
			outcome, err := handler.HandleEvent(ev.Identity, ev.Status)
			if err != nil {
				log.Error().Err(err).Str("identity", ev.Identity).Stringer("status", ev.Status).Msg("Failed to process event")
				continue
			}
			log.Debug().Str("identity", ev.Identity).Stringer("status", ev.Status).Stringer("outcome", outcome).Msg("Processed event")
		}
	}
}
