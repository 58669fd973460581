package detect

import (
	"context"
	"fmt"

	"github.com/jochenvg/go-udev"
	"github.com/rs/zerolog"

	"github.com/b0bbywan/go-usbwatch/logger"
)

// UdevDetector listens to udev netlink events and publishes USB DeviceEvents.
type UdevDetector struct {
	log zerolog.Logger
}

func NewUdevDetector() *UdevDetector {
	return &UdevDetector{
		log: logger.WithComponent("detector"),
	}
}

// Run blocks until ctx is cancelled, or returns early if the monitor cannot
// be set up.
func (d *UdevDetector) Run(ctx context.Context, out chan<- DeviceEvent) error {
	u := udev.Udev{}
	monitor := u.NewMonitorFromNetlink("udev")
	if monitor == nil {
		return fmt.Errorf("failed to create udev netlink monitor")
	}
	if err := monitor.FilterAddMatchSubsystemDevtype(SubsystemUSB, DevtypeUSB); err != nil {
		return fmt.Errorf("failed to add filter: %w", err)
	}

	deviceChan, errChan, err := monitor.DeviceChan(ctx)
	if err != nil {
		return fmt.Errorf("failed to create device channel: %w", err)
	}

	d.log.Info().Msg("Listening for udev events...")

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("Detector stopping due to context cancellation")
			return nil
		case device, ok := <-deviceChan:
			if !ok {
				return fmt.Errorf("udev device channel closed")
			}
			if device == nil {
				continue
			}
			if ev := d.convert(device); ev != nil {
				select {
				case out <- *ev:
				case <-ctx.Done():
					return nil
				}
			}
		case err := <-errChan:
			if err != nil {
				d.log.Error().Err(err).Msg("udev monitor error")
			}
		}
	}
}

func (d *UdevDetector) convert(dev udevDevice) *DeviceEvent {
	if !usbPreChecker(dev) {
		return nil
	}
	status, ok := detectStatus(dev)
	if !ok {
		d.log.Debug().Str("action", dev.Action()).Str("syspath", dev.Syspath()).Msg("Unhandled action")
		return nil
	}
	return &DeviceEvent{
		Identity: dev.Syspath(),
		Status:   status,
	}
}
