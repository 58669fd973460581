package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/b0bbywan/go-usbwatch/config"
	"github.com/b0bbywan/go-usbwatch/debounce"
	"github.com/b0bbywan/go-usbwatch/hwcontrol"
	"github.com/b0bbywan/go-usbwatch/hwcontrol/detect"
	"github.com/b0bbywan/go-usbwatch/logger"
	"github.com/b0bbywan/go-usbwatch/notifications"
)

type Watcher struct {
	ctx        context.Context
	cancel     context.CancelFunc
	Dispatcher *debounce.Dispatcher
	Detector   hwcontrol.Detector
	Desktop    *notifications.Desktop
	Notifier   *notifications.Notifier
	log        zerolog.Logger
}

func NewWatcher(ctx context.Context, cancel context.CancelFunc, cfg *config.Config) (*Watcher, error) {
	log := logger.WithComponent("watcher")

	clock, err := debounce.NewClock(cfg.Clock)
	if err != nil {
		return nil, fmt.Errorf("invalid clock: %w", err)
	}

	w := &Watcher{
		ctx:      ctx,
		cancel:   cancel,
		Detector: detect.NewUdevDetector(),
		log:      log,
	}

	sinks := notifications.Multi{notifications.NewLogSink()}
	notificationConfig := cfg.NotificationConfig
	if notificationConfig.Desktop {
		desktop, err := notifications.NewDesktop(notificationConfig.AppName, notificationConfig.ProblemTimeout)
		if err != nil {
			log.Warn().Err(err).Msg("Desktop notifications disabled")
		} else {
			w.Desktop = desktop
			sinks = append(sinks, desktop)
		}
	}
	if notifier := notifications.NewNotifier(notificationConfig); notifier != nil {
		w.Notifier = notifier
		sinks = append(sinks, notifier)
	}

	dispatcher, err := debounce.NewDispatcher(cfg.DebounceWindow, clock, sinks)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	w.Dispatcher = dispatcher

	return w, nil
}

// Run blocks until the context is cancelled or the udev monitor fails.
func (w *Watcher) Run() error {
	w.log.Info().Str("version", config.AppVersion).Dur("debounce_window", w.Dispatcher.Window()).Msg("Watching USB devices")
	return hwcontrol.StartMonitor(w.ctx, w.Detector, w.Dispatcher)
}

func (w *Watcher) Close() {
	w.log.Info().Msg("Watcher closing")
	w.cancel()
	if w.Desktop != nil {
		w.Desktop.Close()
	}
	if w.Notifier != nil {
		w.Notifier.Close()
	}
	w.log.Info().Msg("Watcher closed")
}
