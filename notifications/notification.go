package notifications

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/b0bbywan/go-usbwatch/history"
	"github.com/b0bbywan/go-usbwatch/logger"
)

const (
	EventAdd    = history.ActionAdd
	EventRemove = history.ActionRemove
	EventError  = "error"

	BackendPulse = "pulse"
	BackendAlsa  = "alsa"
	BackendNone  = "none"
)

// Notifier plays a short sound for each classified event. Sounds are played
// one at a time by a single worker; at most one more waits behind the one
// playing and any further sound is dropped.
type Notifier struct {
	Player
	sounds    chan string
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	log       zerolog.Logger
}

type NotificationConfig struct {
	AppName        string
	Desktop        bool
	ProblemTimeout time.Duration
	AudioBackend   string
	SoundPaths     map[string]string
	PulseServer    string
}

type Player interface {
	Play(name string) error
	Close()
}

func NewNotificationConfig(appName string, desktop bool, problemTimeout time.Duration, audioBackend, pulseServer, soundsLocation string) *NotificationConfig {
	return &NotificationConfig{
		AppName:        appName,
		Desktop:        desktop,
		ProblemTimeout: problemTimeout,
		AudioBackend:   audioBackend,
		PulseServer:    pulseServer,
		SoundPaths: map[string]string{
			EventAdd:    filepath.Join(soundsLocation, "in.mp3"),
			EventRemove: filepath.Join(soundsLocation, "out.mp3"),
			EventError:  filepath.Join(soundsLocation, "error.mp3"),
		},
	}
}

// NewNotifier returns nil when sounds are disabled or the backend cannot be
// initialized. A nil *Notifier is safe to use.
func NewNotifier(config *NotificationConfig) *Notifier {
	log := logger.WithComponent("notifications")
	if config.AudioBackend == BackendNone || config.AudioBackend == "" {
		log.Info().Msg("Sound notifications disabled")
		return nil
	}

	sc, err := NewSoundCache(config.SoundPaths)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load sound cache, sound notifications disabled")
		return nil
	}

	var player Player
	switch config.AudioBackend {
	case BackendAlsa:
		player, err = NewOtoPlayer(sc)
	case BackendPulse:
		player, err = NewPulseAudioPlayer(sc, config.PulseServer)
	default:
		err = fmt.Errorf("unsupported audio backend %q", config.AudioBackend)
	}
	if err != nil {
		sc.Close()
		log.Error().Err(err).Str("backend", config.AudioBackend).Msg("Failed to initialize player, sound notifications disabled")
		return nil
	}

	log.Info().Str("backend", config.AudioBackend).Msg("Sound notifier initialized")

	return newNotifier(player, log)
}

func newNotifier(player Player, log zerolog.Logger) *Notifier {
	n := &Notifier{
		Player: player,
		sounds: make(chan string, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		log:    log,
	}
	go n.run()
	return n
}

func (n *Notifier) NotifyInfo(_ string, status history.Status) {
	n.PlayEvent(status.Action())
}

func (n *Notifier) NotifyProblem(_ string) {
	n.PlayError()
}

func (n *Notifier) PlayEvent(event string) {
	if n != nil {
		n.play(event)
	}
}

func (n *Notifier) PlayError() {
	n.PlayEvent(EventError)
}

// Close stops the worker, discarding a queued sound, and releases the player
// once the sound currently playing has finished.
func (n *Notifier) Close() {
	if n == nil || n.Player == nil {
		return
	}
	n.closeOnce.Do(func() {
		close(n.quit)
		<-n.done
		n.Player.Close()
	})
}

// play never blocks the caller.
func (n *Notifier) play(name string) {
	select {
	case <-n.quit:
		return
	default:
	}
	select {
	case n.sounds <- name:
	default:
		n.log.Debug().Str("sound", name).Msg("Sound dropped, player busy")
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for {
		select {
		case <-n.quit:
			return
		case name := <-n.sounds:
			if err := n.Play(name); err != nil {
				n.log.Error().Err(err).Str("sound", name).Msg("Failed to play sound")
			}
		}
	}
}
