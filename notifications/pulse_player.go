package notifications

import (
	"fmt"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

type PulseAudioPlayer struct {
	sc     *SoundCache
	client *pulse.Client
}

func NewPulseAudioPlayer(sc *SoundCache, pulseServerString string) (*PulseAudioPlayer, error) {
	opts := []pulse.ClientOption{pulse.ClientApplicationName("usbwatch")}
	if pulseServerString != "" {
		opts = append(opts, pulse.ClientServerString(pulseServerString))
	}
	client, err := pulse.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PulseAudio: %w", err)
	}

	return &PulseAudioPlayer{
		sc:     sc,
		client: client,
	}, nil
}

// Play plays the sound corresponding to the given name.
func (p *PulseAudioPlayer) Play(name string) error {
	data, err := p.sc.Get(name)
	if err != nil {
		return fmt.Errorf("could not play %s: %w", name, err)
	}

	reader := pulse.NewReader(data, proto.FormatInt16LE)
	stream, err := p.client.NewPlayback(reader, pulse.PlaybackStereo, pulse.PlaybackSampleRate(data.SampleRate()))
	if err != nil {
		return fmt.Errorf("failed to create PulseAudio playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("playback of %s failed: %w", name, err)
	}

	return p.sc.Rewind(name)
}

// Close cleans up the PulseAudio connection.
func (p *PulseAudioPlayer) Close() {
	p.client.Close()
	p.sc.Close()
}
