package notifications

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hajimehoshi/go-mp3"

	"github.com/b0bbywan/go-usbwatch/logger"
)

const defaultSampleRate = 44100

type SoundEntry struct {
	decoder *mp3.Decoder
	file    *os.File
}

// SoundCache keeps every notification sound open and decoded.
type SoundCache struct {
	sounds map[string]*SoundEntry
	mu     sync.Mutex
}

func NewSoundCache(soundsPath map[string]string) (*SoundCache, error) {
	sc := &SoundCache{
		sounds: make(map[string]*SoundEntry),
	}

	for name, path := range soundsPath {
		if err := sc.loadAudioFile(name, path); err != nil {
			sc.Close()
			return nil, fmt.Errorf("failed to load sound %s from %s: %w", name, path, err)
		}
	}

	return sc, nil
}

func (sc *SoundCache) Get(name string) (*mp3.Decoder, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	data, exists := sc.sounds[name]
	if !exists {
		return nil, fmt.Errorf("sound %s not found", name)
	}
	return data.decoder, nil
}

// Rewind seeks a sound back to its beginning after it has been played.
func (sc *SoundCache) Rewind(name string) error {
	decoder, err := sc.Get(name)
	if err != nil {
		return err
	}
	if _, err := decoder.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to reset %s after playing: %w", name, err)
	}
	return nil
}

// SampleRate reports the sample rate shared by the cached sounds.
func (sc *SoundCache) SampleRate() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, entry := range sc.sounds {
		return entry.decoder.SampleRate()
	}
	return defaultSampleRate
}

func (sc *SoundCache) Close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	log := logger.WithComponent("notifications")
	for name, entry := range sc.sounds {
		if err := entry.file.Close(); err != nil {
			log.Error().Err(err).Str("sound", name).Msg("Failed to close sound file")
		}
	}
	sc.sounds = nil
}

func (sc *SoundCache) loadAudioFile(name, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}

	decodedMp3, err := mp3.NewDecoder(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to decode MP3 file: %w", err)
	}
	data := &SoundEntry{
		decoder: decodedMp3,
		file:    file,
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.sounds[name] = data
	return nil
}
