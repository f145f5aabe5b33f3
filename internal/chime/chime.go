package chime

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// Player manages hold start/stop tone playback.
type Player struct {
	startData []byte
	stopData  []byte
	enabled   bool
	logger    *log.Logger
	initOnce  sync.Once
	initErr   error
}

// New creates a Player. If startPath/stopPath are empty, synthesized
// defaults are used. If enabled is false, PlayStart/PlayStop are no-ops.
func New(startPath, stopPath string, enabled bool, logger *log.Logger) (*Player, error) {
	p := &Player{
		enabled: enabled,
		logger:  logger,
	}

	var err error
	if p.startData, err = load(startPath, DefaultStart); err != nil {
		return nil, fmt.Errorf("start chime: %w", err)
	}
	if p.stopData, err = load(stopPath, DefaultStop); err != nil {
		return nil, fmt.Errorf("stop chime: %w", err)
	}
	return p, nil
}

func load(path string, fallback func() ([]byte, error)) ([]byte, error) {
	if path == "" {
		return fallback()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := validateWAV(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// Enabled reports whether playback is on.
func (p *Player) Enabled() bool {
	return p != nil && p.enabled
}

func (p *Player) initSpeaker(format beep.Format) {
	p.initOnce.Do(func() {
		p.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
}

func (p *Player) play(data []byte) {
	if len(data) == 0 {
		return
	}

	go func() {
		streamer, format, err := wav.Decode(bytes.NewReader(data))
		if err != nil {
			p.logf("chime: wav decode error: %v", err)
			return
		}
		defer streamer.Close()

		p.initSpeaker(format)
		if p.initErr != nil {
			p.logf("chime: speaker init error: %v", p.initErr)
			return
		}

		done := make(chan struct{})
		speaker.Play(beep.Seq(streamer, beep.Callback(func() {
			close(done)
		})))
		<-done
	}()
}

func (p *Player) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}

// PlayStart plays the hold start tone (non-blocking).
func (p *Player) PlayStart() {
	if !p.Enabled() {
		return
	}
	p.play(p.startData)
}

// PlayStop plays the hold end tone (non-blocking).
func (p *Player) PlayStop() {
	if !p.Enabled() {
		return
	}
	p.play(p.stopData)
}
