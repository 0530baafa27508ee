// Package heartbeat plays the keep-alive sound clip.
package heartbeat

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	apperrors "trayping/internal/errors"
)

const bufferDuration = 100 * time.Millisecond

// Output is the audio device a clip is played on. Init may succeed at most
// once per process; the device is suspended between clips.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Suspend() error
	Resume() error
	Close()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Clear()               { speaker.Clear() }
func (speakerOutput) Suspend() error       { return speaker.Suspend() }
func (speakerOutput) Resume() error        { return speaker.Resume() }
func (speakerOutput) Close()               { speaker.Close() }

// Player holds a WAV clip in memory and plays it at a fixed gain.
type Player struct {
	mu     sync.Mutex
	clip   []byte
	format beep.Format
	gain   float64
	out    Output
	ready  bool
	closed bool
}

// Load reads the clip at path into memory. volume is a linear gain in (0, 1].
func Load(path string, volume float64) (*Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAssetMissing, "SoundMissing", fmt.Sprintf("%s: %v", path, err))
	}
	return New(data, volume, speakerOutput{})
}

// New creates a player for an in-memory WAV clip on out.
func New(clip []byte, volume float64, out Output) (*Player, error) {
	stream, format, err := wav.Decode(bytes.NewReader(clip))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAssetMissing, "SoundDecode", err.Error())
	}
	_ = stream.Close()

	if volume <= 0 || volume > 1 {
		volume = 1
	}
	return &Player{
		clip:   clip,
		format: format,
		gain:   math.Log10(volume),
		out:    out,
	}, nil
}

// Format returns the decoded clip format.
func (p *Player) Format() beep.Format { return p.format }

// Gain returns the base-10 exponent applied to every sample.
func (p *Player) Gain() float64 { return p.gain }

// Play decodes the clip from the start, plays it and blocks until playback
// finishes or ctx is done. The device is opened on first use at the clip's
// sample rate and suspended again after each clip.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return apperrors.Wrap(apperrors.ErrAudioDevice, "SpeakerClosed", "player is closed")
	}

	stream, _, err := wav.Decode(bytes.NewReader(p.clip))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrAudioDevice, "SoundDecode", err.Error())
	}
	defer stream.Close()

	if err := p.openLocked(); err != nil {
		return err
	}

	done := make(chan struct{})
	quiet := &effects.Volume{Streamer: stream, Base: 10, Volume: p.gain}
	p.out.Play(beep.Seq(quiet, beep.Callback(func() { close(done) })))

	var playErr error
	select {
	case <-done:
	case <-ctx.Done():
		playErr = ctx.Err()
	}
	p.out.Clear()

	if err := p.out.Suspend(); err != nil && playErr == nil {
		playErr = apperrors.Wrap(apperrors.ErrAudioDevice, "SpeakerSuspend", err.Error())
	}
	return playErr
}

// openLocked initializes the device once, or resumes it on later calls.
// A failed Init is retried on the next call.
func (p *Player) openLocked() error {
	if !p.ready {
		if err := p.out.Init(p.format.SampleRate, p.format.SampleRate.N(bufferDuration)); err != nil {
			return apperrors.Wrap(apperrors.ErrAudioDevice, "SpeakerInit", err.Error())
		}
		p.ready = true
		return nil
	}
	if err := p.out.Resume(); err != nil {
		return apperrors.Wrap(apperrors.ErrAudioDevice, "SpeakerResume", err.Error())
	}
	return nil
}

// Close releases the device. Later calls to Play fail.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.ready {
		p.out.Close()
	}
}
