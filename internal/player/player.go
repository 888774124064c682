package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	lookahead    = 100 * time.Millisecond
	deviceBuffer = 50 * time.Millisecond
)

var (
	// ErrDeviceUnavailable is returned when the audio output cannot be opened.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrClosed is returned by operations on a closed Player.
	ErrClosed = errors.New("player closed")
)

// output is the device side of a Player. *oto.Player satisfies it.
type output interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// Player plays one audio file and exposes the decoded stream to a
// StreamProcessor while it is being played.
type Player struct {
	file       *os.File
	dec        decoder
	src        *pcmSource
	out        output
	sampleRate int
	channels   int
	lookahead  int // samples

	mu      sync.Mutex
	started bool
	paused  bool
	stopped bool
	closed  bool
}

var (
	otoCtx     *oto.Context
	otoOpts    oto.NewContextOptions
	otoOnce    sync.Once
	otoInitErr error
)

// initOto creates the process-wide output context. Only one context may
// exist, so later calls must ask for the same format.
func initOto(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		otoOpts = oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   deviceBuffer,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(&otoOpts)
		if otoInitErr == nil {
			<-ready
		}
	})
	if otoInitErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, otoInitErr)
	}
	if otoOpts.SampleRate != sampleRate || otoOpts.ChannelCount != channels {
		return nil, fmt.Errorf("%w: device opened at %d Hz/%d ch, track needs %d Hz/%d ch",
			ErrDeviceUnavailable, otoOpts.SampleRate, otoOpts.ChannelCount, sampleRate, channels)
	}
	return otoCtx, nil
}

// Open decodes the file at path and prepares it for playback on the default
// output device. Playback starts with Play.
func Open(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	p, err := newPlayer(dec, func(r io.Reader) (output, error) {
		ctx, err := initOto(dec.sampleRate(), dec.channels())
		if err != nil {
			return nil, err
		}
		return ctx.NewPlayer(r), nil
	})
	if err != nil {
		dec.close()
		f.Close()
		return nil, err
	}
	p.file = f
	return p, nil
}

func newPlayer(dec decoder, open func(io.Reader) (output, error)) (*Player, error) {
	rate, channels := dec.sampleRate(), dec.channels()
	if rate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", rate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}

	src := newPCMSource(dec)
	out, err := open(src)
	if err != nil {
		return nil, err
	}
	return &Player{
		dec:        dec,
		src:        src,
		out:        out,
		sampleRate: rate,
		channels:   channels,
		lookahead:  int(lookahead.Seconds()*float64(rate)) * channels,
	}, nil
}

// SampleRate returns the track sample rate in Hz.
func (p *Player) SampleRate() int { return p.sampleRate }

// Channels returns the number of interleaved channels handed to processors.
func (p *Player) Channels() int { return p.channels }

// AttachProcessor registers fn to receive every chunk sent to the device.
// A nil fn detaches the current processor.
func (p *Player) AttachProcessor(fn StreamProcessor) {
	p.src.attach(fn)
}

// Play starts playback, or resumes it after Pause.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.stopped {
		return fmt.Errorf("play: stream stopped")
	}
	if !p.started {
		if err := p.src.prefetch(p.lookahead); err != nil {
			return fmt.Errorf("play: %w", err)
		}
		p.started = true
	}
	p.paused = false
	p.out.Play()
	return nil
}

// Pause suspends playback, keeping the position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.stopped || !p.started {
		return
	}
	p.paused = true
	p.out.Pause()
}

// Resume continues after Pause.
func (p *Player) Resume() error {
	return p.Play()
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Stop halts playback for good. Further Play calls fail.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.stopped {
		return nil
	}
	p.stopped = true
	p.out.Pause()
	return nil
}

// Update decodes ahead so the device rarely waits on the decoder.
// It is meant to be called once per frame from the consumer loop.
func (p *Player) Update() error {
	p.mu.Lock()
	inactive := p.closed || p.stopped
	p.mu.Unlock()
	if inactive {
		return nil
	}
	if err := p.src.prefetch(p.lookahead); err != nil {
		return fmt.Errorf("update stream: %w", err)
	}
	return nil
}

// IsPlaying reports whether audio is still being played. It turns false
// once the stream has been fully played, or after Pause, Stop or Close.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.stopped || p.paused || !p.started {
		return false
	}
	// the device pauses itself after the source returns io.EOF and its
	// buffer runs out
	return p.out.IsPlaying()
}

// Err returns the decode error that ended the stream early, if any.
func (p *Player) Err() error {
	return p.src.decodeErr()
}

// Close stops playback and releases the device player, decoder and file.
// It is safe to call more than once.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.src.attach(nil)

	var errs []error
	p.out.Pause()
	if err := p.out.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close output: %w", err))
	}
	if err := p.dec.close(); err != nil {
		errs = append(errs, fmt.Errorf("close decoder: %w", err))
	}
	if p.file != nil {
		if err := p.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, fmt.Errorf("close file: %w", err))
		}
	}
	return errors.Join(errs...)
}
