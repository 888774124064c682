// Package ui drives the terminal side of the program: the fixed-rate frame
// loop, the exit-key poller and terminal geometry.
package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/olivier-w/spectty/internal/visualizer"
)

// FrameInterval is the pause between frames.
const FrameInterval = 10 * time.Millisecond

// State is the loop's lifecycle stage.
type State int

const (
	Running State = iota
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StopReason records why the loop left Running.
type StopReason int

const (
	ReasonNone StopReason = iota
	ReasonKey
	ReasonEndOfStream
	ReasonCancelled
	ReasonError
)

func (r StopReason) String() string {
	switch r {
	case ReasonKey:
		return "key"
	case ReasonEndOfStream:
		return "end of stream"
	case ReasonCancelled:
		return "cancelled"
	case ReasonError:
		return "error"
	default:
		return "none"
	}
}

// Engine is the playback side the loop drives once per frame.
type Engine interface {
	Update() error
	IsPlaying() bool
	Stop() error
}

// KeySource reports, without blocking, whether a key arrived.
type KeySource interface {
	Pressed() bool
}

// Config wires a Loop.
type Config struct {
	Engine   Engine
	Ring     *visualizer.SampleRing
	Spectrum *visualizer.Spectrum
	Canvas   *visualizer.Canvas
	Renderer *visualizer.Renderer
	Keys     KeySource
	Out      io.Writer
	Interval time.Duration
	Log      *slog.Logger
}

// Loop redraws the spectrum once per frame until a key arrives, playback
// ends or the context is cancelled.
type Loop struct {
	cfg    Config
	log    *slog.Logger
	window []float64
	state  State
	reason StopReason

	updateFailed bool
}

// NewLoop creates a Loop in the Running state.
func NewLoop(cfg Config) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = FrameInterval
	}
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.DiscardHandler)
	}
	if cfg.Renderer == nil {
		cfg.Renderer = visualizer.NewRenderer(nil)
	}
	return &Loop{
		cfg:    cfg,
		log:    cfg.Log,
		window: make([]float64, cfg.Ring.Len()),
		state:  Running,
	}
}

// State returns the current lifecycle stage.
func (l *Loop) State() State { return l.state }

// StopReason returns why the loop stopped, or ReasonNone while running.
func (l *Loop) StopReason() StopReason { return l.reason }

// Run executes frames until the loop stops. Playback is stopped and the
// canvas released on every return path.
func (l *Loop) Run(ctx context.Context) error {
	if l.state != Running {
		return fmt.Errorf("loop already %s", l.state)
	}

	timer := time.NewTimer(l.cfg.Interval)
	timer.Stop()
	defer func() {
		timer.Stop()
		l.shutdown()
	}()

	for {
		if reason := l.exitCondition(ctx); reason != ReasonNone {
			l.leave(reason)
			return nil
		}
		if err := l.frame(); err != nil {
			l.leave(ReasonError)
			return err
		}

		timer.Reset(l.cfg.Interval)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}

func (l *Loop) exitCondition(ctx context.Context) StopReason {
	switch {
	case ctx.Err() != nil:
		return ReasonCancelled
	case l.cfg.Keys != nil && l.cfg.Keys.Pressed():
		return ReasonKey
	case !l.cfg.Engine.IsPlaying():
		return ReasonEndOfStream
	}
	return ReasonNone
}

func (l *Loop) frame() error {
	if err := l.cfg.Engine.Update(); err != nil && !l.updateFailed {
		// the stream keeps playing whatever was decoded; IsPlaying ends the loop
		l.updateFailed = true
		l.log.Warn("audio decode failed", "err", err)
	}

	l.cfg.Ring.SnapshotInto(l.window)
	mags, err := l.cfg.Spectrum.Compute(l.window)
	if err != nil {
		return err
	}

	l.cfg.Canvas.Clear()
	l.cfg.Renderer.Render(l.cfg.Canvas, mags)
	if err := l.cfg.Canvas.Flush(l.cfg.Out); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

func (l *Loop) leave(reason StopReason) {
	l.state = Stopping
	l.reason = reason
	l.log.Debug("leaving frame loop", "reason", reason)
}

func (l *Loop) shutdown() {
	if err := l.cfg.Engine.Stop(); err != nil {
		l.log.Warn("stop playback", "err", err)
	}
	l.cfg.Canvas.Release()
	l.state = Stopped
}
