package ui

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/olivier-w/spectty/internal/visualizer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeEngine reports playing for a fixed number of checks.
type fakeEngine struct {
	playFor   int
	checks    int
	updates   int
	stops     int
	updateErr error
	stopErr   error
}

func (e *fakeEngine) Update() error {
	e.updates++
	return e.updateErr
}

func (e *fakeEngine) IsPlaying() bool {
	e.checks++
	return e.playFor < 0 || e.checks <= e.playFor
}

func (e *fakeEngine) Stop() error {
	e.stops++
	return e.stopErr
}

// fakeKeys reports a key press on the given poll.
type fakeKeys struct {
	pressOn int
	polls   int
}

func (k *fakeKeys) Pressed() bool {
	k.polls++
	return k.pressOn > 0 && k.polls >= k.pressOn
}

type zeroTransform struct{}

func (zeroTransform) Transform(s []float64) []complex128 { return make([]complex128, len(s)) }

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

type harness struct {
	engine *fakeEngine
	canvas *visualizer.Canvas
	out    *bytes.Buffer
	cfg    Config
}

func newHarness(engine *fakeEngine, rows, cols, n int) *harness {
	h := &harness{
		engine: engine,
		canvas: visualizer.NewCanvas(rows, cols),
		out:    &bytes.Buffer{},
	}
	h.cfg = Config{
		Engine:   engine,
		Ring:     visualizer.NewSampleRing(n),
		Spectrum: visualizer.NewSpectrum(zeroTransform{}, n),
		Canvas:   h.canvas,
		Renderer: visualizer.NewRenderer(rand.New(rand.NewPCG(1, 1))),
		Out:      h.out,
		Interval: time.Microsecond,
	}
	return h
}

func TestLoopRunsUntilEndOfStream(t *testing.T) {
	h := newHarness(&fakeEngine{playFor: 3}, 2, 4, 8)
	l := NewLoop(h.cfg)
	require.Equal(t, Running, l.State())

	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, Stopped, l.State())
	assert.Equal(t, ReasonEndOfStream, l.StopReason())
	assert.Equal(t, 3, h.engine.updates)
	assert.Equal(t, 1, h.engine.stops)
	assert.Equal(t, 3, strings.Count(h.out.String(), "\x1b[2J"))
	assert.Zero(t, h.canvas.Rows(), "canvas should be released")
}

func TestLoopFrameOutput(t *testing.T) {
	h := newHarness(&fakeEngine{playFor: 1}, 3, 5, 8)
	require.NoError(t, NewLoop(h.cfg).Run(context.Background()))

	want := "\x1b[1;1H\x1b[2J" + "     \n     \n     " + "\r"
	assert.Equal(t, want, h.out.String())
}

func TestLoopStopsOnKey(t *testing.T) {
	keys := &fakeKeys{pressOn: 4}
	h := newHarness(&fakeEngine{playFor: -1}, 2, 2, 8)
	h.cfg.Keys = keys

	l := NewLoop(h.cfg)
	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, ReasonKey, l.StopReason())
	assert.Equal(t, 3, h.engine.updates)
	assert.Equal(t, 1, h.engine.stops)
}

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newHarness(&fakeEngine{playFor: -1}, 2, 2, 8)
	l := NewLoop(h.cfg)
	require.NoError(t, l.Run(ctx))

	assert.Equal(t, ReasonCancelled, l.StopReason())
	assert.Zero(t, h.engine.updates)
	assert.Equal(t, 1, h.engine.stops)
	assert.Equal(t, Stopped, l.State())
}

func TestLoopCancelDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newHarness(&fakeEngine{playFor: -1}, 2, 2, 8)
	h.cfg.Interval = time.Hour

	done := make(chan error, 1)
	l := NewLoop(h.cfg)
	go func() { done <- l.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not observe cancellation during sleep")
	}
	assert.Equal(t, ReasonCancelled, l.StopReason())
}

func TestLoopReturnsDrawError(t *testing.T) {
	h := newHarness(&fakeEngine{playFor: -1}, 2, 2, 8)
	h.cfg.Out = errWriter{}

	l := NewLoop(h.cfg)
	err := l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draw frame")
	assert.Equal(t, ReasonError, l.StopReason())
	assert.Equal(t, 1, h.engine.stops)
	assert.Equal(t, Stopped, l.State())
}

func TestLoopReturnsWindowMismatch(t *testing.T) {
	h := newHarness(&fakeEngine{playFor: -1}, 2, 2, 8)
	h.cfg.Spectrum = visualizer.NewSpectrum(zeroTransform{}, 16)

	err := NewLoop(h.cfg).Run(context.Background())
	assert.ErrorIs(t, err, visualizer.ErrWindowSize)
}

func TestLoopKeepsGoingAfterUpdateError(t *testing.T) {
	h := newHarness(&fakeEngine{playFor: 5, updateErr: errors.New("bad frame")}, 2, 2, 8)
	l := NewLoop(h.cfg)
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 5, h.engine.updates)
	assert.Equal(t, ReasonEndOfStream, l.StopReason())
}

func TestLoopStopErrorDoesNotFailRun(t *testing.T) {
	h := newHarness(&fakeEngine{playFor: 0, stopErr: errors.New("already closed")}, 2, 2, 8)
	require.NoError(t, NewLoop(h.cfg).Run(context.Background()))
}

func TestLoopRunTwice(t *testing.T) {
	h := newHarness(&fakeEngine{playFor: 0}, 2, 2, 8)
	l := NewLoop(h.cfg)
	require.NoError(t, l.Run(context.Background()))
	assert.Error(t, l.Run(context.Background()))
	assert.Equal(t, 1, h.engine.stops)
}

func TestLoopDrawsPushedSignal(t *testing.T) {
	const n = 64
	h := newHarness(&fakeEngine{playFor: 1}, 8, 16, n)
	h.cfg.Spectrum = visualizer.NewSpectrum(visualizer.FFT{}, n)
	for range n {
		h.cfg.Ring.Push(1) // all energy in the DC bin: |bin0| = 64, smoothed to 6.4
	}

	require.NoError(t, NewLoop(h.cfg).Run(context.Background()))

	// ln(6.4)*8 rounds to 15 rows, clipped to the 8-row canvas, in the
	// middle column; every other bin is empty
	frame := strings.TrimPrefix(h.out.String(), "\x1b[1;1H\x1b[2J")
	frame = strings.TrimSuffix(frame, "\r")
	for y, row := range strings.Split(frame, "\n") {
		require.Len(t, row, 16)
		for x := range row {
			filled := row[x] != ' '
			assert.Equalf(t, x == 8, filled, "cell (%d,%d)", x, y)
		}
	}
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopping", Stopping.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "end of stream", ReasonEndOfStream.String())
	assert.Equal(t, "none", ReasonNone.String())
}
