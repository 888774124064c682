package visualizer

import "sync"

// DefaultWindow is the number of samples kept by the ring and fed to the transform.
const DefaultWindow = 2048

// SampleRing is a fixed-size circular store of the most recent mono samples.
// The backing array and the write cursor are guarded by one mutex so that a
// snapshot never observes a half-applied push.
type SampleRing struct {
	mu  sync.Mutex
	buf []float32
	w   int // next slot to overwrite
}

// NewSampleRing creates a ring holding n zero-valued samples.
func NewSampleRing(n int) *SampleRing {
	if n <= 0 {
		n = DefaultWindow
	}
	return &SampleRing{buf: make([]float32, n)}
}

// Len returns the ring capacity.
func (r *SampleRing) Len() int { return len(r.buf) }

// Push overwrites the oldest sample with s.
func (r *SampleRing) Push(s float32) {
	r.mu.Lock()
	r.buf[r.w] = s
	r.w = (r.w + 1) % len(r.buf)
	r.mu.Unlock()
}

// PushFrames pushes the first channel of each interleaved frame. Channels
// after the first are skipped rather than mixed down.
func (r *SampleRing) PushFrames(samples []float32, frames, channels int) {
	if channels < 1 {
		channels = 1
	}
	if limit := len(samples) / channels; frames > limit {
		frames = limit
	}
	for i := range frames {
		r.Push(samples[i*channels])
	}
}

// SnapshotInto copies the ring in slot order into dst and returns the number
// of samples copied.
func (r *SampleRing) SnapshotInto(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(len(dst), len(r.buf))
	for i := range n {
		dst[i] = float64(r.buf[i])
	}
	return n
}

// Snapshot returns a fresh copy of the ring in slot order.
func (r *SampleRing) Snapshot() []float64 {
	out := make([]float64, len(r.buf))
	r.SnapshotInto(out)
	return out
}
