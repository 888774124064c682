package visualizer

import (
	"errors"
	"fmt"
	"math/cmplx"
)

// Smoothing is the weight given to the newest magnitude; the remainder goes
// to the previous frame.
const Smoothing = 0.1

// ErrWindowSize is returned when a sample window does not match the
// configured transform length.
var ErrWindowSize = errors.New("window size mismatch")

// Spectrum turns sample windows into per-bin magnitudes smoothed across
// frames with a one-pole low-pass filter.
type Spectrum struct {
	transform Transform
	current   []float64
	previous  []float64
}

// NewSpectrum creates a Spectrum for windows of n samples. All history
// starts at zero.
func NewSpectrum(t Transform, n int) *Spectrum {
	if t == nil {
		t = FFT{}
	}
	return &Spectrum{
		transform: t,
		current:   make([]float64, n),
		previous:  make([]float64, n),
	}
}

// Compute transforms raw and blends each bin modulus into the history:
//
//	current[i] = Smoothing*|bin[i]| + (1-Smoothing)*previous[i]
//
// The returned slice is owned by the Spectrum and stays valid until the next call.
func (s *Spectrum) Compute(raw []float64) ([]float64, error) {
	n := len(s.current)
	if len(raw) != n {
		return nil, fmt.Errorf("compute spectrum: got %d samples, want %d: %w", len(raw), n, ErrWindowSize)
	}

	bins := s.transform.Transform(raw)
	if len(bins) != n {
		return nil, fmt.Errorf("compute spectrum: transform returned %d bins, want %d: %w", len(bins), n, ErrWindowSize)
	}

	for i, b := range bins {
		s.current[i] = Smoothing*cmplx.Abs(b) + (1-Smoothing)*s.previous[i]
	}
	copy(s.previous, s.current)
	return s.current, nil
}

// Previous returns the history that the next Compute call blends against.
func (s *Spectrum) Previous() []float64 {
	return s.previous
}
