package visualizer

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Transform turns a window of real samples into the same number of complex
// frequency bins. The returned slice may be reused by the next call.
type Transform interface {
	Transform(samples []float64) []complex128
}

// FFT is the default transform, backed by go-dsp.
type FFT struct{}

func (FFT) Transform(samples []float64) []complex128 {
	return fft.FFTReal(samples)
}

// Radix2 is an iterative Cooley-Tukey transform that reuses its buffers
// between calls. The window length must be a power of two.
type Radix2 struct {
	re, im []float64
	out    []complex128
}

func (r *Radix2) Transform(samples []float64) []complex128 {
	n := len(samples)
	if len(r.re) != n {
		r.re = make([]float64, n)
		r.im = make([]float64, n)
		r.out = make([]complex128, n)
	}
	copy(r.re, samples)
	clear(r.im)

	radix2(r.re, r.im)

	for i := range n {
		r.out[i] = complex(r.re[i], r.im[i])
	}
	return r.out
}

// radix2 transforms re/im in place.
func radix2(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := -2.0 * math.Pi / float64(size)
		for start := 0; start < n; start += size {
			for k := range half {
				wi, wr := math.Sincos(step * float64(k))
				a := start + k
				b := a + half
				tr := wr*re[b] - wi*im[b]
				ti := wr*im[b] + wi*re[b]
				re[b] = re[a] - tr
				im[b] = im[a] - ti
				re[a] += tr
				im[a] += ti
			}
		}
	}
}

// TransformByName returns the transform registered under name.
func TransformByName(name string) (Transform, bool) {
	switch name {
	case "", "fft":
		return FFT{}, true
	case "radix2":
		return &Radix2{}, true
	default:
		return nil, false
	}
}
