package visualizer

import (
	"math"
	"math/rand/v2"
)

const (
	// YScale is the number of rows per unit of natural-log magnitude.
	YScale = 8

	glyphLow  = 33
	glyphHigh = 121
)

// Renderer draws log-scaled spectrum bars into a Canvas. Bin 0 lands in the
// middle column so the left half mirrors the right.
type Renderer struct {
	rng *rand.Rand
}

// NewRenderer creates a Renderer drawing glyphs from rng. A nil rng uses a
// randomly seeded source.
func NewRenderer(rng *rand.Rand) *Renderer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Renderer{rng: rng}
}

// Column returns the bin shown by canvas column i and the x position it is
// drawn at, for a canvas cols wide and n bins.
func Column(i, cols, n int) (bin, x int) {
	bin = int(math.Round(float64(n) * float64(i) / float64(cols)))
	if bin > n-1 {
		bin = n - 1
	}
	if bin < 0 {
		bin = 0
	}
	x = (i + cols/2) % cols
	return bin, x
}

// TopRow returns the first row above a bar of magnitude mag on a canvas rows tall.
// Magnitudes below 1 (and NaN) are floored to 1, giving an empty bar; bars
// taller than the canvas are clipped to it.
func TopRow(mag float64, rows int) int {
	if !(mag >= 1) {
		mag = 1
	}
	height := math.Round(math.Log(mag) * YScale)
	if height > float64(rows) {
		height = float64(rows)
	}
	return rows - 1 - int(height)
}

// Render fills one bar per canvas column. It does not clear the canvas.
func (r *Renderer) Render(c *Canvas, mags []float64) {
	cols, rows := c.Cols(), c.Rows()
	if cols == 0 || rows == 0 || len(mags) == 0 {
		return
	}

	for i := range cols {
		bin, x := Column(i, cols, len(mags))
		top := TopRow(mags[bin], rows)
		for y := rows - 1; y > top; y-- {
			c.Write(x, y, r.glyph())
		}
	}
}

func (r *Renderer) glyph() byte {
	return byte(glyphLow + r.rng.IntN(glyphHigh-glyphLow+1))
}
