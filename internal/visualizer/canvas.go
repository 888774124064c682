package visualizer

import "io"

const (
	blank = ' '

	// clearScreen homes the cursor and erases the display.
	clearScreen = "\x1b[1;1H\x1b[2J"
)

type flusher interface {
	Flush() error
}

// Canvas is a fixed rows×cols character grid stored row-major.
// Writes outside the grid are ignored.
type Canvas struct {
	rows  int
	cols  int
	cells []byte
	frame []byte
}

// NewCanvas allocates a blank canvas. Non-positive dimensions yield an empty
// canvas that ignores every write.
func NewCanvas(rows, cols int) *Canvas {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	c := &Canvas{
		rows:  rows,
		cols:  cols,
		cells: make([]byte, rows*cols),
	}
	c.Clear()
	return c
}

func (c *Canvas) Rows() int { return c.rows }
func (c *Canvas) Cols() int { return c.cols }

// Clear resets every cell to a space.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = blank
	}
}

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.cols && y >= 0 && y < c.rows
}

// Write sets the cell at column x, row y.
func (c *Canvas) Write(x, y int, ch byte) {
	if !c.inBounds(x, y) {
		return
	}
	c.cells[y*c.cols+x] = ch
}

// At returns the cell at column x, row y, or a space when out of bounds.
func (c *Canvas) At(x, y int) byte {
	if !c.inBounds(x, y) {
		return blank
	}
	return c.cells[y*c.cols+x]
}

// Row returns row y as a string.
func (c *Canvas) Row(y int) string {
	if y < 0 || y >= c.rows {
		return ""
	}
	return string(c.cells[y*c.cols : (y+1)*c.cols])
}

// Flush repaints the whole screen: clear and home, every row separated by a
// newline, then a carriage return. If w buffers output it is flushed too.
func (c *Canvas) Flush(w io.Writer) error {
	buf := c.frame[:0]
	buf = append(buf, clearScreen...)
	for y := range c.rows {
		if y > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, c.cells[y*c.cols:(y+1)*c.cols]...)
	}
	buf = append(buf, '\r')
	c.frame = buf

	if _, err := w.Write(buf); err != nil {
		return err
	}
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Release drops the grid storage. The canvas behaves as 0×0 afterwards.
func (c *Canvas) Release() {
	c.rows, c.cols = 0, 0
	c.cells = nil
	c.frame = nil
}
