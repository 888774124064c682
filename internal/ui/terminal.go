package ui

import (
	"fmt"

	"golang.org/x/term"
)

// Geometry used when the terminal cannot be queried.
const (
	DefaultRows = 24
	DefaultCols = 80
)

// TerminalSize returns the rows and columns of the terminal on fd.
func TerminalSize(fd int) (rows, cols int, err error) {
	w, h, err := term.GetSize(fd)
	if err != nil {
		return 0, 0, fmt.Errorf("query terminal size: %w", err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("query terminal size: got %dx%d", w, h)
	}
	return h, w, nil
}
