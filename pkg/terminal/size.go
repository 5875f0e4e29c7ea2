package terminal

import (
	"os"
	"strconv"
)

// Size represents terminal dimensions in both character cells and pixels.
type Size struct {
	Cols   int // Character columns
	Rows   int // Character rows
	PixelW int // Total pixel width (0 if unknown)
	PixelH int // Total pixel height (0 if unknown)
}

// GetSize returns the current terminal dimensions. It tries multiple
// strategies in order:
//  1. TIOCGWINSZ on stdout, then stderr (cells and, often, pixels)
//  2. COLUMNS/LINES environment variables
//  3. Fallback to 80x24
func GetSize() Size {
	for _, fd := range []uintptr{os.Stdout.Fd(), os.Stderr.Fd()} {
		if s := getSizeFromIoctl(fd); s.Cols > 0 && s.Rows > 0 {
			return s
		}
	}
	return getSizeFromEnv()
}

// CellSizeOr returns the probed cell size, or derives one from the window
// size when the terminal did not answer CSI 16 t. ok is false when neither
// source knows the pixel dimensions.
func (e Emulator) CellSizeOr(s Size) (cs CellSize, ok bool) {
	if e.CellSize != nil {
		return *e.CellSize, true
	}
	if s.PixelW <= 0 || s.PixelH <= 0 || s.Cols <= 0 || s.Rows <= 0 {
		return CellSize{}, false
	}
	w, h := s.PixelW/s.Cols, s.PixelH/s.Rows
	if w <= 0 || h <= 0 || w > 0xffff || h > 0xffff {
		return CellSize{}, false
	}
	return CellSize{Width: uint16(w), Height: uint16(h)}, true
}

// Ratio returns how many cells one pixel spans horizontally and
// vertically, the inverse of the cell size. ok is false when the cell size
// is unknown.
func (e Emulator) Ratio(s Size) (x, y float64, ok bool) {
	cs, ok := e.CellSizeOr(s)
	if !ok {
		return 0, 0, false
	}
	return 1 / float64(cs.Width), 1 / float64(cs.Height), true
}

// getSizeFromEnv reads terminal dimensions from COLUMNS/LINES environment
// variables, falling back to 80x24 defaults.
func getSizeFromEnv() Size {
	return Size{Cols: envInt("COLUMNS", 80), Rows: envInt("LINES", 24)}
}

// envInt reads a positive integer from the named environment variable,
// returning fallback if it is unset or invalid.
func envInt(name string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
