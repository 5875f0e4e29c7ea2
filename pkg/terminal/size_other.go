//go:build !unix

package terminal

import "github.com/charmbracelet/x/term"

// getSizeFromIoctl asks the console for its cell dimensions. Pixel sizes
// are not available here, so cell size must come from the probe.
func getSizeFromIoctl(fd uintptr) Size {
	w, h, err := term.GetSize(fd)
	if err != nil {
		return Size{}
	}
	return Size{Cols: w, Rows: h}
}
