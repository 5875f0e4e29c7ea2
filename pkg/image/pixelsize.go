// Package image sizes images for the terminal cell grid using the cell
// pixel size learned by terminal detection.
package image

import (
	"math"

	"gitlab.com/tinyland/lab/termprobe/pkg/terminal"
)

// DefaultCellW and DefaultCellH are fallback cell pixel dimensions used
// when neither the probe nor the window size reveals them. They match a
// common 8x16 bitmap font.
const (
	DefaultCellW = 8
	DefaultCellH = 16
)

// CellSize returns the pixel size of one cell for the detected emulator.
// It prefers the probed CSI 16 t answer, then the TIOCGWINSZ pixel
// dimensions in size, then DefaultCellW x DefaultCellH.
func CellSize(emu terminal.Emulator, size terminal.Size) (w, h int) {
	if cs, ok := emu.CellSizeOr(size); ok {
		return int(cs.Width), int(cs.Height)
	}
	return DefaultCellW, DefaultCellH
}

// Fit returns the cell footprint (cols, rows) for an imgW x imgH image on
// the detected terminal, bounded by maxCols x maxRows.
func Fit(imgW, imgH int, emu terminal.Emulator, size terminal.Size, maxCols, maxRows int) (cols, rows int) {
	cellW, cellH := CellSize(emu, size)
	return PixelPerfectSize(imgW, imgH, cellW, cellH, maxCols, maxRows)
}

// PixelPerfectSize calculates the number of terminal cells (cols, rows)
// needed to display an imgW x imgH image on cellW x cellH pixel cells. The
// result keeps the source aspect ratio and does not exceed maxCols or
// maxRows. Images that fit at native resolution are not scaled up.
func PixelPerfectSize(imgW, imgH, cellW, cellH, maxCols, maxRows int) (cols, rows int) {
	if imgW <= 0 || imgH <= 0 {
		return 1, 1
	}
	if cellW <= 0 {
		cellW = DefaultCellW
	}
	if cellH <= 0 {
		cellH = DefaultCellH
	}
	maxCols = max(maxCols, 1)
	maxRows = max(maxRows, 1)

	nativeCols := int(math.Ceil(float64(imgW) / float64(cellW)))
	nativeRows := int(math.Ceil(float64(imgH) / float64(cellH)))
	if nativeCols <= maxCols && nativeRows <= maxRows {
		return nativeCols, nativeRows
	}

	// Scale down: fit by width first, then by height if rows overflow.
	aspect := float64(imgW) / float64(imgH)
	cols = maxCols
	rows = max(int(math.Round(float64(cols*cellW)/aspect/float64(cellH))), 1)
	if rows > maxRows {
		rows = maxRows
		cols = max(int(math.Round(float64(rows*cellH)*aspect/float64(cellW))), 1)
	}

	return min(cols, maxCols), min(rows, maxRows)
}
