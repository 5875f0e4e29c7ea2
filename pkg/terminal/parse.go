package terminal

import (
	"log/slog"
	"strconv"
	"strings"
)

// Probe reply markers.
const (
	kgpOK          = "\x1b_Gi=31;OK"
	cellSizePrefix = "\x1b[6;"
	bgColorPrefix  = "]11;rgb:"
)

// sixelMarkers are DA1 attribute fragments announcing Sixel (attribute 4).
var sixelMarkers = []string{"?4;", "?4c", ";4;", ";4c"}

// hasKGP reports whether the terminal acknowledged the graphics probe.
func hasKGP(resp string) bool {
	return strings.Contains(resp, kgpOK)
}

// hasSixel reports whether the DA1 reply lists Sixel support.
func hasSixel(resp string) bool {
	for _, m := range sixelMarkers {
		if strings.Contains(resp, m) {
			return true
		}
	}
	return false
}

// cellSize parses the text area size report ESC [ 6 ; H ; W t. Anything
// other than two non-empty digit runs separated by ';' and followed by 't'
// yields false, as does a zero or out of range dimension.
func cellSize(resp string) (CellSize, bool) {
	_, rest, ok := strings.Cut(resp, cellSizePrefix)
	if !ok {
		return CellSize{}, false
	}

	h := digitRun(rest)
	if h == 0 || len(rest) <= h || rest[h] != ';' {
		return CellSize{}, false
	}
	hs, rest := rest[:h], rest[h+1:]

	w := digitRun(rest)
	if w == 0 || len(rest) <= w || rest[w] != 't' {
		return CellSize{}, false
	}

	height, err := strconv.ParseUint(hs, 10, 16)
	if err != nil {
		return CellSize{}, false
	}
	width, err := strconv.ParseUint(rest[:w], 10, 16)
	if err != nil {
		return CellSize{}, false
	}
	if width == 0 || height == 0 {
		return CellSize{}, false
	}
	return CellSize{Width: uint16(width), Height: uint16(height)}, true
}

// digitRun returns the length of the leading ASCII digit run of s.
func digitRun(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

// lightBackground classifies the OSC 11 background color reply. The first
// two hex digits of each channel are weighted with Rec. 2020 luma
// coefficients; anything above 0.6 is a light background. A missing or
// malformed reply counts as dark.
func lightBackground(resp string, log *slog.Logger) bool {
	_, s, ok := strings.Cut(resp, bgColorPrefix)
	if !ok || len(s) < 14 {
		log.Warn("failed to detect background color", "resp", strconv.Quote(resp))
		return false
	}

	var ch [3]float64
	for i, off := range [3]int{0, 5, 10} {
		v, err := strconv.ParseUint(s[off:off+2], 16, 8)
		if err != nil {
			log.Warn("failed to parse background color", "color", strconv.Quote(s[:14]), "error", err)
			return false
		}
		ch[i] = float64(v)
	}

	luma := ch[0]*0.2627/256 + ch[1]*0.6780/256 + ch[2]*0.0593/256
	log.Debug("detected background color", "color", s[:14], "luma", strconv.FormatFloat(luma, 'f', 2, 64))
	return luma > 0.6
}
