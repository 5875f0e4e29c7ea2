// Package terminal detects the terminal emulator hosting the process and
// the image capabilities it supports.
//
// Detection is split into two layers:
//   - Layer 1 (BrandFromEnv): environment variable inspection, 0ms, no I/O.
//   - Layer 2 (Detect): a single burst of query sequences whose replies are
//     read back in raw mode and parsed into an Emulator snapshot.
//
// Layer 1 only pre-resolves a brand. Layer 2 always runs, because cell
// size and background color can only be learned from the terminal itself.
package terminal

import (
	"os"
	"strings"
)

// Getenv looks up an environment variable. os.Getenv satisfies it; tests
// pass a map lookup.
type Getenv func(string) string

// MapEnv adapts a map to Getenv.
func MapEnv(m map[string]string) Getenv {
	return func(k string) string { return m[k] }
}

// BrandFromEnv identifies the terminal emulator from environment variables.
// Signals are checked in order of reliability:
//
//  1. Terminal-specific vars (KITTY_WINDOW_ID, KONSOLE_VERSION, WT_Session, ...)
//  2. TERM, which encodes identity in kitty, foot, ghostty, rio and urxvt
//  3. TERM_PROGRAM, set by most macOS and Electron terminals
//
// Multiplexers are deliberately not brands here: inside tmux the variables
// above still describe the outer terminal, and the probe confirms the rest.
func BrandFromEnv(getenv Getenv) (Brand, bool) {
	if getenv == nil {
		getenv = os.Getenv
	}

	// Layer 1: vars that only one emulator sets.
	for _, v := range []struct {
		name  string
		brand Brand
	}{
		{"KITTY_WINDOW_ID", BrandKitty},
		{"KONSOLE_VERSION", BrandKonsole},
		{"ITERM_SESSION_ID", BrandIterm2},
		{"WEZTERM_EXECUTABLE", BrandWezTerm},
		{"GHOSTTY_RESOURCES_DIR", BrandGhostty},
		{"WT_Session", BrandMicrosoft},
		{"WARP_HONOR_PS1", BrandWarp},
		{"VSCODE_INJECTION", BrandVSCode},
		{"TABBY_CONFIG_DIRECTORY", BrandTabby},
	} {
		if getenv(v.name) != "" {
			return v.brand, true
		}
	}

	// Layer 2: TERM value.
	switch term := getenv("TERM"); {
	case term == "xterm-kitty":
		return BrandKitty, true
	case term == "foot", term == "foot-extra":
		return BrandFoot, true
	case term == "xterm-ghostty":
		return BrandGhostty, true
	case term == "rio":
		return BrandRio, true
	case strings.HasPrefix(term, "rxvt-unicode"):
		return BrandUrxvt, true
	}

	// Layer 3: TERM_PROGRAM.
	switch getenv("TERM_PROGRAM") {
	case "iTerm.app":
		return BrandIterm2, true
	case "WezTerm":
		return BrandWezTerm, true
	case "ghostty":
		return BrandGhostty, true
	case "WarpTerminal":
		return BrandWarp, true
	case "rio":
		return BrandRio, true
	case "BlackBox":
		return BrandBlackBox, true
	case "vscode":
		return BrandVSCode, true
	case "Tabby":
		return BrandTabby, true
	case "Hyper":
		return BrandHyper, true
	case "mintty":
		return BrandMintty, true
	case "Apple_Terminal":
		return BrandApple, true
	}

	return 0, false
}
