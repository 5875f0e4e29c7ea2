package termtest

import "gitlab.com/tinyland/lab/termprobe/pkg/terminal"

func cell(w, h uint16) *terminal.CellSize {
	return &terminal.CellSize{Width: w, Height: h}
}

// ttGhosttyProfile returns the Ghostty terminal profile.
// Ghostty names itself in XTVERSION and answers every query.
func ttGhosttyProfile() Profile {
	return Profile{
		Name: "Ghostty",
		Env: map[string]string{
			"TERM_PROGRAM": "ghostty",
			"TERM":         "xterm-ghostty",
			"COLORTERM":    "truecolor",
		},
		Reply: "\x1bP>|ghostty 1.1.3\x1b\\" +
			"\x1b[6;17;8t" +
			"\x1b]11;rgb:2828/2c2c/3434\x1b\\" +
			"\x1b[?62;22c",
		Want:    "ghostty",
		Adapter: terminal.AdapterKgp,
		Cell:    cell(8, 17),
	}
}

// ttKittyProfile returns the Kitty terminal profile, here with a light theme.
func ttKittyProfile() Profile {
	return Profile{
		Name: "Kitty",
		Env: map[string]string{
			"TERM":            "xterm-kitty",
			"KITTY_WINDOW_ID": "1",
			"COLORTERM":       "truecolor",
		},
		Reply: "\x1bP>|kitty(0.39.1)\x1b\\" +
			"\x1b[6;20;10t" +
			"\x1b]11;rgb:ffff/ffff/ffff\x1b\\" +
			"\x1b[?62;c",
		Want:    "kitty",
		Adapter: terminal.AdapterKgp,
		Light:   true,
		Cell:    cell(10, 20),
	}
}

// ttWezTermProfile returns the WezTerm terminal profile.
// WezTerm lists Sixel in DA1 but prefers the iTerm2 protocol.
func ttWezTermProfile() Profile {
	return Profile{
		Name: "WezTerm",
		Env: map[string]string{
			"TERM_PROGRAM": "WezTerm",
			"TERM":         "xterm-256color",
		},
		Reply: "\x1bP>|WezTerm 20240203-110809-5046fc22\x1b\\" +
			"\x1b[6;16;8t" +
			"\x1b]11;rgb:0000/0000/0000\x1b\\" +
			"\x1b[?65;4;6;18;22c",
		Want:    "wezterm",
		Adapter: terminal.AdapterIip,
		Cell:    cell(8, 16),
	}
}

// ttITerm2Profile returns the iTerm2 terminal profile. It does not answer
// CSI 16 t or OSC 11 in this script.
func ttITerm2Profile() Profile {
	return Profile{
		Name: "iTerm2",
		Env: map[string]string{
			"TERM_PROGRAM":     "iTerm.app",
			"ITERM_SESSION_ID": "w0t0p0:6E1C1D9A",
		},
		Reply:   "\x1bP>|iTerm2 3.5.0\x1b\\\x1b[?62;4c",
		Want:    "iterm2",
		Adapter: terminal.AdapterIip,
	}
}

// ttFootProfile returns the foot terminal profile (Sixel only).
func ttFootProfile() Profile {
	return Profile{
		Name: "foot",
		Env: map[string]string{
			"TERM": "foot",
		},
		Reply: "\x1bP>|foot(1.16.2)\x1b\\" +
			"\x1b[6;18;9t" +
			"\x1b]11;rgb:ffff/ffff/dddd\x1b\\" +
			"\x1b[?62;4;22c",
		Want:    "foot",
		Adapter: terminal.AdapterSixel,
		Light:   true,
		Cell:    cell(9, 18),
	}
}

// ttAlacrittyProfile returns the Alacritty terminal profile. Alacritty has
// no image protocol and no brand entry, so it ends up Unknown.
func ttAlacrittyProfile() Profile {
	return Profile{
		Name: "Alacritty",
		Env: map[string]string{
			"TERM":      "alacritty",
			"COLORTERM": "truecolor",
		},
		Reply: "\x1b[6;16;8t" +
			"\x1b]11;rgb:1d1d/1f1f/2121\x1b\\" +
			"\x1b[?6c",
		Want:    "unknown",
		Adapter: terminal.AdapterHalfblocks,
		Cell:    cell(8, 16),
	}
}

// ttGenericKGPProfile is an unbranded terminal that acknowledges the Kitty
// graphics probe and lists Sixel. Sixel is preferred because the
// acknowledgement does not prove placeholder support.
func ttGenericKGPProfile() Profile {
	return Profile{
		Name: "Generic KGP",
		Env: map[string]string{
			"TERM": "xterm-256color",
		},
		Reply:   "\x1b_Gi=31;OK\x1b\\\x1b[?62;4c",
		Want:    "unknown",
		Adapter: terminal.AdapterSixel,
	}
}

// ttTmuxProfile runs an unbranded outer terminal under tmux. The graphics
// acknowledgement arrives after DA1, as tmux passthrough replies often do,
// and must be drained rather than parsed.
func ttTmuxProfile() Profile {
	return Profile{
		Name: "tmux",
		Env: map[string]string{
			"TMUX": "/tmp/tmux-1000/default,4242,0",
			"TERM": "tmux-256color",
		},
		Reply:   "\x1b[?1;2;4c" + "\x1b_Gi=31;OK\x1b\\",
		Want:    "unknown",
		Adapter: terminal.AdapterSixel,
	}
}

// ttAppleTerminalProfile returns the macOS Terminal.app profile: known by
// environment, no graphics.
func ttAppleTerminalProfile() Profile {
	return Profile{
		Name: "Apple Terminal",
		Env: map[string]string{
			"TERM_PROGRAM": "Apple_Terminal",
			"TERM":         "xterm-256color",
		},
		Reply:   "\x1b[?1;2c",
		Want:    "apple-terminal",
		Adapter: terminal.AdapterHalfblocks,
	}
}

// ttSilentProfile never answers, like a serial console or a broken
// passthrough.
func ttSilentProfile() Profile {
	return Profile{
		Name: "Silent",
		Env: map[string]string{
			"TERM": "vt100",
		},
		Want:    "unknown",
		Adapter: terminal.AdapterHalfblocks,
	}
}
