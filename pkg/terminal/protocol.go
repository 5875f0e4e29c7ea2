package terminal

import "strings"

// Adapter identifies an image display strategy that downstream rendering
// code can use on the detected terminal.
type Adapter int

const (
	AdapterNone       Adapter = iota // No image display
	AdapterKgp                       // Kitty graphics protocol (Unicode placeholders)
	AdapterKgpOld                    // Kitty graphics protocol, direct placement (Konsole, Warp)
	AdapterIip                       // iTerm2 inline images protocol
	AdapterSixel                     // Sixel graphics
	AdapterHalfblocks                // Unicode half-block characters with ANSI color
)

// adapterNames maps Adapter values to human-readable strings.
var adapterNames = [...]string{
	AdapterNone:       "none",
	AdapterKgp:        "kgp",
	AdapterKgpOld:     "kgp-old",
	AdapterIip:        "iip",
	AdapterSixel:      "sixel",
	AdapterHalfblocks: "halfblocks",
}

// String returns the human-readable name of the adapter.
func (a Adapter) String() string {
	if a >= 0 && int(a) < len(adapterNames) {
		return adapterNames[a]
	}
	return "unknown"
}

// IsPixel reports whether the adapter draws real pixels rather than
// character cells.
func (a Adapter) IsPixel() bool {
	switch a {
	case AdapterKgp, AdapterKgpOld, AdapterIip, AdapterSixel:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler so adapters serialize by
// name in YAML and JSON output.
func (a Adapter) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAdapter maps a user-supplied adapter name to an Adapter. Several
// aliases are accepted for compatibility with older configuration files.
func ParseAdapter(name string) (Adapter, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kgp", "kitty":
		return AdapterKgp, true
	case "kgp-old", "kgp_old", "kitty-old":
		return AdapterKgpOld, true
	case "iip", "iterm2":
		return AdapterIip, true
	case "sixel":
		return AdapterSixel, true
	case "halfblocks", "unicode", "half-blocks":
		return AdapterHalfblocks, true
	case "none", "off", "disabled":
		return AdapterNone, true
	default:
		return AdapterNone, false
	}
}

// SelectAdapter returns the adapter downstream rendering should use for the
// detected emulator. The selection follows a cascade:
//
//  1. A recognized override name wins ("auto" and "" mean no override).
//  2. Otherwise the first adapter the emulator advertises.
//  3. Otherwise AdapterHalfblocks, which works on any true color terminal.
func SelectAdapter(emu Emulator, override string) Adapter {
	if override != "" && !strings.EqualFold(override, "auto") {
		if a, ok := ParseAdapter(override); ok {
			return a
		}
	}
	if adapters := emu.Adapters(); len(adapters) > 0 {
		return adapters[0]
	}
	return AdapterHalfblocks
}
