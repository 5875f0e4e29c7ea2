// Package termtest provides scripted terminal emulator profiles for
// exercising capability detection without a real terminal. Each profile
// carries the environment an emulator sets, the bytes it sends back for
// the probe burst, and the snapshot detection is expected to produce.
package termtest

import "gitlab.com/tinyland/lab/termprobe/pkg/terminal"

// Profile describes how one terminal behaves under the probe.
type Profile struct {
	Name  string            // Human-readable terminal name
	Env   map[string]string // Environment vars this terminal sets
	Reply string            // Bytes sent once the DA1 query arrives; empty means silent

	Want    string             // Expected Emulator.Name()
	Adapter terminal.Adapter   // Expected SelectAdapter(emu, "auto")
	Light   bool               // Expected background classification
	Cell    *terminal.CellSize // Expected cell size; nil means not reported
}

// Silent reports whether the terminal never answers the probe.
func (p Profile) Silent() bool {
	return p.Reply == ""
}

// Profiles returns all known terminal profiles.
func Profiles() []Profile {
	return []Profile{
		ttGhosttyProfile(),
		ttKittyProfile(),
		ttWezTermProfile(),
		ttITerm2Profile(),
		ttFootProfile(),
		ttAlacrittyProfile(),
		ttGenericKGPProfile(),
		ttTmuxProfile(),
		ttAppleTerminalProfile(),
		ttSilentProfile(),
	}
}

// ProfileByName returns the profile matching the given name, or nil if not found.
func ProfileByName(name string) *Profile {
	for _, p := range Profiles() {
		if p.Name == name {
			cp := p
			return &cp
		}
	}
	return nil
}
