package termtest

import (
	"errors"
	"fmt"

	"gitlab.com/tinyland/lab/termprobe/pkg/terminal"
)

// Validate compares a detected snapshot against the profile's
// expectations and returns every mismatch joined into one error.
func Validate(p Profile, emu terminal.Emulator) error {
	var errs []error
	if got := emu.Name(); got != p.Want {
		errs = append(errs, fmt.Errorf("%s: name = %q, want %q", p.Name, got, p.Want))
	}
	if got := terminal.SelectAdapter(emu, "auto"); got != p.Adapter {
		errs = append(errs, fmt.Errorf("%s: adapter = %v, want %v", p.Name, got, p.Adapter))
	}
	if emu.Light != p.Light {
		errs = append(errs, fmt.Errorf("%s: light = %t, want %t", p.Name, emu.Light, p.Light))
	}
	switch {
	case p.Cell == nil && emu.CellSize != nil:
		errs = append(errs, fmt.Errorf("%s: cell size = %v, want none", p.Name, *emu.CellSize))
	case p.Cell != nil && emu.CellSize == nil:
		errs = append(errs, fmt.Errorf("%s: cell size missing, want %v", p.Name, *p.Cell))
	case p.Cell != nil && *p.Cell != *emu.CellSize:
		errs = append(errs, fmt.Errorf("%s: cell size = %v, want %v", p.Name, *emu.CellSize, *p.Cell))
	}
	return errors.Join(errs...)
}
