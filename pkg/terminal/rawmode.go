package terminal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// ErrNotTerminal is returned when raw mode is requested on a file
// descriptor that is not attached to a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// Session is an acquired terminal input mode. Restore returns the terminal
// to the mode it was in before the session began and is safe to call more
// than once.
type Session interface {
	Restore() error
}

// RawMode is a raw-input Session on a single file descriptor.
type RawMode struct {
	fd    uintptr
	state *term.State
	once  sync.Once
	err   error
}

// EnterRaw switches fd to raw (non-canonical, non-echo) input mode and
// returns a guard that restores the previous mode. Callers should defer
// Restore immediately so every exit path, panics included, puts the
// terminal back.
func EnterRaw(fd uintptr) (*RawMode, error) {
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return nil, fmt.Errorf("entering raw mode: %w", ErrNotTerminal)
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	return &RawMode{fd: fd, state: state}, nil
}

// Restore puts the terminal back into its saved mode. Only the first call
// touches the terminal; later calls return the first result.
func (r *RawMode) Restore() error {
	r.once.Do(func() {
		if err := term.Restore(r.fd, r.state); err != nil {
			r.err = fmt.Errorf("exiting raw mode: %w", err)
		}
	})
	return r.err
}
