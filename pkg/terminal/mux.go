package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// tmux DCS passthrough framing. Every ESC inside the payload is doubled.
const (
	tmuxStart  = "\x1bPtmux;"
	tmuxEnd    = "\x1b\\"
	tmuxEscape = "\x1b\x1b"
)

// Mux describes the terminal multiplexer, if any, sitting between the
// process and the real terminal.
type Mux struct {
	Tmux   bool // Inside tmux (TMUX set)
	Screen bool // Inside GNU Screen (STY set)
}

// MuxFromEnv inspects TMUX and STY.
func MuxFromEnv(getenv Getenv) Mux {
	return Mux{
		Tmux:   getenv("TMUX") != "",
		Screen: getenv("STY") != "",
	}
}

// Active reports whether any multiplexer was detected.
func (m Mux) Active() bool {
	return m.Tmux || m.Screen
}

// Wrap encodes seq so that it reaches the outer terminal. Outside tmux the
// sequence is returned unchanged. GNU Screen is not wrapped: its DCS
// passthrough ends at the first ST, which the graphics probe contains.
func (m Mux) Wrap(seq string) string {
	if !m.Tmux || seq == "" {
		return seq
	}
	return tmuxStart + strings.ReplaceAll(seq, "\x1b", tmuxEscape) + tmuxEnd
}

// Unwrap reverses Wrap. Input that is not a tmux passthrough sequence is
// returned unchanged.
func (m Mux) Unwrap(seq string) string {
	if !strings.HasPrefix(seq, tmuxStart) || !strings.HasSuffix(seq, tmuxEnd) {
		return seq
	}
	inner := seq[len(tmuxStart) : len(seq)-len(tmuxEnd)]
	return strings.ReplaceAll(inner, tmuxEscape, "\x1b")
}

// Drain consumes replies that tmux delivers late. It asks for a device
// status report through the passthrough and reads until the report (or the
// DSR timeout) so stragglers never reach the application's input loop.
// Outside tmux it does nothing.
func (m Mux) Drain(ctx context.Context, w io.Writer, r *Reader) error {
	if !m.Tmux {
		return nil
	}
	if _, err := io.WriteString(w, m.Wrap(queryDSR)); err != nil {
		return fmt.Errorf("writing drain request: %w", err)
	}
	drained := r.ReadUntilDSR(ctx)
	r.logger().Debug("tmux drain", "bytes", len(drained))
	return nil
}
