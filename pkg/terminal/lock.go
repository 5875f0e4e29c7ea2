package terminal

import (
	"bufio"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// Position is a zero-based cell coordinate.
type Position struct {
	X, Y int
}

// TmuxCursorDesync and ConPTYCursorDesync name the two environments where
// the terminal's idea of the cursor position drifts from ours. They are
// kept separate so either can be turned off without touching the other.
var (
	TmuxCursorDesync   = true
	ConPTYCursorDesync = true
)

// NeedsCursorQuirk reports whether MoveLock should force the cursor
// position instead of trusting a single move.
func NeedsCursorQuirk(mux Mux) bool {
	return (TmuxCursorDesync && mux.Tmux) ||
		(ConPTYCursorDesync && runtime.GOOS == "windows")
}

// MoveLock saves the cursor, moves it to pos, lets draw write at that
// position and restores the cursor. Everything goes through one buffered
// writer that is flushed exactly once after draw returns, even if draw
// failed, so partial output is never left stranded in the buffer.
//
// With quirk set the move is repeated three times with flushes and a short
// settle delay, and the cursor is hidden before it is restored so the
// jump back is not visible.
func MoveLock[T any](w io.Writer, pos Position, quirk bool, draw func(*bufio.Writer) (T, error)) (T, error) {
	var zero T
	buf := bufio.NewWriter(w)
	move := ansi.CursorPosition(pos.X+1, pos.Y+1)

	if quirk {
		for _, prefix := range []string{ansi.SaveCursor, "", ""} {
			buf.WriteString(prefix + move + ansi.ShowCursor)
			if err := buf.Flush(); err != nil {
				return zero, fmt.Errorf("positioning cursor: %w", err)
			}
		}
		time.Sleep(time.Millisecond)
	} else {
		buf.WriteString(ansi.SaveCursor + move)
	}

	result, err := draw(buf)

	if quirk {
		buf.WriteString(ansi.HideCursor + ansi.RestoreCursor)
	} else {
		buf.WriteString(ansi.RestoreCursor)
	}

	if ferr := buf.Flush(); ferr != nil && err == nil {
		return result, fmt.Errorf("flushing cursor lock: %w", ferr)
	}
	return result, err
}
