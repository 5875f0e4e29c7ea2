package termtest

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/termprobe/pkg/terminal"
)

// Query suffixes the fake terminal reacts to. They match both the plain
// and the tmux-wrapped (ESC doubled) form.
const (
	da1Query = "[0c"
	dsrQuery = "[5n"
	dsrReply = "\x1b[0n"
)

// Terminal is a scripted stand-in for an emulator. Everything written to
// it is recorded. When a DA1 query arrives the profile's reply becomes
// readable, and a DSR query is answered with "ESC [ 0 n". It also serves
// as the raw mode session, counting restores.
type Terminal struct {
	profile Profile
	pr      *io.PipeReader
	pw      *io.PipeWriter

	mu       sync.Mutex
	written  bytes.Buffer
	restored int
	closed   bool
}

// New returns a fake terminal for p. Close it when done so the detector's
// reader goroutine exits.
func New(p Profile) *Terminal {
	pr, pw := io.Pipe()
	return &Terminal{profile: p, pr: pr, pw: pw}
}

// Read returns reply bytes, blocking until some are sent.
func (t *Terminal) Read(b []byte) (int, error) {
	return t.pr.Read(b)
}

// Write records b and schedules any replies it triggers.
func (t *Terminal) Write(b []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.written.Write(b)
	if t.closed {
		return len(b), nil
	}

	s := string(b)
	if strings.Contains(s, da1Query) && !t.profile.Silent() {
		t.send(t.profile.Reply)
	}
	if strings.Contains(s, dsrQuery) && !t.profile.Silent() {
		t.send(dsrReply)
	}
	return len(b), nil
}

// send delivers reply in the background. io.Pipe gates concurrent writes
// sequentially, so replies arrive in the order they were scheduled.
func (t *Terminal) send(reply string) {
	go func() {
		_, _ = io.WriteString(t.pw, reply)
	}()
}

// Restore implements terminal.Session.
func (t *Terminal) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.restored++
	return nil
}

// Restored returns how many times the session was restored.
func (t *Terminal) Restored() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.restored
}

// Written returns everything the detector wrote to the terminal.
func (t *Terminal) Written() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.written.String()
}

// Close ends the reply stream.
func (t *Terminal) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return t.pw.Close()
}

// Detector returns a detector wired to this terminal with short timeouts.
func (t *Terminal) Detector(log *slog.Logger) *terminal.Detector {
	return &terminal.Detector{
		In:     t,
		Out:    t,
		Getenv: terminal.MapEnv(t.profile.Env),
		Raw:    func() (terminal.Session, error) { return t, nil },
		Log:    log,
		Timeouts: terminal.Timeouts{
			DA1:       400 * time.Millisecond,
			WarnAfter: 150 * time.Millisecond,
			DSR:       200 * time.Millisecond,
		},
	}
}
