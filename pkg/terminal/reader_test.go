package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

// silentPeer returns a reader that never produces a byte, like a terminal
// that ignores every query. The pipe is closed when the test ends.
func silentPeer(t *testing.T) io.Reader {
	t.Helper()
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	return pr
}

func TestIsDA1Terminated(t *testing.T) {
	tests := []struct {
		buf  string
		want bool
	}{
		{"\x1b[?62;4c", true},
		{"\x1b_Gi=31;OK\x1b\\\x1b[?6c", true},
		{"abc", false},
		{"\x1b[?62;4", false},
		{"\x1b[6;16;8tc", false},
		{"\x1b[?62;4c\x1b]11;rgb:0000/0000/0000\x07c", false},
		{"\x1b[c", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isDA1Terminated([]byte(tt.buf)); got != tt.want {
			t.Errorf("isDA1Terminated(%q) = %v, want %v", tt.buf, got, tt.want)
		}
	}
}

func TestIsDSRTerminated(t *testing.T) {
	tests := []struct {
		buf  string
		want bool
	}{
		{"\x1b[0n", true},
		{"junk\x1b[3n", true},
		{"\x1b[5n", false},
		{"\x1b[0nx", false},
		{"n", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isDSRTerminated([]byte(tt.buf)); got != tt.want {
			t.Errorf("isDSRTerminated(%q) = %v, want %v", tt.buf, got, tt.want)
		}
	}
}

func TestReadUntilDA1_StopsAtTerminator(t *testing.T) {
	var warn bytes.Buffer
	r := &Reader{
		In:   strings.NewReader("\x1b_Gi=31;OK\x1b\\\x1b[?62;4c\x1b[0n"),
		Warn: &warn,
	}

	got, fired := r.readUntilDA1(context.Background())
	if want := "\x1b_Gi=31;OK\x1b\\\x1b[?62;4c"; got != want {
		t.Errorf("readUntilDA1() = %q, want %q", got, want)
	}
	if fired {
		t.Error("watchdog fired on a prompt reply")
	}
	if warn.Len() != 0 {
		t.Errorf("warning written on a prompt reply: %q", warn.String())
	}
}

func TestReadUntilDA1_EOFReturnsPartial(t *testing.T) {
	r := &Reader{In: strings.NewReader("\x1b[6;16;8t"), Warn: io.Discard}

	if got := r.ReadUntilDA1(context.Background()); got != "\x1b[6;16;8t" {
		t.Errorf("ReadUntilDA1() = %q, want the partial reply", got)
	}
}

func TestReadUntilDA1_SilentPeerWarnsOnce(t *testing.T) {
	var warn bytes.Buffer
	r := &Reader{
		In:       silentPeer(t),
		Warn:     &warn,
		HelpURL:  "https://example.invalid/faq",
		Timeouts: Timeouts{DA1: 250 * time.Millisecond, WarnAfter: 50 * time.Millisecond},
	}

	start := time.Now()
	got, fired := r.readUntilDA1(context.Background())
	elapsed := time.Since(start)

	if got != "" {
		t.Errorf("readUntilDA1() = %q, want empty", got)
	}
	if elapsed > time.Second {
		t.Errorf("readUntilDA1() blocked for %v", elapsed)
	}
	if !fired {
		t.Error("watchdog did not fire")
	}
	out := warn.String()
	if n := strings.Count(out, "Terminal response timeout"); n != 1 {
		t.Errorf("warning shown %d times, want 1: %q", n, out)
	}
	if !strings.Contains(out, "https://example.invalid/faq") {
		t.Errorf("warning lacks help link: %q", out)
	}
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("warning is not styled: %q", out)
	}
}

func TestReadUntilDA1_ReplyAfterWarning(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	go func() {
		time.Sleep(100 * time.Millisecond)
		io.WriteString(pw, "\x1b[?1;2c")
	}()

	var warn bytes.Buffer
	r := &Reader{
		In:       pr,
		Warn:     &warn,
		Timeouts: Timeouts{DA1: 2 * time.Second, WarnAfter: 20 * time.Millisecond},
	}

	got, fired := r.readUntilDA1(context.Background())
	if got != "\x1b[?1;2c" {
		t.Errorf("readUntilDA1() = %q", got)
	}
	if !fired {
		t.Error("watchdog should have fired before the late reply")
	}
}

func TestReadUntilDA1_WatchdogCancelled(t *testing.T) {
	var warn bytes.Buffer
	r := &Reader{
		In:       strings.NewReader("\x1b[?62c"),
		Warn:     &warn,
		Timeouts: Timeouts{WarnAfter: 30 * time.Millisecond},
	}

	if _, fired := r.readUntilDA1(context.Background()); fired {
		t.Fatal("watchdog fired")
	}
	time.Sleep(80 * time.Millisecond)
	if warn.Len() != 0 {
		t.Errorf("warning written after the read finished: %q", warn.String())
	}
}

func TestReadUntilDA1_DefaultDeadline(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the full default deadline")
	}
	r := &Reader{In: silentPeer(t), Warn: io.Discard}

	start := time.Now()
	r.ReadUntilDA1(context.Background())
	if elapsed := time.Since(start); elapsed < 2*time.Second || elapsed > 2500*time.Millisecond {
		t.Errorf("ReadUntilDA1() took %v, want about 2s", elapsed)
	}
}

func TestReadUntilDA1_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Reader{In: silentPeer(t), Warn: io.Discard}

	start := time.Now()
	r.ReadUntilDA1(ctx)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancelled read took %v", elapsed)
	}
}

func TestReadUntilDSR(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"\x1b[?62c\x1b[0ntrailing", "\x1b[?62c\x1b[0n"},
		{"\x1b[3n", "\x1b[3n"},
		{"\x1b[5n", "\x1b[5n"},
	}
	for _, tt := range tests {
		r := &Reader{In: strings.NewReader(tt.in)}
		if got := r.ReadUntilDSR(context.Background()); got != tt.want {
			t.Errorf("ReadUntilDSR(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadUntilDSR_Timeout(t *testing.T) {
	var warn bytes.Buffer
	r := &Reader{
		In:       silentPeer(t),
		Warn:     &warn,
		Timeouts: Timeouts{DSR: 60 * time.Millisecond},
	}

	start := time.Now()
	if got := r.ReadUntilDSR(context.Background()); got != "" {
		t.Errorf("ReadUntilDSR() = %q, want empty", got)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("ReadUntilDSR() took %v", elapsed)
	}
	if warn.Len() != 0 {
		t.Errorf("DSR read must not warn, got %q", warn.String())
	}
}

func TestReadUntilDSR_AfterTimedOutRead(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	r := &Reader{
		In:       pr,
		Warn:     io.Discard,
		Timeouts: Timeouts{DA1: 50 * time.Millisecond, WarnAfter: 40 * time.Millisecond, DSR: time.Second},
	}
	defer r.Close()

	if got := r.ReadUntilDA1(context.Background()); got != "" {
		t.Fatalf("ReadUntilDA1() = %q, want empty", got)
	}

	go io.WriteString(pw, "\x1b[0n")
	if got := r.ReadUntilDSR(context.Background()); got != "\x1b[0n" {
		t.Errorf("ReadUntilDSR() = %q, want the whole report", got)
	}
}

func TestReader_SharedAcrossReads(t *testing.T) {
	r := &Reader{In: strings.NewReader("\x1b[?62;4c\x1b_Gi=31;OK\x1b\\\x1b[0n")}
	defer r.Close()

	if got := r.ReadUntilDA1(context.Background()); got != "\x1b[?62;4c" {
		t.Errorf("ReadUntilDA1() = %q", got)
	}
	if got := r.ReadUntilDSR(context.Background()); got != "\x1b_Gi=31;OK\x1b\\\x1b[0n" {
		t.Errorf("ReadUntilDSR() = %q, want the bytes after DA1", got)
	}
}

func TestReader_Close(t *testing.T) {
	r := &Reader{In: silentPeer(t), Timeouts: Timeouts{DSR: 30 * time.Millisecond}}
	r.ReadUntilDSR(context.Background())
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	start := time.Now()
	if got := r.ReadUntilDSR(context.Background()); got != "" {
		t.Errorf("ReadUntilDSR() after Close = %q", got)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("read after Close blocked for %v", elapsed)
	}
}

func TestTimeouts_WithDefaults(t *testing.T) {
	got := Timeouts{DSR: time.Second}.withDefaults()
	want := Timeouts{DA1: 2 * time.Second, WarnAfter: 300 * time.Millisecond, DSR: time.Second}
	if got != want {
		t.Errorf("withDefaults() = %+v, want %+v", got, want)
	}
}
