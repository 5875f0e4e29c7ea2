package terminal

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"
)

// fakeSession records whether the terminal mode was restored.
type fakeSession struct {
	restored int
	err      error
}

func (s *fakeSession) Restore() error {
	s.restored++
	return s.err
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func newTestDetector(reply string, env map[string]string) (*Detector, *fakeSession, *bytes.Buffer) {
	sess := &fakeSession{}
	var out bytes.Buffer
	return &Detector{
		In:       strings.NewReader(reply),
		Out:      &out,
		Getenv:   MapEnv(env),
		Raw:      func() (Session, error) { return sess, nil },
		Log:      discard(),
		Timeouts: Timeouts{DA1: 300 * time.Millisecond, WarnAfter: 200 * time.Millisecond, DSR: 100 * time.Millisecond},
	}, sess, &out
}

func TestDetect_UnknownWithKGP(t *testing.T) {
	d, sess, out := newTestDetector("\x1b_Gi=31;OK\x1b\\\x1b[?6c", nil)

	emu, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got, ok := emu.Kind.(Unknown); !ok || got != (Unknown{KGP: true}) {
		t.Errorf("Kind = %#v, want Unknown{KGP: true}", emu.Kind)
	}
	if sess.restored != 1 {
		t.Errorf("Restore called %d times, want 1", sess.restored)
	}
	if !strings.Contains(out.String(), queryKGP) {
		t.Errorf("probe burst lacks the graphics probe: %q", out.String())
	}
}

func TestDetect_BurstLayout(t *testing.T) {
	d, _, out := newTestDetector("\x1b[?62c", nil)
	if _, err := d.Detect(context.Background()); err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	want := "\x1b7" + queryKGP + "\x1b[>q\x1b[16t\x1b]11;?\x07\x1b[0c\x1b8"
	if got := out.String(); got != want {
		t.Errorf("burst = %q, want %q", got, want)
	}
}

func TestDetect_EnvBrandSkipsKGPProbe(t *testing.T) {
	d, _, out := newTestDetector("\x1b_Gi=31;OK\x1b\\\x1b[?62;4c", map[string]string{"TERM_PROGRAM": "WezTerm"})

	emu, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if strings.Contains(out.String(), "\x1b_G") {
		t.Errorf("graphics probe sent although the brand was known: %q", out.String())
	}
	if emu.Kind != Kind(BrandWezTerm) {
		t.Errorf("Kind = %v, want wezterm", emu.Kind)
	}
}

func TestDetect_SignatureBeatsEnv(t *testing.T) {
	d, _, _ := newTestDetector("\x1bP>|kitty(0.35.2)\x1b\\\x1b[?62;c", map[string]string{"TERM_PROGRAM": "WezTerm"})

	emu, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if emu.Kind != Kind(BrandKitty) {
		t.Errorf("Kind = %v, want kitty", emu.Kind)
	}
}

func TestDetect_FullReply(t *testing.T) {
	reply := "\x1bP>|ghostty 1.1.0\x1b\\" +
		"\x1b[6;18;9t" +
		"\x1b]11;rgb:fdfd/f6f6/e3e3\x1b\\" +
		"\x1b[?62;22c"
	d, _, _ := newTestDetector(reply, nil)

	emu, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if emu.Kind != Kind(BrandGhostty) {
		t.Errorf("Kind = %v, want ghostty", emu.Kind)
	}
	if !emu.Light {
		t.Error("Light = false, want true")
	}
	if emu.CellSize == nil || *emu.CellSize != (CellSize{Width: 9, Height: 18}) {
		t.Errorf("CellSize = %v, want 9x18", emu.CellSize)
	}
	if got := emu.Adapters(); len(got) != 1 || got[0] != AdapterKgp {
		t.Errorf("Adapters() = %v, want [kgp]", got)
	}
}

func TestDetect_TmuxWrapsAndDrains(t *testing.T) {
	reply := "\x1b[?1;2;4c" + "\x1b_Gi=31;OK\x1b\\" + "\x1b[0n"
	d, _, out := newTestDetector(reply, map[string]string{"TMUX": "/tmp/tmux-1000/default,1,0"})

	emu, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	burst := out.String()
	for _, q := range []string{queryKGP, queryXTVersion, queryDA1, queryDSR} {
		if !strings.Contains(burst, Mux{Tmux: true}.Wrap(q)) {
			t.Errorf("output lacks wrapped %q: %q", q, burst)
		}
	}
	if !strings.Contains(burst, queryCellSize) || !strings.Contains(burst, "\x1b]11;?\x07") {
		t.Errorf("cell size and background queries must go out unwrapped: %q", burst)
	}
	// The OK that arrived after DA1 was drained, not parsed.
	if got, ok := emu.Kind.(Unknown); !ok || got.KGP || !got.Sixel {
		t.Errorf("Kind = %#v, want sixel-only Unknown", emu.Kind)
	}
}

func TestDetect_SilentTerminal(t *testing.T) {
	sess := &fakeSession{}
	d := &Detector{
		In:       silentPeer(t),
		Out:      &bytes.Buffer{},
		Getenv:   MapEnv(nil),
		Raw:      func() (Session, error) { return sess, nil },
		Timeouts: Timeouts{DA1: 150 * time.Millisecond, WarnAfter: 50 * time.Millisecond},
	}

	start := time.Now()
	emu, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Detect() blocked for %v", elapsed)
	}
	if emu.Kind != Kind(Unknown{}) || emu.Light || emu.CellSize != nil {
		t.Errorf("Detect() = %+v, want the unknown snapshot", emu)
	}
	if sess.restored != 1 {
		t.Errorf("Restore called %d times, want 1", sess.restored)
	}
}

func TestDetect_RawModeFailure(t *testing.T) {
	wantErr := errors.New("entering raw mode: not a terminal")
	d := &Detector{
		In:  strings.NewReader(""),
		Out: &bytes.Buffer{},
		Raw: func() (Session, error) { return nil, wantErr },
	}

	emu, err := d.Detect(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Detect() error = %v, want %v", err, wantErr)
	}
	if emu.Kind != Kind(Unknown{}) {
		t.Errorf("Kind = %#v on failure, want Unknown", emu.Kind)
	}
}

func TestDetect_WriteFailure(t *testing.T) {
	d, sess, _ := newTestDetector("", nil)
	d.Out = failWriter{}

	emu, err := d.Detect(context.Background())
	if err == nil || !strings.Contains(err.Error(), "writing probe") {
		t.Errorf("Detect() error = %v, want a write error", err)
	}
	if emu.Kind != Kind(Unknown{}) {
		t.Errorf("Kind = %#v on failure, want Unknown", emu.Kind)
	}
	if sess.restored != 1 {
		t.Errorf("Restore called %d times after a write failure, want 1", sess.restored)
	}
}

// failAfterFirst accepts one write and fails every later one.
type failAfterFirst struct{ n int }

func (w *failAfterFirst) Write(b []byte) (int, error) {
	w.n++
	if w.n > 1 {
		return 0, errors.New("broken pipe")
	}
	return len(b), nil
}

func TestDetect_DrainFailure(t *testing.T) {
	d, _, _ := newTestDetector("\x1b[?62;4c", map[string]string{"TMUX": "/tmp/tmux-1000/default,1,0"})
	d.Out = &failAfterFirst{}

	emu, err := d.Detect(context.Background())
	if err == nil || !strings.Contains(err.Error(), "writing drain request") {
		t.Errorf("Detect() error = %v, want a drain write error", err)
	}
	if emu.Kind != Kind(Unknown{}) {
		t.Errorf("Kind = %#v on failure, want Unknown", emu.Kind)
	}
}

func TestDetect_RestoreFailure(t *testing.T) {
	d, sess, _ := newTestDetector("\x1b[?62c", nil)
	sess.err = errors.New("exiting raw mode: bad fd")

	if _, err := d.Detect(context.Background()); !errors.Is(err, sess.err) {
		t.Errorf("Detect() error = %v, want %v", err, sess.err)
	}
}

func TestUnknownEmulator(t *testing.T) {
	emu := UnknownEmulator()
	if emu.Kind != Kind(Unknown{}) || emu.Light || emu.CellSize != nil {
		t.Errorf("UnknownEmulator() = %+v", emu)
	}
	if emu.Adapters() != nil {
		t.Errorf("Adapters() = %v, want none", emu.Adapters())
	}
	if emu.Name() != "unknown" {
		t.Errorf("Name() = %q", emu.Name())
	}
}

func TestUnknown_Adapters(t *testing.T) {
	tests := []struct {
		u    Unknown
		want []Adapter
	}{
		{Unknown{KGP: true, Sixel: true}, []Adapter{AdapterSixel, AdapterKgpOld}},
		{Unknown{KGP: true}, []Adapter{AdapterKgpOld}},
		{Unknown{Sixel: true}, []Adapter{AdapterSixel}},
		{Unknown{}, nil},
	}
	for _, tt := range tests {
		got := tt.u.Adapters()
		if !slices.Equal(got, tt.want) {
			t.Errorf("%+v.Adapters() = %v, want %v", tt.u, got, tt.want)
		}
	}
}

func TestEmulator_Copy(t *testing.T) {
	emu := Emulator{Kind: BrandFoot, CellSize: &CellSize{Width: 8, Height: 16}}
	cp := emu
	if cp.Kind != emu.Kind || *cp.CellSize != *emu.CellSize {
		t.Errorf("copy differs: %+v vs %+v", cp, emu)
	}
}
