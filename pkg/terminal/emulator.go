package terminal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Probe sequences written in the detection burst.
const (
	// queryKGP transmits a 1x1 transparent RGB image in query mode (a=q):
	// nothing is stored or drawn, a supporting terminal answers "OK".
	queryKGP       = "\x1b_Gi=31,s=1,v=1,a=q,t=d,f=24;AAAA\x1b\\"
	queryXTVersion = "\x1b[>q"
	queryCellSize  = "\x1b[16t"
	queryDA1       = "\x1b[0c"
	queryDSR       = "\x1b[5n"
)

// Kind is either a Brand or an Unknown terminal. Consumers switch on the
// concrete type:
//
//	switch k := emu.Kind.(type) {
//	case Brand:
//	case Unknown:
//	}
type Kind interface {
	Adapters() []Adapter
	isKind()
}

// Unknown describes a terminal with no brand signature, by what it
// answered to the probes.
type Unknown struct {
	KGP   bool `yaml:"kgp"`   // Acknowledged the Kitty graphics probe
	Sixel bool `yaml:"sixel"` // Lists Sixel in its device attributes
}

// Adapters returns the generic adapters an unbranded terminal can use.
// Acknowledging the graphics probe does not prove Unicode placeholder
// support, so only direct placement is offered, after Sixel.
func (u Unknown) Adapters() []Adapter {
	switch {
	case u.KGP && u.Sixel:
		return []Adapter{AdapterSixel, AdapterKgpOld}
	case u.KGP:
		return []Adapter{AdapterKgpOld}
	case u.Sixel:
		return []Adapter{AdapterSixel}
	default:
		return nil
	}
}

func (Unknown) isKind() {}

// CellSize is the pixel size of one character cell.
type CellSize struct {
	Width  uint16 `yaml:"width"`
	Height uint16 `yaml:"height"`
}

// Emulator is the capability snapshot produced by one detection pass. It
// is a plain value: copy it freely, never mutate it.
type Emulator struct {
	Kind     Kind
	Light    bool      // Background is light
	CellSize *CellSize // nil when the terminal did not report it
}

// UnknownEmulator returns the conservative snapshot used when detection
// is impossible: no brand, no graphics, dark background, unknown cell size.
func UnknownEmulator() Emulator {
	return Emulator{Kind: Unknown{}}
}

// Adapters returns the image adapters usable on this terminal.
func (e Emulator) Adapters() []Adapter {
	switch k := e.Kind.(type) {
	case Brand:
		return k.Adapters()
	case Unknown:
		return k.Adapters()
	default:
		return nil
	}
}

// Name returns the brand name, or "unknown".
func (e Emulator) Name() string {
	switch k := e.Kind.(type) {
	case Brand:
		return k.String()
	case Unknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Detector runs a detection pass. The zero value probes the controlling
// terminal through stdin and stderr.
type Detector struct {
	In       io.Reader               // Reply source; nil means os.Stdin
	Out      io.Writer               // Probe and warning sink; nil means os.Stderr
	Getenv   Getenv                  // nil means os.Getenv
	Raw      func() (Session, error) // nil enters raw mode on os.Stdin
	Log      *slog.Logger
	Timeouts Timeouts
	HelpURL  string
}

// Detect probes the controlling terminal with default settings.
func Detect() (Emulator, error) {
	var d Detector
	return d.Detect(context.Background())
}

func (d *Detector) logger() *slog.Logger {
	if d.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Log
}

func (d *Detector) out() io.Writer {
	if d.Out == nil {
		return os.Stderr
	}
	return d.Out
}

func (d *Detector) getenv() Getenv {
	if d.Getenv == nil {
		return os.Getenv
	}
	return d.Getenv
}

func (d *Detector) enterRaw() (Session, error) {
	if d.Raw != nil {
		return d.Raw()
	}
	return EnterRaw(os.Stdin.Fd())
}

func (d *Detector) reader() *Reader {
	return &Reader{
		In:       d.In,
		Warn:     d.out(),
		HelpURL:  d.HelpURL,
		Log:      d.Log,
		Timeouts: d.Timeouts,
	}
}

// Detect enters raw mode, writes the probe burst, reads the replies and
// builds the snapshot. Only raw mode and write failures are errors; a
// terminal that answers partially or not at all still yields a snapshot
// built from whatever arrived.
func (d *Detector) Detect(ctx context.Context) (emu Emulator, err error) {
	raw, err := d.enterRaw()
	if err != nil {
		return UnknownEmulator(), err
	}
	defer func() {
		if rerr := raw.Restore(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	getenv := d.getenv()
	resort, resolved := BrandFromEnv(getenv)
	mux := MuxFromEnv(getenv)
	log := d.logger()
	log.Debug("pre-resolved brand", "brand", resort, "resolved", resolved, "tmux", mux.Tmux)

	if _, err := io.WriteString(d.out(), probeBurst(mux, !resolved)); err != nil {
		return UnknownEmulator(), fmt.Errorf("writing probe: %w", err)
	}

	r := d.reader()
	defer r.Close()
	resp := r.ReadUntilDA1(ctx)
	if err := mux.Drain(ctx, d.out(), r); err != nil {
		return UnknownEmulator(), err
	}

	var fallback *Brand
	if resolved {
		fallback = &resort
	}
	emu = parseResponse(resp, fallback, log)
	log.Debug("detected emulator", "name", emu.Name(), "light", emu.Light, "cell_size", emu.CellSize)
	return emu, nil
}

// probeBurst builds the single write that carries every query. The
// graphics probe is skipped when the brand is already known because some
// terminals acknowledge it without implementing it.
func probeBurst(mux Mux, withKGP bool) string {
	var b strings.Builder
	b.WriteString(ansi.SaveCursor)
	if withKGP {
		b.WriteString(mux.Wrap(queryKGP))
	}
	b.WriteString(mux.Wrap(queryXTVersion))
	b.WriteString(queryCellSize)
	b.WriteString(ansi.RequestBackgroundColor)
	b.WriteString(mux.Wrap(queryDA1))
	b.WriteString(ansi.RestoreCursor)
	return b.String()
}

// parseResponse turns a captured reply into a snapshot. A brand signature
// in the reply wins over the environment fallback, which wins over an
// Unknown built from the probe flags.
func parseResponse(resp string, fallback *Brand, log *slog.Logger) Emulator {
	var kind Kind
	if b, ok := BrandFromResponse(resp); ok {
		kind = b
	} else if fallback != nil {
		kind = *fallback
	} else {
		kind = Unknown{KGP: hasKGP(resp), Sixel: hasSixel(resp)}
	}

	emu := Emulator{Kind: kind, Light: lightBackground(resp, log)}
	if cs, ok := cellSize(resp); ok {
		emu.CellSize = &cs
	}
	return emu
}
