package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/cancelreader"
	"github.com/muesli/termenv"
)

// DefaultHelpURL is shown to the user when the terminal does not answer.
const DefaultHelpURL = "https://gitlab.com/tinyland/lab/termprobe#terminal-response-timeout"

var errUnexpectedEOF = errors.New("unexpected EOF")

// Timeouts bounds the probe reads. Zero fields fall back to
// DefaultTimeouts.
type Timeouts struct {
	DA1       time.Duration // Overall deadline for the probe burst reply
	WarnAfter time.Duration // Delay before the user-facing timeout warning
	DSR       time.Duration // Deadline for a device status report (tmux drain)
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		DA1:       2 * time.Second,
		WarnAfter: 300 * time.Millisecond,
		DSR:       500 * time.Millisecond,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.DA1 > 0 {
		d.DA1 = t.DA1
	}
	if t.WarnAfter > 0 {
		d.WarnAfter = t.WarnAfter
	}
	if t.DSR > 0 {
		d.DSR = t.DSR
	}
	return d
}

// Reader collects terminal replies one byte at a time until a terminator
// is recognized or a deadline passes. It never returns an error: a silent
// or broken terminal yields whatever bytes arrived, and the failure is
// logged.
type Reader struct {
	In       io.Reader // Reply source; nil means os.Stdin
	Warn     io.Writer // Receives the timeout warning; nil means os.Stderr
	HelpURL  string    // Link in the timeout warning; empty means DefaultHelpURL
	Log      *slog.Logger
	Timeouts Timeouts

	src *byteSource
}

func (r *Reader) logger() *slog.Logger {
	if r.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Log
}

// ReadUntilDA1 reads until a primary device attributes reply (ESC [ ? ... c)
// completes. Every terminal answers DA1, so it marks the end of a probe
// burst. If nothing has arrived after Timeouts.WarnAfter the user is told
// once that the terminal is not answering; the read carries on until
// Timeouts.DA1.
func (r *Reader) ReadUntilDA1(ctx context.Context) string {
	resp, _ := r.readUntilDA1(ctx)
	return resp
}

// readUntilDA1 also reports whether the timeout warning was shown.
func (r *Reader) readUntilDA1(ctx context.Context) (string, bool) {
	t := r.Timeouts.withDefaults()

	wd := startWatchdog(ctx, t.WarnAfter, func() {
		if err := r.warnUser(); err != nil {
			r.logger().Debug("timeout warning not shown", "error", err)
		}
	})
	buf, err := r.read(ctx, t.DA1, isDA1Terminated)
	fired := wd.stop()

	r.logResult("read_until_da1", buf, err)
	return string(buf), fired
}

// ReadUntilDSR reads until a device status report (ESC [ 0 n or ESC [ 3 n)
// or Timeouts.DSR elapses.
func (r *Reader) ReadUntilDSR(ctx context.Context) string {
	buf, err := r.read(ctx, r.Timeouts.withDefaults().DSR, isDSRTerminated)
	r.logResult("read_until_dsr", buf, err)
	return string(buf)
}

// isDA1Terminated reports whether buf ends a DA1 reply: the last byte is
// 'c' and the text after the last ESC starts with "[?".
func isDA1Terminated(buf []byte) bool {
	if len(buf) == 0 || buf[len(buf)-1] != 'c' {
		return false
	}
	i := bytes.LastIndexByte(buf, 0x1b)
	return i >= 0 && bytes.HasPrefix(buf[i+1:], []byte("[?"))
}

func isDSRTerminated(buf []byte) bool {
	if len(buf) == 0 || buf[len(buf)-1] != 'n' {
		return false
	}
	return bytes.HasSuffix(buf, []byte("\x1b[0n")) || bytes.HasSuffix(buf, []byte("\x1b[3n"))
}

// read accumulates bytes from r.In until done reports true, the timeout
// passes, or the input fails. The bytes read so far are always returned.
func (r *Reader) read(ctx context.Context, timeout time.Duration, done func([]byte) bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	src := r.source()
	buf := make([]byte, 0, 200)
	for {
		c, err := src.next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errUnexpectedEOF
			}
			return buf, err
		}
		buf = append(buf, c)
		if done(buf) {
			return buf, nil
		}
	}
}

// source starts the byte pump on first use. One pump serves every read on
// the Reader, so a byte that arrives after a timed-out read is handed to
// the next read instead of being dropped.
func (r *Reader) source() *byteSource {
	if r.src != nil {
		return r.src
	}

	in := r.In
	if in == nil {
		in = os.Stdin
	}

	// A plain blocking read on stdin would outlive the Reader and swallow
	// the user's next keystroke, so files go through a cancelable reader
	// that Close interrupts.
	var cr cancelreader.CancelReader
	if f, ok := in.(*os.File); ok {
		c, err := cancelreader.NewReader(f)
		if err != nil {
			r.logger().Debug("cancelable reader unavailable", "error", err)
		} else {
			cr, in = c, c
		}
	}

	r.src = newByteSource(in, cr)
	return r.src
}

// Close stops the byte pump. For terminal input it cancels the pending
// read and waits for the pump to exit; a plain io.Reader cannot be
// interrupted, so its pump exits once the blocked read returns. Reads after
// Close fail.
func (r *Reader) Close() error {
	if r.src == nil {
		r.src = &byteSource{err: errReaderClosed}
		return nil
	}
	return r.src.close()
}

var errReaderClosed = errors.New("reader closed")

type readResult struct {
	c   byte
	ok  bool
	err error
}

// byteSource reads one byte at a time, and only when asked, so nothing
// past a terminator is consumed before the caller wants it.
type byteSource struct {
	req     chan struct{}
	res     chan readResult
	quit    chan struct{}
	exited  chan struct{}
	cr      cancelreader.CancelReader
	waiting bool  // a request is outstanding
	err     error // sticky input error, returned by every later next
}

func newByteSource(in io.Reader, cr cancelreader.CancelReader) *byteSource {
	s := &byteSource{
		req:    make(chan struct{}, 1),
		res:    make(chan readResult, 1),
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
		cr:     cr,
	}
	go s.pump(in)
	return s
}

func (s *byteSource) pump(in io.Reader) {
	defer close(s.exited)
	var c [1]byte
	for {
		select {
		case <-s.req:
		case <-s.quit:
			return
		}
		n, err := in.Read(c[:])
		for n == 0 && err == nil {
			n, err = in.Read(c[:])
		}
		s.res <- readResult{c: c[0], ok: n > 0, err: err}
		if err != nil {
			return
		}
	}
}

// next returns the next input byte, or ctx's error if none arrives in
// time. A request left outstanding by an expired ctx is picked up by the
// following call.
func (s *byteSource) next(ctx context.Context) (byte, error) {
	if s.err != nil {
		return 0, s.err
	}
	if !s.waiting {
		s.req <- struct{}{}
		s.waiting = true
	}
	select {
	case res := <-s.res:
		s.waiting = false
		if res.err != nil {
			s.err = res.err
		}
		if res.ok {
			return res.c, nil
		}
		return 0, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s *byteSource) close() error {
	if errors.Is(s.err, errReaderClosed) {
		return nil
	}
	s.err = errReaderClosed
	close(s.quit)
	if s.cr == nil {
		return nil
	}
	if s.cr.Cancel() {
		<-s.exited
	}
	return s.cr.Close()
}

func (r *Reader) logResult(op string, buf []byte, err error) {
	resp := strconv.Quote(string(buf))
	switch {
	case err == nil:
		r.logger().Debug(op, "resp", resp)
	case errors.Is(err, context.DeadlineExceeded):
		r.logger().Error(op+" timed out", "resp", resp, "error", err)
	default:
		r.logger().Error(op+" failed", "resp", resp, "error", err)
	}
}

// warnUser prints the timeout notice. The terminal is in raw mode, so line
// breaks are written as CRLF.
func (r *Reader) warnUser() error {
	w := r.Warn
	if w == nil {
		w = os.Stderr
	}
	url := r.HelpURL
	if url == "" {
		url = DefaultHelpURL
	}

	re := lipgloss.NewRenderer(w)
	re.SetColorProfile(termenv.ANSI)
	title := re.NewStyle().
		Foreground(lipgloss.Color("1")).
		Bold(true).
		Render("Terminal response timeout: ")

	_, err := fmt.Fprintf(w,
		"\r\n%sThe terminal did not answer the capability query.\r\n"+
			"Please check your terminal environment as per: %s\r\n",
		title, url)
	return err
}

// watchdog runs fn once after a delay unless stopped first.
type watchdog struct {
	cancel context.CancelFunc
	done   chan struct{}
	fired  atomic.Bool
}

func startWatchdog(ctx context.Context, after time.Duration, fn func()) *watchdog {
	ctx, cancel := context.WithCancel(ctx)
	w := &watchdog{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		t := time.NewTimer(after)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return
		}
		if ctx.Err() != nil {
			return
		}
		w.fired.Store(true)
		fn()
	}()
	return w
}

// stop cancels the watchdog, waits for it to exit and reports whether fn
// ran.
func (w *watchdog) stop() bool {
	w.cancel()
	<-w.done
	return w.fired.Load()
}
