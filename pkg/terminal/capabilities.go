package terminal

import (
	"context"
	"sync"
)

var (
	cached     Emulator
	cachedErr  error
	detected   bool
	mu         sync.Mutex // guards cached, cachedErr and detected
	detectOnce sync.Once
	onceMu     sync.Mutex // keeps ForceRefresh from replacing detectOnce mid-probe
)

// DetectCapabilities runs detection once per process and caches the
// result. Probing twice at the same time would interleave replies on
// stdin, so callers share this entry point instead of calling Detect.
// On failure the Unknown snapshot is returned along with the error.
func DetectCapabilities(d *Detector) (Emulator, error) {
	onceMu.Lock()
	defer onceMu.Unlock()

	detectOnce.Do(func() {
		if d == nil {
			d = &Detector{}
		}
		emu, err := d.Detect(context.Background())
		if err != nil {
			emu = UnknownEmulator()
		}

		mu.Lock()
		cached, cachedErr, detected = emu, err, true
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	return cached, cachedErr
}

// ForceRefresh discards the cached snapshot so the next
// DetectCapabilities call probes again. Use it after the controlling
// terminal changes (e.g. attaching to tmux). It waits for a running probe
// to finish.
func ForceRefresh() {
	onceMu.Lock()
	defer onceMu.Unlock()

	detectOnce = sync.Once{}
	mu.Lock()
	cached, cachedErr, detected = Emulator{}, nil, false
	mu.Unlock()
}

// Cached returns the cached snapshot without probing. ok is false if
// DetectCapabilities has not finished yet; it never waits for a probe.
func Cached() (emu Emulator, ok bool) {
	mu.Lock()
	defer mu.Unlock()
	return cached, detected
}
