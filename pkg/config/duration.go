package config

import (
	"fmt"
	"strconv"
	"time"
)

// Duration is a probe timing as written in the [probe] section, such as
// timeout = "2s" or warn_after = "300ms". Terminal round trips are measured
// in milliseconds, so a bare number like "250" means 250ms.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a probe timing. Negative values are rejected.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		d.Duration = 0
		return nil
	}

	v, err := parseProbeDuration(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("probe timing %q is negative", s)
	}
	d.Duration = v
	return nil
}

func parseProbeDuration(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("probe timing %q: %w", s, err)
	}
	return v, nil
}

// MarshalText writes the timing back in Go duration syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
