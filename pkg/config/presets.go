package config

import "time"

// ProbePreset returns the probe timings for a named preset. If the name is
// not recognized, the "default" preset is returned.
//
//	default  2s reply deadline, notice after 300ms, 500ms drain
//	local    1s reply deadline, notice after 200ms, 250ms drain
//	remote   5s reply deadline, notice after 1s, 1.5s drain (SSH, mosh)
func ProbePreset(name string) ProbeConfig {
	switch name {
	case "local":
		return localPreset()
	case "remote":
		return remotePreset()
	default:
		return defaultPreset()
	}
}

func defaultPreset() ProbeConfig {
	return ProbeConfig{
		Enabled:      true,
		Preset:       "default",
		Timeout:      Duration{2 * time.Second},
		WarnAfter:    Duration{300 * time.Millisecond},
		DrainTimeout: Duration{500 * time.Millisecond},
	}
}

// localPreset suits terminals on the same machine, which answer in a few
// milliseconds.
func localPreset() ProbeConfig {
	return ProbeConfig{
		Enabled:      true,
		Preset:       "local",
		Timeout:      Duration{1 * time.Second},
		WarnAfter:    Duration{200 * time.Millisecond},
		DrainTimeout: Duration{250 * time.Millisecond},
	}
}

// remotePreset allows for round trips over a slow link.
func remotePreset() ProbeConfig {
	return ProbeConfig{
		Enabled:      true,
		Preset:       "remote",
		Timeout:      Duration{5 * time.Second},
		WarnAfter:    Duration{1 * time.Second},
		DrainTimeout: Duration{1500 * time.Millisecond},
	}
}
