// termprobe detects the terminal emulator hosting it and reports the image
// capabilities, cell pixel size and background brightness it found.
//
// Usage:
//
//	termprobe [flags]
//
// Flags:
//
//	-config string    Path to configuration file (default: ~/.config/termprobe/config.toml)
//	-format string    Output format: text or yaml (default: text)
//	-adapter string   Force an image adapter instead of the detected one
//	-no-probe         Skip the terminal query and use environment hints only
//	-log-file string  Write logs to this file instead of stderr
//	-verbose          Enable debug logging
//	-version          Print version and exit
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/termprobe/pkg/config"
	"gitlab.com/tinyland/lab/termprobe/pkg/image"
	"gitlab.com/tinyland/lab/termprobe/pkg/terminal"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the exit, so deferred cleanup runs on every path.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("termprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "Path to configuration file")
		format      = fs.String("format", "text", "Output format: text or yaml")
		adapter     = fs.String("adapter", "", "Force an image adapter (kgp, kgp-old, iip, sixel, halfblocks, none)")
		noProbe     = fs.Bool("no-probe", false, "Skip the terminal query and use environment hints only")
		logPath     = fs.String("log-file", "", "Write logs to this file instead of stderr")
		verbose     = fs.Bool("verbose", false, "Enable verbose logging")
		showVersion = fs.Bool("version", false, "Print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "termprobe %s (%s) built %s\n", version, commit, date)
		return 0
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *adapter != "" {
		cfg.Image.Adapter = *adapter
	}
	if *noProbe {
		cfg.Probe.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 1
	}

	outFormat := strings.ToLower(*format)
	if outFormat != "text" && outFormat != "yaml" {
		fmt.Fprintf(stderr, "unknown format: %s (supported: text, yaml)\n", *format)
		return 1
	}

	logLevel := cfg.SlogLevel()
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logOut := stderr
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(stderr, "failed to open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: logLevel}))

	emu := detect(cfg, logger)

	// Tell lipgloss what we learned so adaptive colors never send their
	// own OSC 11 query.
	lipgloss.SetHasDarkBackground(!emu.Light)

	rep := newReport(emu, cfg.Image.Adapter, terminal.GetSize())
	if outFormat == "yaml" {
		if err := writeYAML(stdout, rep); err != nil {
			fmt.Fprintf(stderr, "failed to encode report: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprint(stdout, rep.Text())
	return 0
}

func writeYAML(w io.Writer, rep report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// detect runs the probe unless it is disabled. Without a probe only the
// environment can name the brand; everything else stays at the
// conservative defaults.
func detect(cfg *config.Config, logger *slog.Logger) terminal.Emulator {
	if !cfg.Probe.Enabled {
		if b, ok := terminal.BrandFromEnv(os.Getenv); ok {
			return terminal.Emulator{Kind: b}
		}
		return terminal.UnknownEmulator()
	}

	emu, err := terminal.DetectCapabilities(&terminal.Detector{
		Log:      logger,
		Timeouts: cfg.Probe.Timeouts(),
		HelpURL:  cfg.Probe.HelpURL,
	})
	if err != nil {
		logger.Warn("terminal detection failed", "error", err)
	}
	return emu
}

// report is the printable form of a detection result.
type report struct {
	Terminal string             `yaml:"terminal"`
	Known    bool               `yaml:"known"`
	Probe    *terminal.Unknown  `yaml:"probe,omitempty"`
	Light    bool               `yaml:"light_background"`
	CellSize *terminal.CellSize `yaml:"cell_size,omitempty"`
	Adapters []terminal.Adapter `yaml:"adapters"`
	Selected terminal.Adapter   `yaml:"selected_adapter"`
	Mux      terminal.Mux       `yaml:"mux"`
	Window   windowReport       `yaml:"window"`
}

type windowReport struct {
	Cols  int `yaml:"cols"`
	Rows  int `yaml:"rows"`
	CellW int `yaml:"cell_width"`
	CellH int `yaml:"cell_height"`
}

func newReport(emu terminal.Emulator, override string, size terminal.Size) report {
	rep := report{
		Terminal: emu.Name(),
		Light:    emu.Light,
		CellSize: emu.CellSize,
		Adapters: emu.Adapters(),
		Selected: terminal.SelectAdapter(emu, override),
		Mux:      terminal.MuxFromEnv(os.Getenv),
		Window:   windowReport{Cols: size.Cols, Rows: size.Rows},
	}
	switch k := emu.Kind.(type) {
	case terminal.Brand:
		rep.Known = true
	case terminal.Unknown:
		rep.Probe = &k
	}
	rep.Window.CellW, rep.Window.CellH = image.CellSize(emu, size)
	return rep
}

// Text renders the report for humans.
func (r report) Text() string {
	label := lipgloss.NewStyle().Bold(true).Width(18)
	value := lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#A78BFA"})

	names := make([]string, len(r.Adapters))
	for i, a := range r.Adapters {
		names[i] = a.String()
	}
	adapters := strings.Join(names, ", ")
	if adapters == "" {
		adapters = "none"
	}
	bg := "dark"
	if r.Light {
		bg = "light"
	}
	cell := "unknown"
	if r.CellSize != nil {
		cell = fmt.Sprintf("%dx%d px", r.CellSize.Width, r.CellSize.Height)
	}

	rows := [][2]string{
		{"terminal", r.Terminal},
		{"background", bg},
		{"cell size", cell},
		{"adapters", adapters},
		{"selected adapter", r.Selected.String()},
		{"window", fmt.Sprintf("%dx%d cells, %dx%d px per cell", r.Window.Cols, r.Window.Rows, r.Window.CellW, r.Window.CellH)},
	}
	if r.Probe != nil {
		rows = append(rows, [2]string{"probe", fmt.Sprintf("kgp=%t sixel=%t", r.Probe.KGP, r.Probe.Sixel)})
	}
	if r.Mux.Active() {
		rows = append(rows, [2]string{"multiplexer", fmt.Sprintf("tmux=%t screen=%t", r.Mux.Tmux, r.Mux.Screen)})
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(label.Render(row[0]) + value.Render(row[1]) + "\n")
	}
	return b.String()
}
