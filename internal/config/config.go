// Package config loads the board profile and runner settings.
//
// The profile is read from the file named by --config, or by the
// BOARDLET_CONFIG environment variable when the flag is absent. Without
// either, the built-in host profile is used. Flags given on the command line
// override file values.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvConfig names the profile file when --config is not given.
const EnvConfig = "BOARDLET_CONFIG"

// Config is the full runner configuration.
type Config struct {
	Board  Board  `yaml:"board"`
	Runner Runner `yaml:"runner"`
}

// Board declares which capabilities the board has and how many of each.
// Counts are fixed for the lifetime of the process.
type Board struct {
	Name   string `yaml:"name"`
	Serial string `yaml:"serial"`

	Buttons int `yaml:"buttons"`
	LEDs    int `yaml:"leds"`
	Timers  int `yaml:"timers"`
	UARTs   int `yaml:"uarts"`
	GPIOs   int `yaml:"gpios"`

	USBSerial bool `yaml:"usb_serial"`
	Radio     bool `yaml:"radio"`
	Crypto    bool `yaml:"crypto"`
	Protocol  bool `yaml:"protocol"`

	// Queue is the event queue capacity. It must be a power of two.
	Queue int `yaml:"queue"`
	// ClockMax is the largest value of the microsecond debug clock before it
	// wraps. Zero means the full 64-bit range.
	ClockMax uint64 `yaml:"clock_max"`

	Store  StoreConfig  `yaml:"store"`
	Update UpdateConfig `yaml:"update"`
}

// StoreConfig configures the host key-value store file.
type StoreConfig struct {
	// Path is the CBOR file backing the store. Empty disables the store.
	Path string `yaml:"path"`
}

// UpdateConfig configures the file-backed update flash.
type UpdateConfig struct {
	// Path is the flash file. Empty disables platform update.
	Path      string `yaml:"path"`
	Size      int    `yaml:"size"`
	PageSize  int    `yaml:"page_size"`
	ChunkSize int    `yaml:"chunk_size"`
}

// Runner configures the host process around the board.
type Runner struct {
	Headless bool   `yaml:"headless"`
	Hz       int    `yaml:"hz"`
	LogLevel string `yaml:"log_level"`
	Applet   string `yaml:"applet"`
}

// Default returns the built-in host profile.
func Default() *Config {
	return &Config{
		Board: Board{
			Name:      "host",
			Serial:    "host-0001",
			Buttons:   2,
			LEDs:      4,
			Timers:    4,
			UARTs:     2,
			GPIOs:     8,
			USBSerial: true,
			Radio:     true,
			Crypto:    true,
			Protocol:  true,
			Queue:     64,
			ClockMax:  1<<32 - 1,
			Store:     StoreConfig{Path: "boardlet.store"},
			Update: UpdateConfig{
				Path:      "boardlet.flash",
				Size:      1 << 20,
				PageSize:  4096,
				ChunkSize: 256,
			},
		},
		Runner: Runner{
			Hz:       60,
			LogLevel: "info",
		},
	}
}

// LoadFile reads a YAML profile on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	b := &c.Board

	counts := []struct {
		name string
		n    int
	}{
		{"buttons", b.Buttons},
		{"leds", b.LEDs},
		{"timers", b.Timers},
		{"uarts", b.UARTs},
		{"gpios", b.GPIOs},
	}
	for _, cnt := range counts {
		if cnt.n < 0 {
			errs = append(errs, fmt.Errorf("board.%s: negative count %d", cnt.name, cnt.n))
		}
	}
	if b.Queue <= 0 || bits.OnesCount(uint(b.Queue)) != 1 {
		errs = append(errs, fmt.Errorf("board.queue: %d is not a positive power of two", b.Queue))
	}
	if u := b.Update; u.Path != "" {
		switch {
		case u.PageSize <= 0 || u.ChunkSize <= 0:
			errs = append(errs, errors.New("board.update: page_size and chunk_size must be positive"))
		case u.PageSize%u.ChunkSize != 0:
			errs = append(errs, fmt.Errorf("board.update: page_size %d not a multiple of chunk_size %d", u.PageSize, u.ChunkSize))
		case u.Size <= 0 || u.Size%u.PageSize != 0:
			errs = append(errs, fmt.Errorf("board.update: size %d not a positive multiple of page_size %d", u.Size, u.PageSize))
		}
	}
	if c.Runner.Hz <= 0 {
		errs = append(errs, fmt.Errorf("runner.hz: must be positive, got %d", c.Runner.Hz))
	}
	if _, err := c.Runner.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (r Runner) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(r.LogLevel)); err != nil {
		return 0, fmt.Errorf("runner.log_level: %w", err)
	}
	return lvl, nil
}

// Flags holds the command-line overrides registered by BindFlags.
type Flags struct {
	fs *pflag.FlagSet

	Path     string
	Headless bool
	Hz       int
	LogLevel string
	Applet   string
	Queue    int
}

// BindFlags registers the runner flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	def := Default()
	f := &Flags{fs: fs}
	fs.StringVar(&f.Path, "config", "", "Board profile (YAML). Defaults to $"+EnvConfig+".")
	fs.BoolVar(&f.Headless, "headless", false, "Run without a window.")
	fs.IntVar(&f.Hz, "hz", def.Runner.Hz, "Window/headless tick rate.")
	fs.StringVar(&f.LogLevel, "log-level", def.Runner.LogLevel, "Log level (debug, info, warn, error).")
	fs.StringVar(&f.Applet, "applet", "", "Applet module to run (.wasm or .wasm.zst).")
	fs.IntVar(&f.Queue, "queue", def.Board.Queue, "Event queue capacity (power of two).")
	return f
}

// Resolve loads the profile and applies the flags that were set explicitly.
func (f *Flags) Resolve() (*Config, error) {
	path := f.Path
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	if f.fs.Changed("headless") {
		cfg.Runner.Headless = f.Headless
	}
	if f.fs.Changed("hz") {
		cfg.Runner.Hz = f.Hz
	}
	if f.fs.Changed("log-level") {
		cfg.Runner.LogLevel = f.LogLevel
	}
	if f.fs.Changed("applet") {
		cfg.Runner.Applet = f.Applet
	}
	if f.fs.Changed("queue") {
		cfg.Board.Queue = f.Queue
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
