// Package config carries the immutable runtime configuration for both
// emulation modes. Values come from an optional TOML file overlaid by
// command-line flags; the translation core receives the validated
// result once at construction and never re-reads it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/digitaltrails/opentrack-opal/internal/mapping"
	"github.com/digitaltrails/opentrack-opal/internal/protocol"
)

// Config is the whole configuration surface.
type Config struct {
	Network    NetworkConfig    `toml:"network"`
	Smoothing  SmoothingConfig  `toml:"smoothing"`
	AutoCenter AutoCenterConfig `toml:"autocenter"`
	Mouse      MouseConfig      `toml:"mouse"`
	Stick      StickConfig      `toml:"stick"`
	Monitor    MonitorConfig    `toml:"monitor"`
	Debug      bool             `toml:"debug"`
}

// NetworkConfig locates the opentrack UDP feed.
type NetworkConfig struct {
	BindAddress string `toml:"bind_address"`
	Port        int    `toml:"port"`
}

// Addr renders the listen address in host:port form.
func (n NetworkConfig) Addr() string {
	return fmt.Sprintf("%s:%d", n.BindAddress, n.Port)
}

// SmoothingConfig tunes the per-axis conditioning.
type SmoothingConfig struct {
	// Alpha in (0, 1]; smaller smooths more.
	Alpha float64 `toml:"alpha"`
	// Window documents the time constant alpha should achieve, in
	// samples. Informational only: the EMA keeps no ring buffer.
	Window int `toml:"window"`
	// WaitSeconds is the receive timeout before a tick is synthesized.
	WaitSeconds float64 `toml:"wait_seconds"`
}

// Wait returns the tick wait interval as a duration.
func (s SmoothingConfig) Wait() time.Duration {
	return time.Duration(s.WaitSeconds * float64(time.Second))
}

// AutoCenterConfig tunes the dwell detector. Zone 0 disables it.
type AutoCenterConfig struct {
	Zone         float64  `toml:"zone"`
	DwellSeconds float64  `toml:"dwell_seconds"`
	Axes         []string `toml:"axes"`
}

// Dwell returns the dwell requirement as a duration.
func (a AutoCenterConfig) Dwell() time.Duration {
	return time.Duration(a.DwellSeconds * float64(time.Second))
}

// MonitoredAxes resolves the configured axis names; nil means the
// default set.
func (a AutoCenterConfig) MonitoredAxes() ([]protocol.Axis, error) {
	if len(a.Axes) == 0 {
		return nil, nil
	}
	out := make([]protocol.Axis, 0, len(a.Axes))
	for _, name := range a.Axes {
		ax, ok := protocol.ParseAxis(name)
		if !ok {
			return nil, fmt.Errorf("unknown autocenter axis %q", name)
		}
		out = append(out, ax)
	}
	return out, nil
}

// MouseConfig tunes mouse emulation.
type MouseConfig struct {
	ScaleFactor float64 `toml:"scale_factor"`
	EnableWheel bool    `toml:"enable_wheel"`
}

// StickConfig tunes stick emulation.
type StickConfig struct {
	// Bindings is the flat axis-to-control table: 6 entries, or 7 with
	// a snap-center action. See mapping for the code values.
	Bindings    []int   `toml:"bindings"`
	ScaleFactor float64 `toml:"scale_factor"`
	DeadZone    float64 `toml:"dead_zone"`
}

// MonitorConfig controls the optional debug HTTP surface.
type MonitorConfig struct {
	Enabled     bool   `toml:"enabled"`
	Port        int    `toml:"port"`
	OpenBrowser bool   `toml:"open_browser"`
	RecordPath  string `toml:"record_path"`
}

// Default returns the stock configuration: loopback UDP on the port
// opentrack suggests, light smoothing, auto-center off.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			BindAddress: "127.0.0.1",
			Port:        5005,
		},
		Smoothing: SmoothingConfig{
			Alpha:       0.1,
			Window:      100,
			WaitSeconds: 0.001,
		},
		AutoCenter: AutoCenterConfig{
			Zone:         0.0,
			DwellSeconds: 1.0,
		},
		Mouse: MouseConfig{
			ScaleFactor: 35.0,
		},
		Stick: StickConfig{
			Bindings:    append([]int(nil), mapping.DefaultStickCodes...),
			ScaleFactor: 1.0,
			DeadZone:    10.0,
		},
		Monitor: MonitorConfig{
			Port: 8764,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "opentrack-opal", "config.toml"), nil
}

// Load reads the config file over the defaults. A missing file is not
// an error: the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as TOML, creating the directory as
// needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks every constraint once, before the loop starts.
// A configuration that fails here never reaches the pipeline.
func (c *Config) Validate() error {
	if c.Smoothing.Alpha <= 0 || c.Smoothing.Alpha > 1 {
		return fmt.Errorf("smoothing alpha must be in (0, 1], got %v", c.Smoothing.Alpha)
	}
	if c.Smoothing.Window < 1 {
		return fmt.Errorf("smoothing window must be at least 1, got %d", c.Smoothing.Window)
	}
	if c.Smoothing.WaitSeconds <= 0 {
		return fmt.Errorf("wait interval must be positive, got %v", c.Smoothing.WaitSeconds)
	}
	if c.Mouse.ScaleFactor <= 0 {
		return fmt.Errorf("mouse scale factor must be positive, got %v", c.Mouse.ScaleFactor)
	}
	if c.Stick.ScaleFactor <= 0 {
		return fmt.Errorf("stick scale factor must be positive, got %v", c.Stick.ScaleFactor)
	}
	if c.Stick.DeadZone < 0 {
		return fmt.Errorf("stick dead zone must not be negative, got %v", c.Stick.DeadZone)
	}
	if c.AutoCenter.Zone < 0 {
		return fmt.Errorf("autocenter zone must not be negative, got %v", c.AutoCenter.Zone)
	}
	if c.AutoCenter.Zone > 0 && c.AutoCenter.DwellSeconds <= 0 {
		return fmt.Errorf("autocenter dwell must be positive, got %v", c.AutoCenter.DwellSeconds)
	}
	if c.Network.Port < 1 || c.Network.Port > 65535 {
		return fmt.Errorf("UDP port out of range: %d", c.Network.Port)
	}
	if _, err := c.AutoCenter.MonitoredAxes(); err != nil {
		return err
	}
	// Binding codes are validated by the resolver so the error names
	// the offending slot.
	if _, err := mapping.Resolve(c.Stick.Bindings, c.Stick.ScaleFactor, c.Stick.DeadZone); err != nil {
		return fmt.Errorf("stick bindings: %w", err)
	}
	if c.Monitor.Enabled && (c.Monitor.Port < 1 || c.Monitor.Port > 65535) {
		return fmt.Errorf("monitor port out of range: %d", c.Monitor.Port)
	}
	return nil
}
