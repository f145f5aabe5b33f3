package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// SocketConfig overrides how the event socket is located. Empty values
// fall back to XDG_RUNTIME_DIR and HYPRLAND_INSTANCE_SIGNATURE.
type SocketConfig struct {
	RuntimeDir string `toml:"runtime_dir"`
	Signature  string `toml:"signature"`
}

// InputConfig selects an evdev device to read keys from instead of relying
// on keypress events from the compositor. "auto" picks the first keyboard.
type InputConfig struct {
	Device string `toml:"device"`
}

// ChimeConfig holds hold feedback sound settings.
type ChimeConfig struct {
	Enabled bool   `toml:"enabled"`
	Start   string `toml:"start"`
	Stop    string `toml:"stop"`
}

// HoldConfig binds a press-and-hold on one or more keys to commands.
type HoldConfig struct {
	ID           string   `toml:"id"`
	Keys         []string `toml:"keys"`
	Keyboard     string   `toml:"keyboard"`
	ThresholdSec float64  `toml:"threshold_sec"`
	OnStart      string   `toml:"on_start"`
	OnEnd        string   `toml:"on_end"`
	TimeoutSec   int      `toml:"timeout_sec"`
	// ExtendOnOtherKeys postpones the hold while other keys are pressed,
	// so chords with the hold key do not trigger it.
	ExtendOnOtherKeys bool `toml:"extend_on_other_keys"`
	// OnlyWithoutSubmap skips the commands while a submap is active.
	OnlyWithoutSubmap bool `toml:"only_without_submap"`
	Chime             bool `toml:"chime"`
}

// Threshold returns ThresholdSec as a duration.
func (h HoldConfig) Threshold() time.Duration {
	return time.Duration(h.ThresholdSec * float64(time.Second))
}

// Config is the top-level configuration.
type Config struct {
	Theme  string       `toml:"theme"`
	Socket SocketConfig `toml:"socket"`
	Input  InputConfig  `toml:"input"`
	Chime  ChimeConfig  `toml:"chime"`
	Holds  []HoldConfig `toml:"hold"`
}

const (
	defaultThresholdSec = 0.5
	defaultTimeoutSec   = 10
)

// Default returns a Config populated with all default values. It carries
// no holds; DefaultHold describes the usual one.
func Default() *Config {
	return &Config{
		Theme: "hyprland",
		Chime: ChimeConfig{
			Enabled: false,
		},
	}
}

// DefaultHold returns a which-key style hold on the Super key.
func DefaultHold() HoldConfig {
	return HoldConfig{
		ID:                "whichkey",
		Keys:              []string{"KEY_LEFTMETA"},
		ThresholdSec:      defaultThresholdSec,
		OnStart:           "astal -i hyprwhichkey",
		OnEnd:             "astal -i hyprwhichkey",
		TimeoutSec:        defaultTimeoutSec,
		ExtendOnOtherKeys: true,
		OnlyWithoutSubmap: true,
	}
}

// DefaultPath returns the default config file path (~/.config/hyprhold/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hyprhold", "config.toml")
}

// Validate checks every hold. Key names are resolved separately by the
// caller, which owns the key table.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Holds))
	for i, h := range c.Holds {
		if h.ID == "" {
			return fmt.Errorf("hold %d: missing id", i)
		}
		if seen[h.ID] {
			return fmt.Errorf("hold %q: duplicate id", h.ID)
		}
		seen[h.ID] = true
		if h.ThresholdSec <= 0 {
			return fmt.Errorf("hold %q: threshold_sec must be positive, got %v", h.ID, h.ThresholdSec)
		}
		if len(h.Keys) == 0 {
			return fmt.Errorf("hold %q: no keys", h.ID)
		}
		if h.TimeoutSec < 0 {
			return fmt.Errorf("hold %q: timeout_sec must not be negative", h.ID)
		}
	}
	return nil
}

// Save writes the config as TOML to the given path, creating parent
// directories if needed. The write is atomic: data is written to a
// temporary file and renamed into place so a crash mid-write cannot
// corrupt the existing config.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".hyprhold-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML config from path. If the file does not exist,
// it returns the default config without error. Holds missing a
// timeout get the default one.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	_, err = toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}

	for i := range cfg.Holds {
		if cfg.Holds[i].TimeoutSec == 0 {
			cfg.Holds[i].TimeoutSec = defaultTimeoutSec
		}
	}

	return cfg, nil
}
