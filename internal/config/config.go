// Package config implements ConfigStore (C9): the daemon's structured JSON
// configuration, loaded from and saved to {config_dir}/time_tracker/config.json.
//
// Rewritten from the teacher's TOML-over-viper layout (one file per
// methodology) into the JSON-on-disk shape and validation rules
// original_source's Config::validate uses, since viper has no JSON-specific
// unknown-field-preservation primitive and the teacher's own config never
// needed to round-trip fields it didn't know about.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

// Duration wraps time.Duration so it reads and writes as "25m0s" in JSON
// instead of a raw nanosecond integer.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) String() string { return time.Duration(d).String() }

// GeneralConfig holds daemon-wide preferences with no validated ranges.
type GeneralConfig struct {
	Autostart      bool   `json:"autostart"`
	MinimizeToTray bool   `json:"minimize_to_tray"`
	Language       string `json:"language"`

	extra map[string]json.RawMessage
}

// PomodoroConfig configures PomodoroTimer (C6).
type PomodoroConfig struct {
	WorkDuration       Duration `json:"work_duration"`
	ShortBreakDuration Duration `json:"short_break_duration"`
	LongBreakDuration  Duration `json:"long_break_duration"`
	LongBreakInterval  int      `json:"long_break_interval"`
	AutoStartBreaks    bool     `json:"auto_start_breaks"`
	AutoStartPomodoros bool     `json:"auto_start_pomodoros"`

	extra map[string]json.RawMessage
}

// SamplerConfig configures ActivitySampler (C5); supplements the distilled
// spec, which left poll cadence and idle threshold as component defaults,
// with user-tunable values the way original_source's idle_detection_*
// fields exposed them.
type SamplerConfig struct {
	PollInterval  Duration `json:"poll_interval"`
	IdleThreshold Duration `json:"idle_threshold"`

	extra map[string]json.RawMessage
}

// ShutdownConfig configures the optional auto-shutdown-after-N-pomodoros
// feature original_source ships; validated only when Enabled.
type ShutdownConfig struct {
	Enabled                 bool `json:"enabled"`
	PomodorosBeforeShutdown int  `json:"pomodoros_before_shutdown"`
	DelayMinutes            int  `json:"delay_minutes"`

	extra map[string]json.RawMessage
}

// UIConfig configures the bubbletea live-status shell.
type UIConfig struct {
	FontSize     int `json:"font_size"`
	WindowWidth  int `json:"window_width"`
	WindowHeight int `json:"window_height"`

	extra map[string]json.RawMessage
}

// StorageConfig configures the Store's on-disk location and retention.
type StorageConfig struct {
	DataDir       string `json:"data_dir"`
	BackupEnabled bool   `json:"backup_enabled"`
	KeepDataDays  int    `json:"keep_data_days"`

	extra map[string]json.RawMessage
}

// Config is the daemon's full structured configuration.
type Config struct {
	General  GeneralConfig  `json:"general"`
	Pomodoro PomodoroConfig `json:"pomodoro"`
	Sampler  SamplerConfig  `json:"sampler"`
	Shutdown ShutdownConfig `json:"shutdown"`
	UI       UIConfig       `json:"ui"`
	Storage  StorageConfig  `json:"storage"`

	extra map[string]json.RawMessage
}

// DefaultConfig returns the configuration written the first time the daemon
// runs, before any config.json exists.
func DefaultConfig() *Config {
	dataDir := "~/.local/share/time_tracker"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "time_tracker")
	}
	return &Config{
		General: GeneralConfig{
			MinimizeToTray: true,
			Language:       "en",
		},
		Pomodoro: PomodoroConfig{
			WorkDuration:       Duration(25 * time.Minute),
			ShortBreakDuration: Duration(5 * time.Minute),
			LongBreakDuration:  Duration(15 * time.Minute),
			LongBreakInterval:  4,
			AutoStartBreaks:    false,
			AutoStartPomodoros: false,
		},
		Sampler: SamplerConfig{
			PollInterval:  Duration(30 * time.Second),
			IdleThreshold: Duration(5 * time.Minute),
		},
		Shutdown: ShutdownConfig{
			Enabled:                 false,
			PomodorosBeforeShutdown: 4,
			DelayMinutes:            30,
		},
		UI: UIConfig{
			FontSize:     14,
			WindowWidth:  800,
			WindowHeight: 600,
		},
		Storage: StorageConfig{
			DataDir:       dataDir,
			BackupEnabled: true,
			KeepDataDays:  90,
		},
	}
}

// Validate applies the range checks original_source's Config::validate
// enforces.
func (c *Config) Validate() error {
	if time.Duration(c.Pomodoro.WorkDuration) < time.Minute {
		return fmt.Errorf("work duration must be at least 1 minute")
	}
	if time.Duration(c.Pomodoro.ShortBreakDuration) < 30*time.Second {
		return fmt.Errorf("short break duration must be at least 30 seconds")
	}
	if time.Duration(c.Pomodoro.LongBreakDuration) < time.Minute {
		return fmt.Errorf("long break duration must be at least 1 minute")
	}
	if c.Pomodoro.LongBreakInterval < 1 {
		return fmt.Errorf("long break interval must be at least 1")
	}
	if c.Shutdown.Enabled {
		if c.Shutdown.DelayMinutes < 1 {
			return fmt.Errorf("shutdown delay must be at least 1 minute")
		}
		if c.Shutdown.PomodorosBeforeShutdown < 1 {
			return fmt.Errorf("pomodoros before shutdown must be at least 1")
		}
	}
	if c.UI.WindowWidth < 400 || c.UI.WindowHeight < 300 {
		return fmt.Errorf("window size too small")
	}
	if c.UI.FontSize < 8 || c.UI.FontSize > 32 {
		return fmt.Errorf("font size must be between 8 and 32")
	}
	if c.Storage.KeepDataDays < 1 {
		return fmt.Errorf("keep data days must be at least 1")
	}
	return nil
}

// GetConfigPath returns {config_dir}/time_tracker/config.json.
func GetConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "time_tracker", "config.json"), nil
}

// Load reads and validates the config file at path, creating it with
// defaults if absent.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save validates and writes cfg to path, creating its directory if needed.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// knownKeys lists the JSON field names t's exported, tagged fields claim, so
// unmarshalWithExtra can tell which raw keys are "ours" versus unknown
// fields to preserve untouched.
func knownKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		tag := f.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "" {
			name = f.Name
		}
		keys[name] = true
	}
	return keys
}

// unmarshalWithExtra decodes data into known (a pointer to a plain alias of
// the real section type, so this doesn't recurse into the caller's own
// UnmarshalJSON) and returns every JSON key known's type doesn't declare, so
// the caller can stash it and round-trip it on the next Save.
func unmarshalWithExtra(data []byte, known any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for key := range knownKeys(reflect.TypeOf(known).Elem()) {
		delete(raw, key)
	}
	return raw, nil
}

// marshalWithExtra encodes known and merges in any preserved unknown keys,
// known fields taking precedence on a collision.
func marshalWithExtra(known any, extra map[string]json.RawMessage) ([]byte, error) {
	knownBytes, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(knownBytes, &merged); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, exists := merged[key]; !exists {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

type generalConfigAlias GeneralConfig

func (c *GeneralConfig) UnmarshalJSON(data []byte) error {
	extra, err := unmarshalWithExtra(data, (*generalConfigAlias)(c))
	if err != nil {
		return err
	}
	c.extra = extra
	return nil
}

func (c GeneralConfig) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(generalConfigAlias(c), c.extra)
}

type pomodoroConfigAlias PomodoroConfig

func (c *PomodoroConfig) UnmarshalJSON(data []byte) error {
	extra, err := unmarshalWithExtra(data, (*pomodoroConfigAlias)(c))
	if err != nil {
		return err
	}
	c.extra = extra
	return nil
}

func (c PomodoroConfig) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(pomodoroConfigAlias(c), c.extra)
}

type samplerConfigAlias SamplerConfig

func (c *SamplerConfig) UnmarshalJSON(data []byte) error {
	extra, err := unmarshalWithExtra(data, (*samplerConfigAlias)(c))
	if err != nil {
		return err
	}
	c.extra = extra
	return nil
}

func (c SamplerConfig) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(samplerConfigAlias(c), c.extra)
}

type shutdownConfigAlias ShutdownConfig

func (c *ShutdownConfig) UnmarshalJSON(data []byte) error {
	extra, err := unmarshalWithExtra(data, (*shutdownConfigAlias)(c))
	if err != nil {
		return err
	}
	c.extra = extra
	return nil
}

func (c ShutdownConfig) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(shutdownConfigAlias(c), c.extra)
}

type uiConfigAlias UIConfig

func (c *UIConfig) UnmarshalJSON(data []byte) error {
	extra, err := unmarshalWithExtra(data, (*uiConfigAlias)(c))
	if err != nil {
		return err
	}
	c.extra = extra
	return nil
}

func (c UIConfig) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(uiConfigAlias(c), c.extra)
}

type storageConfigAlias StorageConfig

func (c *StorageConfig) UnmarshalJSON(data []byte) error {
	extra, err := unmarshalWithExtra(data, (*storageConfigAlias)(c))
	if err != nil {
		return err
	}
	c.extra = extra
	return nil
}

func (c StorageConfig) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(storageConfigAlias(c), c.extra)
}

type configAlias Config

func (c *Config) UnmarshalJSON(data []byte) error {
	extra, err := unmarshalWithExtra(data, (*configAlias)(c))
	if err != nil {
		return err
	}
	c.extra = extra
	return nil
}

func (c Config) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(configAlias(c), c.extra)
}
