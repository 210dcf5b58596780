// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jeranaias/libcat-tui/internal/session"
	"github.com/jeranaias/libcat-tui/internal/storage"
	"github.com/jeranaias/libcat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete libcat configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Session SessionConfig `toml:"session"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
	UI      UIConfig      `toml:"ui"`
}

// ServerConfig locates the library backend.
type ServerConfig struct {
	// URL is the base URL; /login/ and /weather/ are resolved against it.
	URL string `toml:"url"`

	// TimeoutSecs bounds each request.
	TimeoutSecs int `toml:"timeout_secs"`

	// LoginsPerMinute throttles authentication attempts. Zero disables.
	LoginsPerMinute int `toml:"logins_per_minute"`
}

// SessionConfig tunes the session lifecycle.
type SessionConfig struct {
	// TimeoutSecs is both the absolute and the inactivity bound.
	TimeoutSecs int `toml:"timeout_secs"`

	// WarningLeadSecs is how long before the absolute bound the warning
	// appears.
	WarningLeadSecs int `toml:"warning_lead_secs"`

	PollIntervalSecs   int `toml:"poll_interval_secs"`
	WarningDisplaySecs int `toml:"warning_display_secs"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Backend is one of file, sqlite, bolt, memory.
	Backend string `toml:"backend"`

	// Path is the backend location. Empty means a default under the
	// config directory.
	Path string `toml:"path"`

	// Watch enables reacting to edits by other processes (file backend).
	Watch bool `toml:"watch"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // console or json

	// File receives logs while the terminal UI owns the screen. Empty
	// means libcat.log in the config directory.
	File string `toml:"file"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	Theme       string `toml:"theme"` // auto, dark or light
	DefaultCity string `toml:"default_city"`
	Mouse       bool   `toml:"mouse"`
}

// Bounds on the session timeout.
const (
	MinSessionTimeoutSecs = 60
	MaxSessionTimeoutSecs = 1800
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:             "http://127.0.0.1:8000",
			TimeoutSecs:     10,
			LoginsPerMinute: 5,
		},
		Session: SessionConfig{
			TimeoutSecs:        int(session.SessionTimeout / time.Second),
			WarningLeadSecs:    int(session.WarningLead / time.Second),
			PollIntervalSecs:   int(session.PollInterval / time.Second),
			WarningDisplaySecs: int(session.WarningDisplay / time.Second),
		},
		Store: StoreConfig{
			Backend: storage.BackendFile,
			Watch:   true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			Theme: "auto",
			Mouse: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the libcat state directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".libcat"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StorePath returns the configured store path, or the backend default
// under the state directory.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return storage.DefaultPath(dir, c.Store.Backend), nil
}

// LogPath returns the configured log file, or libcat.log under the state
// directory.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "libcat.log"), nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the default config file (if present), applies the
// environment and validates.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load with an explicit config file. A missing file is
// not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
		if err := LoadEnvFiles(filepath.Join(filepath.Dir(path), ".env")); err != nil {
			return nil, err
		}
	}
	if err := LoadEnvFiles(".env"); err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Unknown keys are rejected.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadEnvFiles loads each existing dotenv file. Variables already set in
// the environment win.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path atomically with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# libcat configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// Environment variables read by ApplyEnvOverrides.
const (
	EnvServer             = "LIBCAT_SERVER"
	EnvStore              = "LIBCAT_STORE"
	EnvStorePath          = "LIBCAT_STORE_PATH"
	EnvLogLevel           = "LIBCAT_LOG_LEVEL"
	EnvLogFormat          = "LIBCAT_LOG_FORMAT"
	EnvSessionTimeoutSecs = "LIBCAT_SESSION_TIMEOUT_SECS"
)

// ApplyEnvOverrides applies LIBCAT_* variables. A malformed numeric value
// is ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvServer); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(EnvSessionTimeoutSecs); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Session.TimeoutSecs = secs
		}
	}
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

// SetDefaults fills zero values and clamps the session timeout into
// [MinSessionTimeoutSecs, MaxSessionTimeoutSecs].
func (c *Config) SetDefaults() {
	d := Default()

	if c.Server.URL == "" {
		c.Server.URL = d.Server.URL
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = d.Server.TimeoutSecs
	}

	switch {
	case c.Session.TimeoutSecs <= 0:
		c.Session.TimeoutSecs = d.Session.TimeoutSecs
	case c.Session.TimeoutSecs < MinSessionTimeoutSecs:
		c.Session.TimeoutSecs = MinSessionTimeoutSecs
	case c.Session.TimeoutSecs > MaxSessionTimeoutSecs:
		c.Session.TimeoutSecs = MaxSessionTimeoutSecs
	}
	if c.Session.WarningLeadSecs <= 0 {
		c.Session.WarningLeadSecs = d.Session.WarningLeadSecs
	}
	if c.Session.PollIntervalSecs <= 0 {
		c.Session.PollIntervalSecs = d.Session.PollIntervalSecs
	}
	if c.Session.WarningDisplaySecs <= 0 {
		c.Session.WarningDisplaySecs = d.Session.WarningDisplaySecs
	}

	if c.Store.Backend == "" {
		c.Store.Backend = d.Store.Backend
	}
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate reports every invalid setting as ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Server.URL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http or https URL", c.Server.URL),
		})
	}
	if c.Server.LoginsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.logins_per_minute",
			Message: "must not be negative",
		})
	}

	if c.Session.TimeoutSecs < MinSessionTimeoutSecs || c.Session.TimeoutSecs > MaxSessionTimeoutSecs {
		errs = append(errs, ValidationError{
			Field: "session.timeout_secs",
			Message: fmt.Sprintf("%d out of range [%d, %d]",
				c.Session.TimeoutSecs, MinSessionTimeoutSecs, MaxSessionTimeoutSecs),
		})
	}
	if c.Session.WarningLeadSecs <= 0 || c.Session.WarningLeadSecs >= c.Session.TimeoutSecs {
		errs = append(errs, ValidationError{
			Field:   "session.warning_lead_secs",
			Message: fmt.Sprintf("%d must be positive and less than session.timeout_secs (%d)", c.Session.WarningLeadSecs, c.Session.TimeoutSecs),
		})
	}
	if c.Session.PollIntervalSecs <= 0 {
		errs = append(errs, ValidationError{Field: "session.poll_interval_secs", Message: "must be positive"})
	}
	if c.Session.WarningDisplaySecs <= 0 {
		errs = append(errs, ValidationError{Field: "session.warning_display_secs", Message: "must be positive"})
	}

	if !validBackend(c.Store.Backend) {
		errs = append(errs, ValidationError{
			Field:   "store.backend",
			Message: fmt.Sprintf("invalid backend '%s', must be one of: %s", c.Store.Backend, strings.Join(storage.Backends(), ", ")),
		})
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil || c.Log.Level == "" {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s'", c.Log.Level),
		})
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: console, json", c.Log.Format),
		})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validBackend(name string) bool {
	for _, b := range storage.Backends() {
		if name == b {
			return true
		}
	}
	return false
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// Policy converts the session settings.
func (c *Config) Policy() session.Policy {
	return session.Policy{
		Timeout:        time.Duration(c.Session.TimeoutSecs) * time.Second,
		WarningLead:    time.Duration(c.Session.WarningLeadSecs) * time.Second,
		PollInterval:   time.Duration(c.Session.PollIntervalSecs) * time.Second,
		WarningDisplay: time.Duration(c.Session.WarningDisplaySecs) * time.Second,
	}
}

// RequestTimeout returns the per-request server timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}
