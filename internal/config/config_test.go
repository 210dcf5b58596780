// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/libcat-tui/internal/session"
)

// clearEnv unsets every LIBCAT_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvServer, EnvStore, EnvStorePath, EnvLogLevel, EnvLogFormat, EnvSessionTimeoutSecs} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://127.0.0.1:8000", cfg.Server.URL)
	assert.Equal(t, 1800, cfg.Session.TimeoutSecs)
	assert.Equal(t, 300, cfg.Session.WarningLeadSecs)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, session.DefaultPolicy(), cfg.Policy())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
}

func TestConfig_LoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestConfig_LoadTOML(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
url = "https://library.example.org"

[session]
timeout_secs = 900
warning_lead_secs = 120

[store]
backend = "SQLite"

[log]
level = "debug"
format = "json"
`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://library.example.org", cfg.Server.URL)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "json", cfg.Log.Format)

	p := cfg.Policy()
	assert.Equal(t, 15*time.Minute, p.Timeout)
	assert.Equal(t, 2*time.Minute, p.WarningLead)
	assert.Equal(t, session.PollInterval, p.PollInterval)
}

func TestConfig_LoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[session]\ntimeout = 5\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.timeout")
}

func TestConfig_LoadMalformedTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv(EnvServer, "http://10.0.0.5:9000")
	t.Setenv(EnvStore, "bolt")
	t.Setenv(EnvStorePath, "/var/lib/libcat/session.bolt")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvSessionTimeoutSecs, "600")

	cfg, err := LoadFromPath("")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.Server.URL)
	assert.Equal(t, "bolt", cfg.Store.Backend)
	assert.Equal(t, "/var/lib/libcat/session.bolt", cfg.Store.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 600, cfg.Session.TimeoutSecs)

	path, err := cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/libcat/session.bolt", path)
}

func TestConfig_EnvIgnoresMalformedNumber(t *testing.T) {
	cfg := Default()
	t.Setenv(EnvSessionTimeoutSecs, "half an hour")
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 1800, cfg.Session.TimeoutSecs)
}

func TestConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LIBCAT_STORE=memory\n"), 0600))
	t.Cleanup(func() { os.Unsetenv(EnvStore) })

	cfg, err := LoadFromPath(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestConfig_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LIBCAT_STORE=memory\n"), 0600))
	t.Setenv(EnvStore, "sqlite")

	cfg, err := LoadFromPath(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
}

func TestConfig_SetDefaultsClampsTimeout(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1800},
		{-5, 1800},
		{10, MinSessionTimeoutSecs},
		{900, 900},
		{7200, MaxSessionTimeoutSecs},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Session.TimeoutSecs = tt.in
		cfg.SetDefaults()
		assert.Equal(t, tt.want, cfg.Session.TimeoutSecs, "input %d", tt.in)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.Server.URL = "/login" }, "server.url"},
		{"bad scheme", func(c *Config) { c.Server.URL = "ftp://host" }, "server.url"},
		{"negative rate", func(c *Config) { c.Server.LoginsPerMinute = -1 }, "server.logins_per_minute"},
		{"timeout out of range", func(c *Config) { c.Session.TimeoutSecs = 5 }, "session.timeout_secs"},
		{"lead equals timeout", func(c *Config) { c.Session.WarningLeadSecs = 1800 }, "session.warning_lead_secs"},
		{"zero poll", func(c *Config) { c.Session.PollIntervalSecs = 0 }, "session.poll_interval_secs"},
		{"zero display", func(c *Config) { c.Session.WarningDisplaySecs = 0 }, "session.warning_display_secs"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, "store.backend"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Server.URL = ""
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "server.url")
	assert.Contains(t, err.Error(), "log.format")
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.UI.DefaultCity = "Lisbon"
	cfg.Session.TimeoutSecs = 1200
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfig_DefaultPaths(t *testing.T) {
	t.Setenv("HOME", "/home/reader")
	cfg := Default()

	store, err := cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/reader", ".libcat", "session.json"), store)

	cfg.Store.Backend = "sqlite"
	store, err = cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/reader", ".libcat", "session.db"), store)

	logPath, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/reader", ".libcat", "libcat.log"), logPath)
}
