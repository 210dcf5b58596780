// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/libcat-tui/internal/config"
)

// Build information, set by main.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	store      string
	storePath  string
	server     string
	logLevel   string
	logFormat  string
}

// NewRootCmd creates the root cobra command for the libcat CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:     "libcat",
		Short:   "libcat - library catalogue client",
		Long:    "libcat signs you in to the library catalogue and keeps the session alive while you work.",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetVersionTemplate(fmt.Sprintf("libcat {{.Version}} (commit %s, built %s)\n", GitCommit, BuildDate))

	defaultConfig, _ := config.Path()
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", defaultConfig, "Config file path")
	pf.StringVar(&opts.store, "store", "", "Session store backend (file, sqlite, bolt, memory)")
	pf.StringVar(&opts.storePath, "store-path", "", "Session store location")
	pf.StringVar(&opts.server, "server", "", "Library server URL (or "+config.EnvServer+" env)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format (console, json)")

	root.AddCommand(
		newTUICmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newExtendCmd(opts),
		newStatusCmd(opts),
		newWeatherCmd(opts),
	)
	return root
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromPath(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.store != "" {
		cfg.Store.Backend = o.store
		if o.storePath == "" {
			cfg.Store.Path = ""
		}
	}
	if o.storePath != "" {
		cfg.Store.Path = o.storePath
	}
	if o.server != "" {
		cfg.Server.URL = o.server
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
