// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads libcat settings.
//
// # Configuration Precedence
//
// Highest first:
//   - command-line flags (applied by the cli package)
//   - LIBCAT_* environment variables, including ones set by a .env file
//   - ~/.libcat/config.toml
//   - built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	policy := cfg.Policy()
package config
