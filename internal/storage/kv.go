// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("storage closed")
)

// =============================================================================
// KV INTERFACE
// =============================================================================

// KV is a synchronous string-keyed store. Multi-key writes are atomic.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// GetMany reads keys from one consistent snapshot. Missing keys are
	// absent from the result.
	GetMany(keys ...string) (map[string]string, error)

	// SetMany writes every entry in one atomic step.
	SetMany(values map[string]string) error

	// Delete removes keys in one atomic step. Missing keys are ignored.
	Delete(keys ...string) error

	// Close releases the backend.
	Close() error
}

// Set writes a single key.
func Set(kv KV, key, value string) error {
	return kv.SetMany(map[string]string{key: value})
}

// =============================================================================
// BACKEND SELECTION
// =============================================================================

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendBolt, BackendMemory}
}

// DefaultPath returns the default location for a backend under dir.
func DefaultPath(dir, backend string) string {
	switch backend {
	case BackendSQLite:
		return filepath.Join(dir, "session.db")
	case BackendBolt:
		return filepath.Join(dir, "session.bolt")
	default:
		return filepath.Join(dir, "session.json")
	}
}

// Open creates the backend named by backend at path. The path is ignored
// for the memory backend. A leading "~/" expands to the home directory.
func Open(backend, path string) (KV, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend != BackendMemory {
		expanded, err := expandHome(path)
		if err != nil {
			return nil, err
		}
		path = expanded
	}

	switch backend {
	case BackendFile:
		return NewFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendBolt:
		return OpenBolt(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, backend, strings.Join(Backends(), ", "))
	}
}

func expandHome(path string) (string, error) {
	if path == "" {
		return "", errors.New("storage path is empty")
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
