// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the durable, string-keyed media behind the
// session store.
//
// The layout mirrors a browser's local storage: a flat set of string keys
// (sessionId, user, loginTime, lastActivity, weather). SessionStore maps
// that layout onto session.Record.
//
// # Backends
//
//   - Memory: in-process map, for tests and throwaway runs
//   - File: a single JSON object, written atomically; Watch reports edits
//     made by other libcat processes
//   - SQLite: one kv table (modernc.org/sqlite, no cgo)
//   - Bolt: one bbolt bucket; the database file is locked by the opening
//     process
//
// # Usage
//
//	kv, err := storage.Open(storage.BackendFile, "~/.libcat/session.json")
//	store := storage.NewSessionStore(kv)
//	rec, err := store.Load()
package storage
