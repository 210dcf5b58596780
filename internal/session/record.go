// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"time"
)

// Record is the persisted session. A zero timestamp means the stored value
// was missing or could not be parsed.
type Record struct {
	// ID is minted at login and distinguishes consecutive sessions.
	ID string

	// User is the principal returned by the authentication endpoint.
	User string

	// LoginTime is when the session began. It never changes.
	LoginTime time.Time

	// LastActivity is the most recent recognised interaction.
	LastActivity time.Time
}

// Clone returns a copy of the record, or nil for a nil receiver.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// Store persists the session record and the cached weather document.
//
// Implementations must write the core group (ID, User, LoginTime,
// LastActivity) atomically, and must never cache reads: another writer
// may have changed the record since the last call.
type Store interface {
	// Load returns the stored record, or nil when no user is stored.
	Load() (*Record, error)

	// Save replaces the core group with rec.
	Save(rec *Record) error

	// Touch moves LastActivity forward to at. It never moves it backwards
	// and does nothing when no session is stored.
	Touch(at time.Time) error

	// Clear removes the core group. The weather document survives.
	Clear() error

	// LoadWeather returns the cached weather document, or nil.
	LoadWeather() (json.RawMessage, error)

	// SaveWeather replaces the cached weather document.
	SaveWeather(doc json.RawMessage) error
}
