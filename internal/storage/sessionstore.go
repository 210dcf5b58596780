// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/libcat-tui/internal/session"
)

// Keys of the persisted layout.
const (
	KeySessionID    = "sessionId"
	KeyUser         = "user"
	KeyLoginTime    = "loginTime"
	KeyLastActivity = "lastActivity"
	KeyWeather      = "weather"
)

// TimeFormat is the encoding for loginTime and lastActivity.
const TimeFormat = time.RFC3339Nano

// coreKeys are written and cleared as one group.
var coreKeys = []string{KeySessionID, KeyUser, KeyLoginTime, KeyLastActivity}

// SessionStore implements session.Store over a KV.
type SessionStore struct {
	kv KV

	// mu makes Touch's read-compare-write atomic within this process.
	mu sync.Mutex
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore wraps kv.
func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// KV returns the underlying medium.
func (s *SessionStore) KV() KV {
	return s.kv
}

// Load reads the core group. It returns nil when no user is stored.
// Timestamps that are missing or malformed load as the zero time.
//
// The group is read in one snapshot, so a concurrent Save by another
// process is seen whole or not at all.
func (s *SessionStore) Load() (*session.Record, error) {
	values, err := s.kv.GetMany(coreKeys...)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	user := values[KeyUser]
	if user == "" {
		return nil, nil
	}
	return &session.Record{
		ID:           values[KeySessionID],
		User:         user,
		LoginTime:    ParseTime(values[KeyLoginTime]),
		LastActivity: ParseTime(values[KeyLastActivity]),
	}, nil
}

func (s *SessionStore) Save(rec *session.Record) error {
	if rec == nil {
		return s.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.kv.SetMany(map[string]string{
		KeySessionID:    rec.ID,
		KeyUser:         rec.User,
		KeyLoginTime:    FormatTime(rec.LoginTime),
		KeyLastActivity: FormatTime(rec.LastActivity),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Touch(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.kv.GetMany(KeyUser, KeyLastActivity)
	if err != nil {
		return fmt.Errorf("touch: %w", err)
	}
	if values[KeyUser] == "" {
		return nil
	}
	if !at.After(ParseTime(values[KeyLastActivity])) {
		return nil
	}
	if err := Set(s.kv, KeyLastActivity, FormatTime(at)); err != nil {
		return fmt.Errorf("touch: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(coreKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// LoadWeather returns the cached document. A value that is not valid JSON
// is treated as absent.
func (s *SessionStore) LoadWeather() (json.RawMessage, error) {
	raw, ok, err := s.kv.Get(KeyWeather)
	if err != nil {
		return nil, fmt.Errorf("load weather: %w", err)
	}
	if !ok || !json.Valid([]byte(raw)) {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

func (s *SessionStore) SaveWeather(doc json.RawMessage) error {
	if len(doc) == 0 {
		if err := s.kv.Delete(KeyWeather); err != nil {
			return fmt.Errorf("clear weather: %w", err)
		}
		return nil
	}
	if !json.Valid(doc) {
		return fmt.Errorf("save weather: document is not valid JSON")
	}
	if err := Set(s.kv, KeyWeather, string(doc)); err != nil {
		return fmt.Errorf("save weather: %w", err)
	}
	return nil
}

// FormatTime encodes t for storage. The zero time encodes as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

// ParseTime decodes a stored timestamp, returning the zero time for
// anything it cannot parse. Integer values are read as Unix milliseconds,
// the encoding used by browser clients sharing the layout.
func ParseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms <= 0 {
			return time.Time{}
		}
		return time.UnixMilli(ms).UTC()
	}
	t, err := time.Parse(TimeFormat, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
