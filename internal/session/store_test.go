// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"sync"
	"time"
)

// memStore is a minimal Store for exercising the lifecycle without a
// backing medium.
type memStore struct {
	mu      sync.Mutex
	rec     *Record
	weather json.RawMessage
	loadErr error
	saves   int
	clears  int
}

func (s *memStore) Load() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.rec.Clone(), nil
}

func (s *memStore) Save(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.rec = rec.Clone()
	return nil
}

func (s *memStore) Touch(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil
	}
	if at.After(s.rec.LastActivity) {
		s.rec.LastActivity = at
	}
	return nil
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.rec = nil
	return nil
}

func (s *memStore) LoadWeather() (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weather, nil
}

func (s *memStore) SaveWeather(doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather = append(json.RawMessage(nil), doc...)
	return nil
}

func (s *memStore) record() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

func (s *memStore) put(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec.Clone()
}
