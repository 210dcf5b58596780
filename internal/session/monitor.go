// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/libcat-tui/internal/clock"
)

// Monitor owns the two timers of an active session: a recurring poll that
// expires the session once the stored record turns invalid, and a one-shot
// warning armed relative to the login instant.
//
// Like Tracker, Monitor shares the controller's lock. Start and Stop are
// called with the lock held; timer callbacks acquire it.
type Monitor struct {
	store  Store
	policy Policy
	clock  clock.Clock
	locker sync.Locker
	log    zerolog.Logger

	// onExpired, onCleared and onWarning run with the lock held.
	onExpired func()
	onCleared func()
	onWarning func()

	gen     uint64
	running bool
	poll    clock.Timer
	warning clock.Timer
}

// Start arms both timers for a session that began at loginAt. Any timers
// from a previous Start are cancelled first.
func (m *Monitor) Start(loginAt time.Time) {
	m.Stop()
	m.running = true
	gen := m.gen

	m.armPoll(gen)

	delay := loginAt.Add(m.policy.WarningDelay()).Sub(m.clock.Now())
	if delay < 0 {
		delay = 0
	}
	m.warning = m.clock.AfterFunc(delay, func() { m.warningFired(gen) })
}

// Stop cancels both timers. Callbacks already waiting on the lock see a
// newer generation and return without acting.
func (m *Monitor) Stop() {
	m.gen++
	m.running = false
	if m.poll != nil {
		m.poll.Stop()
		m.poll = nil
	}
	if m.warning != nil {
		m.warning.Stop()
		m.warning = nil
	}
}

// Running reports whether timers are armed.
func (m *Monitor) Running() bool {
	return m.running
}

func (m *Monitor) armPoll(gen uint64) {
	m.poll = m.clock.AfterFunc(m.policy.PollInterval, func() { m.pollFired(gen) })
}

func (m *Monitor) current(gen uint64) bool {
	return m.running && m.gen == gen
}

// check re-reads the store. A read failure counts as invalid; cleared
// reports that no user is stored any more.
func (m *Monitor) check() (valid, cleared bool) {
	rec, err := m.store.Load()
	if err != nil {
		m.log.Error().Err(err).Msg("load session for poll")
		return false, false
	}
	if rec == nil {
		return false, true
	}
	return m.policy.IsValid(rec, m.clock.Now()), false
}

func (m *Monitor) pollFired(gen uint64) {
	m.locker.Lock()
	defer m.locker.Unlock()

	if !m.current(gen) {
		return
	}
	valid, cleared := m.check()
	if valid {
		m.armPoll(gen)
		return
	}

	m.Stop()
	if cleared && m.onCleared != nil {
		m.onCleared()
		return
	}
	if m.onExpired != nil {
		m.onExpired()
	}
}

func (m *Monitor) warningFired(gen uint64) {
	m.locker.Lock()
	defer m.locker.Unlock()

	if !m.current(gen) {
		return
	}
	m.warning = nil
	if valid, _ := m.check(); !valid {
		return
	}
	if m.onWarning != nil {
		m.onWarning()
	}
}
