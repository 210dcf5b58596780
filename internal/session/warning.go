// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/jeranaias/libcat-tui/internal/clock"
)

// WarningState is the transient expiry warning. It is never persisted.
type WarningState struct {
	Visible bool
	ShownAt time.Time
	Message string
}

// Presenter shows at most one expiry warning at a time and removes it
// after a fixed display duration.
//
// Presenter methods expect the owning controller's lock to be held; the
// auto-dismiss timer acquires it itself.
type Presenter struct {
	clock   clock.Clock
	locker  sync.Locker
	display time.Duration

	// onChange runs with the lock held after every visible transition.
	onChange func(WarningState)

	state  WarningState
	gen    uint64
	timer  clock.Timer
	closed bool
}

// Open allows warnings to be shown again after a Close.
func (p *Presenter) Open() {
	p.closed = false
}

// Close dismisses any visible warning and turns later Show calls into
// no-ops until the next Open.
func (p *Presenter) Close() {
	p.Dismiss()
	p.closed = true
}

// Show makes the warning visible. It reports false without side effects if
// the presenter is closed or a warning is already visible.
func (p *Presenter) Show(message string) bool {
	if p.closed || p.state.Visible {
		return false
	}

	p.gen++
	gen := p.gen
	p.state = WarningState{Visible: true, ShownAt: p.clock.Now(), Message: message}
	p.timer = p.clock.AfterFunc(p.display, func() { p.expire(gen) })
	p.changed()
	return true
}

// Dismiss hides the warning. It reports whether one was visible.
func (p *Presenter) Dismiss() bool {
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if !p.state.Visible {
		return false
	}
	p.state = WarningState{}
	p.changed()
	return true
}

// State returns the current warning.
func (p *Presenter) State() WarningState {
	return p.state
}

func (p *Presenter) expire(gen uint64) {
	p.locker.Lock()
	defer p.locker.Unlock()

	if gen != p.gen {
		return
	}
	p.timer = nil
	p.Dismiss()
}

func (p *Presenter) changed() {
	if p.onChange != nil {
		p.onChange(p.state)
	}
}

// WarningMessage is the text shown lead before the absolute deadline.
func WarningMessage(lead time.Duration) string {
	mins := int(lead / time.Minute)
	if mins < 1 {
		return "Your session is about to expire. Press e to extend your session."
	}
	unit := "minutes"
	if mins == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Your session will expire in %d %s. Press e to extend your session.", mins, unit)
}
