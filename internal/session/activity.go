// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/libcat-tui/internal/clock"
)

// =============================================================================
// ACTIVITY SIGNALS
// =============================================================================

// ActivityKind identifies a class of user interaction.
type ActivityKind int

const (
	// PointerDown is a mouse button press.
	PointerDown ActivityKind = iota
	// PointerMove is pointer motion.
	PointerMove
	// KeyPress is any key.
	KeyPress
	// Scroll is a wheel or scroll gesture.
	Scroll
	// TouchStart is the start of a touch gesture.
	TouchStart
	// Click is a completed press and release.
	Click
)

// String returns a string representation of the ActivityKind.
func (k ActivityKind) String() string {
	switch k {
	case PointerDown:
		return "pointer-down"
	case PointerMove:
		return "pointer-move"
	case KeyPress:
		return "key-press"
	case Scroll:
		return "scroll"
	case TouchStart:
		return "touch-start"
	case Click:
		return "click"
	default:
		return "unknown"
	}
}

// ParseActivityKind maps a name produced by String back to its kind.
func ParseActivityKind(name string) (ActivityKind, bool) {
	for _, k := range DefaultActivityKinds() {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// DefaultActivityKinds returns every kind that counts as proof of liveness.
func DefaultActivityKinds() []ActivityKind {
	return []ActivityKind{PointerDown, PointerMove, KeyPress, Scroll, TouchStart, Click}
}

// Signal is a single user interaction, independent of its source.
type Signal struct {
	Kind ActivityKind
	At   time.Time
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Dispatcher fans signals out to handlers subscribed per kind.
type Dispatcher struct {
	mu       sync.Mutex
	nextID   int
	handlers map[ActivityKind]map[int]func(Signal)
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[ActivityKind]map[int]func(Signal))}
}

// Subscribe registers fn for kind and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (d *Dispatcher) Subscribe(kind ActivityKind, fn func(Signal)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	if d.handlers[kind] == nil {
		d.handlers[kind] = make(map[int]func(Signal))
	}
	d.handlers[kind][id] = fn

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers[kind], id)
		if len(d.handlers[kind]) == 0 {
			delete(d.handlers, kind)
		}
	}
}

// Dispatch delivers sig to every handler subscribed to its kind. Handlers
// run on the calling goroutine, outside the dispatcher lock.
func (d *Dispatcher) Dispatch(sig Signal) {
	d.mu.Lock()
	subs := make([]func(Signal), 0, len(d.handlers[sig.Kind]))
	for _, fn := range d.handlers[sig.Kind] {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn(sig)
	}
}

// Subscribers returns how many handlers are registered for kind.
func (d *Dispatcher) Subscribers(kind ActivityKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers[kind])
}

// Total returns the number of handlers across all kinds.
func (d *Dispatcher) Total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, subs := range d.handlers {
		n += len(subs)
	}
	return n
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker refreshes the stored LastActivity on every configured signal.
//
// The tracker shares the controller's lock: handlers take it, and Start and
// Stop expect the caller to already hold it.
type Tracker struct {
	store      Store
	dispatcher *Dispatcher
	kinds      []ActivityKind
	policy     Policy
	clock      clock.Clock
	locker     sync.Locker
	log        zerolog.Logger

	// onInvalid runs, with the lock held, when a signal arrives for a
	// session that has already crossed a timeout bound.
	onInvalid func()

	// onCleared runs, with the lock held, when the record is gone.
	onCleared func()

	running bool
	cancels []func()
}

// Start subscribes to every configured kind. A running tracker is stopped
// first so handlers never accumulate.
func (t *Tracker) Start() {
	t.Stop()
	for _, kind := range t.kinds {
		t.cancels = append(t.cancels, t.dispatcher.Subscribe(kind, t.handle))
	}
	t.running = true
}

// Stop removes every subscription.
func (t *Tracker) Stop() {
	for _, cancel := range t.cancels {
		cancel()
	}
	t.cancels = nil
	t.running = false
}

// Running reports whether the tracker is subscribed.
func (t *Tracker) Running() bool {
	return t.running
}

func (t *Tracker) handle(sig Signal) {
	t.locker.Lock()
	defer t.locker.Unlock()

	// Unsubscribed between Dispatch snapshotting handlers and now.
	if !t.running {
		return
	}

	at := sig.At
	if at.IsZero() {
		at = t.clock.Now()
	}

	rec, err := t.store.Load()
	if err != nil {
		t.log.Error().Err(err).Str("signal", sig.Kind.String()).Msg("load session for activity")
		return
	}
	if rec == nil {
		if t.onCleared != nil {
			t.onCleared()
		}
		return
	}
	if !t.policy.IsValid(rec, at) {
		if t.onInvalid != nil {
			t.onInvalid()
		}
		return
	}
	if err := t.store.Touch(at); err != nil {
		t.log.Error().Err(err).Str("signal", sig.Kind.String()).Msg("refresh last activity")
	}
}
