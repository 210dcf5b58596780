// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/libcat-tui/internal/clock"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoStore is returned by NewController without a Store.
	ErrNoStore = errors.New("session store is required")

	// ErrEmptyPrincipal is returned by Login for a blank principal.
	ErrEmptyPrincipal = errors.New("principal must not be empty")
)

// =============================================================================
// STATE
// =============================================================================

// State is the session-level state.
type State int

const (
	// StateLoggedOut means no session exists.
	StateLoggedOut State = iota
	// StateActive means a valid session exists and is being monitored.
	StateActive
	// StateExpired means the session was ended involuntarily and the user
	// has not acknowledged it yet.
	StateExpired
)

// String returns a string representation of the State.
func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "LOGGED_OUT"
	case StateActive:
		return "ACTIVE"
	case StateExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is a consistent view of the controller for rendering.
type Snapshot struct {
	State     State
	Record    *Record
	Warning   WarningState
	Remaining time.Duration
	LoginAge  time.Duration
	Idle      time.Duration
	At        time.Time
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Options configures a Controller.
type Options struct {
	// Store persists the record. Required.
	Store Store

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Policy zero fields default to DefaultPolicy.
	Policy Policy

	// ActivityKinds defaults to DefaultActivityKinds.
	ActivityKinds []ActivityKind

	// Dispatcher defaults to a new, private dispatcher.
	Dispatcher *Dispatcher

	Logger zerolog.Logger
}

// Controller drives the session state machine. It is the only writer of
// the record's ID, User and LoginTime.
type Controller struct {
	mu sync.Mutex

	store      Store
	clock      clock.Clock
	policy     Policy
	log        zerolog.Logger
	dispatcher *Dispatcher

	tracker   *Tracker
	monitor   *Monitor
	presenter *Presenter

	state     State
	sessionID string

	dirty     bool
	observers map[int]func(Snapshot)
	nextObs   int
}

// NewController creates a controller in the LoggedOut state. Call Restore
// to adopt a session persisted by an earlier process.
func NewController(opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, ErrNoStore
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewDispatcher()
	}
	kinds := opts.ActivityKinds
	if len(kinds) == 0 {
		kinds = DefaultActivityKinds()
	}
	policy := opts.Policy.withDefaults()
	log := opts.Logger.With().Str("component", "session").Logger()

	c := &Controller{
		store:      opts.Store,
		clock:      opts.Clock,
		policy:     policy,
		log:        log,
		dispatcher: opts.Dispatcher,
		observers:  make(map[int]func(Snapshot)),
	}
	locker := ctrlLocker{c}

	c.tracker = &Tracker{
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		kinds:      append([]ActivityKind(nil), kinds...),
		policy:     policy,
		clock:      opts.Clock,
		locker:     locker,
		log:        log,
		onInvalid:  func() { c.forceLogoutLocked("inactive_on_activity") },
		onCleared:  func() { c.signedOutLocked("external") },
	}
	c.monitor = &Monitor{
		store:     opts.Store,
		policy:    policy,
		clock:     opts.Clock,
		locker:    locker,
		log:       log,
		onExpired: func() { c.forceLogoutLocked("poll") },
		onCleared: func() { c.signedOutLocked("external") },
		onWarning: c.showWarningLocked,
	}
	c.presenter = &Presenter{
		clock:    opts.Clock,
		locker:   locker,
		display:  policy.WarningDisplay,
		onChange: func(WarningState) { c.dirty = true },
		closed:   true,
	}
	return c, nil
}

// ctrlLocker lets the tracker, monitor and presenter share the controller
// lock. Unlock flushes pending observer notifications.
type ctrlLocker struct{ c *Controller }

func (l ctrlLocker) Lock()   { l.c.mu.Lock() }
func (l ctrlLocker) Unlock() { l.c.unlock() }

func (c *Controller) lock() {
	c.mu.Lock()
}

// unlock releases the lock and, if anything changed, notifies observers
// outside of it.
func (c *Controller) unlock() {
	if !c.dirty {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	snap := c.snapshotLocked()
	obs := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		obs = append(obs, fn)
	}
	c.mu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// Restore reconstructs the state from the store. A valid record resumes as
// Active; a stale one is cleared and the controller starts LoggedOut.
func (c *Controller) Restore() State {
	c.lock()
	defer c.unlock()

	c.teardownLocked()
	rec, err := c.store.Load()
	if err != nil {
		c.log.Error().Err(err).Msg("load session on startup")
	}
	now := c.clock.Now()

	switch {
	case rec == nil && err == nil:
		c.setStateLocked(StateLoggedOut)
	case c.policy.IsValid(rec, now):
		c.resumeLocked(rec)
		c.logEvent(zerolog.InfoLevel, "session_restored", rec).
			Dur("remaining", c.policy.Remaining(rec, now)).Send()
	default:
		// Present but invalid, or unreadable: fail closed.
		if cerr := c.store.Clear(); cerr != nil {
			c.log.Error().Err(cerr).Msg("clear stale session")
		}
		c.logEvent(zerolog.InfoLevel, "session_expired_on_load", rec).Send()
		c.setStateLocked(StateLoggedOut)
	}
	return c.state
}

// Login starts a brand-new session for principal. Any previous timers and
// listeners are torn down first. weather, when non-nil, is cached.
func (c *Controller) Login(principal string, weather json.RawMessage) error {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return ErrEmptyPrincipal
	}

	c.lock()
	defer c.unlock()

	c.teardownLocked()

	now := c.clock.Now()
	rec := &Record{
		ID:           uuid.NewString(),
		User:         principal,
		LoginTime:    now,
		LastActivity: now,
	}
	if err := c.store.Save(rec); err != nil {
		c.setStateLocked(StateLoggedOut)
		return fmt.Errorf("save session: %w", err)
	}
	if weather != nil {
		if err := c.store.SaveWeather(weather); err != nil {
			c.log.Warn().Err(err).Msg("cache weather")
		}
	}

	c.resumeLocked(rec)
	c.logEvent(zerolog.InfoLevel, "session_created", rec).Dur("timeout", c.policy.Timeout).Send()
	return nil
}

// Logout ends the session voluntarily. It is idempotent.
func (c *Controller) Logout() {
	c.lock()
	defer c.unlock()

	c.endLocked("logout")
	c.setStateLocked(StateLoggedOut)
}

// ExtendSession counts as a manual activity signal. It refreshes
// LastActivity (never LoginTime), clears the Expired flag and dismisses
// the warning. A session that already crossed a bound is expired instead.
func (c *Controller) ExtendSession() {
	c.lock()
	defer c.unlock()

	switch c.state {
	case StateExpired:
		c.setStateLocked(StateLoggedOut)
		return
	case StateLoggedOut:
		return
	}

	now := c.clock.Now()
	rec, err := c.store.Load()
	if err != nil {
		c.log.Error().Err(err).Msg("load session for extend")
		return
	}
	if !c.policy.IsValid(rec, now) {
		c.forceLogoutLocked("extend")
		return
	}
	if err := c.store.Touch(now); err != nil {
		c.log.Error().Err(err).Msg("extend session")
		return
	}
	c.presenter.Dismiss()
	c.dirty = true
	c.logEvent(zerolog.DebugLevel, "session_refreshed", rec).
		Dur("remaining", c.policy.Remaining(&Record{
			User: rec.User, LoginTime: rec.LoginTime, LastActivity: now,
		}, now)).Send()
}

// Acknowledge moves Expired to LoggedOut once the user has seen the notice.
func (c *Controller) Acknowledge() {
	c.lock()
	defer c.unlock()

	if c.state == StateExpired {
		c.setStateLocked(StateLoggedOut)
	}
}

// DismissWarning hides the expiry warning.
func (c *Controller) DismissWarning() {
	c.lock()
	defer c.unlock()
	c.presenter.Dismiss()
}

// Reconcile re-reads the store after another process may have changed it.
func (c *Controller) Reconcile() {
	c.lock()
	defer c.unlock()

	rec, err := c.store.Load()
	if err != nil {
		c.log.Error().Err(err).Msg("load session for reconcile")
		return
	}
	now := c.clock.Now()

	switch c.state {
	case StateActive:
		switch {
		case rec == nil:
			c.signedOutLocked("external")
		case rec.ID != c.sessionID && c.policy.IsValid(rec, now):
			c.teardownLocked()
			c.resumeLocked(rec)
			c.logEvent(zerolog.InfoLevel, "session_restored", rec).Str("reason", "external").Send()
		case !c.policy.IsValid(rec, now):
			c.forceLogoutLocked("external")
		}
	default:
		if c.policy.IsValid(rec, now) {
			c.resumeLocked(rec)
			c.logEvent(zerolog.InfoLevel, "session_restored", rec).Str("reason", "external").Send()
		}
	}
}

// Detach stops timers and listeners without touching the store. Use it on
// process exit, which is not a logout.
func (c *Controller) Detach() {
	c.lock()
	defer c.unlock()
	c.teardownLocked()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current state.
func (c *Controller) State() State {
	c.lock()
	defer c.unlock()
	return c.state
}

// Snapshot returns a consistent view for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.lock()
	defer c.unlock()
	return c.snapshotLocked()
}

// Weather returns the cached weather document, independent of the session.
func (c *Controller) Weather() json.RawMessage {
	c.lock()
	defer c.unlock()

	doc, err := c.store.LoadWeather()
	if err != nil {
		c.log.Warn().Err(err).Msg("load cached weather")
		return nil
	}
	return doc
}

// CacheWeather stores a freshly fetched weather document.
func (c *Controller) CacheWeather(doc json.RawMessage) error {
	c.lock()
	defer c.unlock()

	if err := c.store.SaveWeather(doc); err != nil {
		return fmt.Errorf("cache weather: %w", err)
	}
	c.dirty = true
	return nil
}

// Subscribe registers fn to receive a Snapshot after every change. fn runs
// outside the controller lock and may call back into the controller.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.lock()
	defer c.unlock()

	c.nextObs++
	id := c.nextObs
	c.observers[id] = fn
	return func() {
		c.lock()
		defer c.unlock()
		delete(c.observers, id)
	}
}

// Dispatcher returns the dispatcher activity signals must be sent to.
func (c *Controller) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// Policy returns the effective timing policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// =============================================================================
// INTERNALS (lock held)
// =============================================================================

// resumeLocked starts tracking and monitoring rec.
func (c *Controller) resumeLocked(rec *Record) {
	c.sessionID = rec.ID
	c.presenter.Open()
	c.tracker.Start()
	c.monitor.Start(rec.LoginTime)
	c.setStateLocked(StateActive)
}

// teardownLocked cancels timers, removes listeners and hides the warning.
func (c *Controller) teardownLocked() {
	c.tracker.Stop()
	c.monitor.Stop()
	c.presenter.Close()
}

// endLocked tears down and clears the core record.
func (c *Controller) endLocked(reason string) {
	wasActive := c.state == StateActive
	c.teardownLocked()

	if err := c.store.Clear(); err != nil {
		c.log.Error().Err(err).Str("reason", reason).Msg("clear session")
	}
	if wasActive {
		c.log.Info().Str("event", "session_terminated").Str("reason", reason).
			Str("session_id", c.sessionID).Send()
	}
	c.sessionID = ""
}

// signedOutLocked ends a session whose record another process removed.
// The store is left alone and the user lands on the sign-in view.
func (c *Controller) signedOutLocked(reason string) {
	if c.state != StateActive {
		return
	}
	c.teardownLocked()
	c.log.Info().Str("event", "session_terminated").Str("reason", reason).
		Str("session_id", c.sessionID).Send()
	c.sessionID = ""
	c.setStateLocked(StateLoggedOut)
}

// forceLogoutLocked is the involuntary end of a session.
func (c *Controller) forceLogoutLocked(reason string) {
	if c.state != StateActive {
		return
	}
	id := c.sessionID
	c.endLocked(reason)
	c.setStateLocked(StateExpired)
	c.log.Info().Str("event", "session_expired").Str("reason", reason).Str("session_id", id).Send()
}

func (c *Controller) showWarningLocked() {
	if c.presenter.Show(WarningMessage(c.policy.WarningLead)) {
		c.log.Info().Str("event", "session_warning").Str("session_id", c.sessionID).
			Dur("expires_in", c.policy.WarningLead).Send()
	}
}

func (c *Controller) setStateLocked(s State) {
	if c.state != s {
		c.state = s
		c.dirty = true
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	now := c.clock.Now()
	snap := Snapshot{
		State:   c.state,
		Warning: c.presenter.State(),
		At:      now,
	}
	if c.state != StateActive {
		return snap
	}
	rec, err := c.store.Load()
	if err != nil || rec == nil {
		return snap
	}
	snap.Record = rec
	snap.Remaining = c.policy.Remaining(rec, now)
	snap.LoginAge = now.Sub(rec.LoginTime)
	snap.Idle = now.Sub(rec.LastActivity)
	return snap
}

func (c *Controller) logEvent(level zerolog.Level, event string, rec *Record) *zerolog.Event {
	e := c.log.WithLevel(level).Str("event", event)
	if rec != nil {
		e = e.Str("session_id", rec.ID).Str("user", rec.User)
	}
	return e
}
