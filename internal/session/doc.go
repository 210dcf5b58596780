// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the client-side session lifecycle for libcat.
//
// A session begins when the authentication endpoint accepts a login and
// ends on explicit logout or on expiry. A session is valid for at most
// SessionTimeout after login and dies after SessionTimeout without
// recognised activity. A one-shot warning is raised WarningLead before the
// absolute deadline.
//
// # Key Types
//
//   - Record: the persisted session (user, login time, last activity)
//   - Store: narrow persistence interface (see package storage)
//   - Policy: pure validity evaluation
//   - Tracker / Dispatcher: activity signals refreshing LastActivity
//   - Monitor: polling and warning timers
//   - Presenter: the single, auto-dismissing expiry warning
//   - Controller: login, logout, extension and the state machine
//
// # Usage
//
//	ctrl, err := session.NewController(session.Options{
//	    Store:  storage.NewSessionStore(kv),
//	    Logger: log,
//	})
//	ctrl.Restore()
//	ctrl.Login("admin", weatherJSON)
//	ctrl.Dispatcher().Dispatch(session.Signal{Kind: session.KeyPress, At: time.Now()})
//	ctrl.Logout()
//
// # Concurrency
//
// Every public Controller method and every timer callback runs under a
// single mutex. Teardown bumps a generation counter so callbacks that were
// already in flight when a session ended become no-ops.
package session
