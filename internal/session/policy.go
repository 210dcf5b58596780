// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "time"

// =============================================================================
// TIMEOUT CONSTANTS
// =============================================================================

const (
	// SessionTimeout bounds both the absolute session age and the gap
	// between two recognised activities.
	SessionTimeout = 30 * time.Minute

	// WarningLead is how long before the absolute deadline the expiry
	// warning is raised (25 minutes after login by default).
	WarningLead = 5 * time.Minute

	// PollInterval is how often the monitor re-evaluates the stored record.
	PollInterval = 60 * time.Second

	// WarningDisplay is how long the warning stays up unless dismissed.
	WarningDisplay = 10 * time.Second
)

// =============================================================================
// POLICY
// =============================================================================

// Policy holds the timing parameters of the session lifecycle.
type Policy struct {
	Timeout        time.Duration
	WarningLead    time.Duration
	PollInterval   time.Duration
	WarningDisplay time.Duration
}

// DefaultPolicy returns the standard 30 minute policy.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:        SessionTimeout,
		WarningLead:    WarningLead,
		PollInterval:   PollInterval,
		WarningDisplay: WarningDisplay,
	}
}

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.Timeout <= 0 {
		p.Timeout = d.Timeout
	}
	if p.WarningLead <= 0 {
		p.WarningLead = d.WarningLead
	}
	if p.PollInterval <= 0 {
		p.PollInterval = d.PollInterval
	}
	if p.WarningDisplay <= 0 {
		p.WarningDisplay = d.WarningDisplay
	}
	return p
}

// IsValid reports whether rec describes a live session at now.
//
// It fails closed: a nil record, an empty user, or a missing timestamp is
// invalid. The session is invalid once either the login age or the idle
// gap exceeds Timeout.
func (p Policy) IsValid(rec *Record, now time.Time) bool {
	if rec == nil || rec.User == "" {
		return false
	}
	if rec.LoginTime.IsZero() || rec.LastActivity.IsZero() {
		return false
	}
	if now.Sub(rec.LoginTime) > p.Timeout {
		return false
	}
	if now.Sub(rec.LastActivity) > p.Timeout {
		return false
	}
	return true
}

// Remaining returns the time until rec stops being valid, or 0 if it
// already is not.
func (p Policy) Remaining(rec *Record, now time.Time) time.Duration {
	if !p.IsValid(rec, now) {
		return 0
	}
	deadline := rec.LoginTime.Add(p.Timeout)
	if idle := rec.LastActivity.Add(p.Timeout); idle.Before(deadline) {
		deadline = idle
	}
	remaining := deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// WarningDelay is the offset from login at which the warning fires.
func (p Policy) WarningDelay() time.Duration {
	d := p.Timeout - p.WarningLead
	if d < 0 {
		return 0
	}
	return d
}

// IsValid evaluates rec against DefaultPolicy.
func IsValid(rec *Record, now time.Time) bool {
	return DefaultPolicy().IsValid(rec, now)
}
