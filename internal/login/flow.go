// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login runs the sign-in form: validation, authentication, the
// best-effort weather lookup, and finally starting the session.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/jeranaias/libcat-tui/internal/api"
)

// Field names used in FieldErrors.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldCity     = "city"
)

// Minimum lengths, in characters.
const (
	MinUsernameLen = 3
	MinPasswordLen = 6
)

// Authenticator checks credentials and returns the accepted principal.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// WeatherSource looks up the weather for a city.
type WeatherSource interface {
	WeatherByCity(ctx context.Context, city string) (json.RawMessage, error)
}

// Sessions starts a session. session.Controller satisfies it.
type Sessions interface {
	Login(principal string, weather json.RawMessage) error
}

// Form is the submitted sign-in form.
type Form struct {
	Username string
	Password string
	City     string
}

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e[k]
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the form without contacting the server.
func (f Form) Validate() FieldErrors {
	errs := FieldErrors{}

	switch user := strings.TrimSpace(f.Username); {
	case user == "":
		errs[FieldUsername] = "Username is required"
	case utf8.RuneCountInString(user) < MinUsernameLen:
		errs[FieldUsername] = "Username must be at least 3 characters"
	}

	switch {
	case f.Password == "":
		errs[FieldPassword] = "Password is required"
	case utf8.RuneCountInString(f.Password) < MinPasswordLen:
		errs[FieldPassword] = "Password must be at least 6 characters"
	}

	if strings.TrimSpace(f.City) == "" {
		errs[FieldCity] = "City is required"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Result describes a successful sign-in.
type Result struct {
	Principal string
	Weather   json.RawMessage // nil when the lookup failed
}

// Flow wires the form to its collaborators.
type Flow struct {
	auth     Authenticator
	weather  WeatherSource
	sessions Sessions
	log      zerolog.Logger
}

// NewFlow creates a Flow. weather may be nil.
func NewFlow(auth Authenticator, weather WeatherSource, sessions Sessions, log zerolog.Logger) *Flow {
	return &Flow{auth: auth, weather: weather, sessions: sessions, log: log}
}

// Submit validates and signs in. It returns FieldErrors for an invalid
// form, an api error for a failed authentication, or the error from
// starting the session. The session is only started on success.
func (f *Flow) Submit(ctx context.Context, form Form) (*Result, error) {
	if errs := form.Validate(); errs != nil {
		return nil, errs
	}

	username := strings.TrimSpace(form.Username)
	principal, err := f.auth.Authenticate(ctx, username, form.Password)
	if err != nil {
		f.log.Warn().Err(err).Str("user", username).Msg("authentication failed")
		return nil, err
	}

	var doc json.RawMessage
	if f.weather != nil {
		doc, err = f.weather.WeatherByCity(ctx, strings.TrimSpace(form.City))
		if err != nil {
			f.log.Debug().Err(err).Str("city", form.City).Msg("weather lookup failed")
			doc = nil
		}
	}

	if err := f.sessions.Login(principal, doc); err != nil {
		return nil, err
	}
	return &Result{Principal: principal, Weather: doc}, nil
}

// Message returns the general message for a Submit error, or "" for
// field errors, which are shown next to their fields.
func Message(err error) string {
	var fe FieldErrors
	if err == nil || errors.As(err, &fe) {
		return ""
	}
	return api.UserMessage(err)
}
