// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/libcat-tui/internal/login"
	"github.com/jeranaias/libcat-tui/internal/session"
	"github.com/jeranaias/libcat-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.ModeDark)
}

func typeText(f LoginForm, s string) LoginForm {
	for _, r := range s {
		f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return f
}

// =============================================================================
// HELPERS
// =============================================================================

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Minute, "0:00"},
		{59*time.Second + 900*time.Millisecond, "0:59"},
		{5 * time.Minute, "5:00"},
		{29*time.Minute + 7*time.Second, "29:07"},
		{90 * time.Minute, "90:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.in), tt.in.String())
	}
}

func TestClampWidth(t *testing.T) {
	assert.Equal(t, 40, clampWidth(20, 40, 60))
	assert.Equal(t, 52, clampWidth(60, 40, 60))
	assert.Equal(t, 60, clampWidth(200, 40, 60))
}

// =============================================================================
// LOGIN FORM
// =============================================================================

func TestLoginForm_TypingAndFocus(t *testing.T) {
	f := NewLoginForm(testTheme(), "")
	assert.Equal(t, login.FieldUsername, f.Focused())

	f = typeText(f, "admin")
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, login.FieldPassword, f.Focused())
	f = typeText(f, "password123")
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, login.FieldCity, f.Focused())
	f = typeText(f, "Oslo")

	assert.Equal(t, login.Form{Username: "admin", Password: "password123", City: "Oslo"}, f.Form())

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, login.FieldUsername, f.Focused(), "focus wraps")
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, login.FieldCity, f.Focused())
}

func TestLoginForm_PrefilledCity(t *testing.T) {
	f := NewLoginForm(testTheme(), "Lisbon")
	assert.Equal(t, "Lisbon", f.Form().City)
}

func TestLoginForm_SubmitEmitsMsg(t *testing.T) {
	f := typeText(NewLoginForm(testTheme(), "Paris"), "reader")

	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(LoginSubmitMsg)
	require.True(t, ok)
	assert.Equal(t, "reader", msg.Form.Username)
	assert.Equal(t, "Paris", msg.Form.City)
}

func TestLoginForm_SubmitIgnoredWhileBusy(t *testing.T) {
	f := NewLoginForm(testTheme(), "")
	f.SetSubmitting(true)

	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, f.View(), "Signing in...")
}

func TestLoginForm_TogglePassword(t *testing.T) {
	f := NewLoginForm(testTheme(), "")
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	f = typeText(f, "secret1")
	assert.NotContains(t, f.View(), "secret1")

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.True(t, f.PasswordVisible())
	assert.Contains(t, f.View(), "secret1")

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.False(t, f.PasswordVisible())
}

func TestLoginForm_ErrorsClearOnInput(t *testing.T) {
	f := NewLoginForm(testTheme(), "")
	f.SetErrors(login.FieldErrors{
		login.FieldUsername: "Username is required",
		login.FieldCity:     "City is required",
	}, "")

	view := f.View()
	assert.Contains(t, view, "Username is required")
	assert.Contains(t, view, "City is required")

	f = typeText(f, "a")
	assert.NotContains(t, f.Errors(), login.FieldUsername)
	assert.Contains(t, f.Errors(), login.FieldCity)
}

func TestLoginForm_GeneralErrorAndReset(t *testing.T) {
	f := typeText(NewLoginForm(testTheme(), "Rome"), "admin")
	f.SetErrors(nil, "Invalid username or password")
	assert.Contains(t, f.View(), "Invalid username or password")

	f.Reset()
	assert.Empty(t, f.General())
	assert.Equal(t, login.Form{City: "Rome"}, f.Form())
	assert.Equal(t, login.FieldUsername, f.Focused())
}

// =============================================================================
// SESSION WIDGETS
// =============================================================================

func TestSessionHeader(t *testing.T) {
	h := NewSessionHeader(testTheme())
	h.SetWidth(100)

	h.SetSnapshot(session.Snapshot{
		State:     session.StateActive,
		Record:    &session.Record{User: "reader"},
		Remaining: 12*time.Minute + 5*time.Second,
	})
	view := h.View()
	assert.Contains(t, view, "reader")
	assert.Contains(t, view, "Session active")
	assert.Contains(t, view, "12:05")

	h.SetSnapshot(session.Snapshot{State: session.StateExpired})
	assert.Contains(t, h.View(), "Session expired")
}

func TestWarningToast(t *testing.T) {
	w := NewWarningToast(testTheme())
	assert.False(t, w.Visible())
	assert.Empty(t, w.View())
	assert.Equal(t, "base", w.Overlay("base"))

	msg := session.WarningMessage(5 * time.Minute)
	w.SetState(session.WarningState{Visible: true, Message: msg})
	assert.True(t, w.Visible())
	assert.Contains(t, w.View(), "Session expiring")
	assert.Contains(t, w.Overlay("base"), "base")
}

func TestExpiredNotice(t *testing.T) {
	e := NewExpiredNotice(testTheme())
	e.SetSize(80, 24)
	view := e.View()
	assert.Contains(t, view, "Session Expired")
	assert.Contains(t, view, "Please log in again.")
}

func TestWeatherWidget(t *testing.T) {
	w := NewWeatherWidget(testTheme())
	assert.Empty(t, w.View())

	w.SetDocument(json.RawMessage(`{"name":"Oslo","main":{"temp":-2.5},"weather":[{"main":"Snow","description":"light snow"}]}`))
	require.NotNil(t, w.Weather())
	view := w.View()
	assert.Contains(t, view, "Light Snow")
	assert.Contains(t, view, "❄️")
	assert.Contains(t, view, "Oslo")
	assert.Contains(t, view, "-2.5°C")

	w.SetDocument(json.RawMessage(`{"weather":[]}`))
	assert.Nil(t, w.Weather())
	assert.Empty(t, w.View())
}
