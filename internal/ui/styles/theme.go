// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds the styled building blocks of every screen.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout
	Card    lipgloss.Style
	Title   lipgloss.Style
	Subtle  lipgloss.Style
	KeyHint lipgloss.Style

	// Form
	Label        lipgloss.Style
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	FieldError   lipgloss.Style
	GeneralError lipgloss.Style
	Button       lipgloss.Style
	ButtonBusy   lipgloss.Style

	// Session
	Header        lipgloss.Style
	HeaderUser    lipgloss.Style
	StatusActive  lipgloss.Style
	StatusExpired lipgloss.Style
	Countdown     lipgloss.Style

	// Overlays
	Toast   lipgloss.Style
	Expired lipgloss.Style
	Weather lipgloss.Style
}

// NewTheme builds the theme. mode is auto, dark or light; auto asks the
// terminal.
func NewTheme(mode string) *Theme {
	t := &Theme{ColorProfile: termenv.ColorProfile()}

	switch strings.ToLower(mode) {
	case ModeDark:
		t.IsDark = true
	case ModeLight:
		t.IsDark = false
	default:
		t.IsDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(t.IsDark)

	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 3)
	t.Title = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.Subtle = lipgloss.NewStyle().Foreground(TextSecondary)
	t.KeyHint = lipgloss.NewStyle().Foreground(TextMuted)

	t.Label = lipgloss.NewStyle().Foreground(TextSecondary).Bold(true)
	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputFocused = t.Input.BorderForeground(Purple)
	t.FieldError = lipgloss.NewStyle().Foreground(Rose)
	t.GeneralError = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Button = lipgloss.NewStyle().
		Foreground(Surface).
		Background(Purple).
		Bold(true).
		Padding(0, 2)
	t.ButtonBusy = t.Button.Background(TextMuted)

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderUser = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.StatusActive = lipgloss.NewStyle().Foreground(Emerald)
	t.StatusExpired = lipgloss.NewStyle().Foreground(Rose)
	t.Countdown = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)

	t.Toast = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(Amber).
		Background(AmberDeep).
		Foreground(TextPrimary).
		Padding(0, 2)
	t.Expired = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 3).
		Align(lipgloss.Center)
	t.Weather = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 2)
}
