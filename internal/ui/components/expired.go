// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/libcat-tui/internal/ui/styles"
)

// ExpiredNotice is shown after the session ended on its own.
type ExpiredNotice struct {
	theme  *styles.Theme
	width  int
	height int
}

// NewExpiredNotice creates the notice.
func NewExpiredNotice(theme *styles.Theme) ExpiredNotice {
	return ExpiredNotice{theme: theme}
}

// SetSize sets the screen dimensions.
func (e *ExpiredNotice) SetSize(width, height int) {
	e.width, e.height = width, height
}

// View renders the notice centred on screen.
func (e ExpiredNotice) View() string {
	t := e.theme
	width := orDefault(e.width, defaultWidth)
	height := orDefault(e.height, defaultHeight)
	maxWidth := clampWidth(width, 40, 60)

	center := lipgloss.NewStyle().Width(maxWidth - 8).Align(lipgloss.Center)
	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(styles.Rose).Bold(true).
			Render(styles.StatusIndicators.Error+" Session Expired"),
		"",
		center.Render("Your session has expired. Please log in again."),
		"",
		t.KeyHint.Render("enter continue • q quit"),
	)

	box := t.Expired.Width(maxWidth).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim))
}
