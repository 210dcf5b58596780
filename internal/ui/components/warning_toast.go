// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/libcat-tui/internal/session"
	"github.com/jeranaias/libcat-tui/internal/ui/styles"
)

// WarningToast renders the expiry warning. Visibility and auto-dismissal
// are owned by the session presenter; the toast only draws its state.
type WarningToast struct {
	theme *styles.Theme
	state session.WarningState
	width int
}

// NewWarningToast creates a hidden toast.
func NewWarningToast(theme *styles.Theme) WarningToast {
	return WarningToast{theme: theme}
}

// SetState updates the toast from a snapshot.
func (w *WarningToast) SetState(state session.WarningState) {
	w.state = state
}

// SetWidth sets the screen width.
func (w *WarningToast) SetWidth(width int) {
	w.width = width
}

// Visible reports whether the toast is shown.
func (w WarningToast) Visible() bool {
	return w.state.Visible
}

// View renders the toast, or "" when hidden.
func (w WarningToast) View() string {
	if !w.state.Visible {
		return ""
	}
	t := w.theme
	maxWidth := clampWidth(orDefault(w.width, defaultWidth), 30, 60)

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.RenderWarning("Session expiring"),
		lipgloss.NewStyle().Width(maxWidth-6).Render(w.state.Message),
		t.KeyHint.Render("e extend • esc dismiss"),
	)
	return t.Toast.Width(maxWidth).Render(body)
}

// Overlay draws the toast in the top-right corner of base.
func (w WarningToast) Overlay(base string) string {
	toast := w.View()
	if toast == "" {
		return base
	}
	width := orDefault(w.width, defaultWidth)
	placed := lipgloss.PlaceHorizontal(width, lipgloss.Right, toast)
	return lipgloss.JoinVertical(lipgloss.Left, placed, base)
}
