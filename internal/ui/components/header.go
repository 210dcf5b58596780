// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/libcat-tui/internal/session"
	"github.com/jeranaias/libcat-tui/internal/ui/styles"
	"github.com/jeranaias/libcat-tui/internal/util"
)

// SessionHeader is the top bar of the active screen.
type SessionHeader struct {
	theme *styles.Theme
	width int
	snap  session.Snapshot
}

// NewSessionHeader creates a header.
func NewSessionHeader(theme *styles.Theme) SessionHeader {
	return SessionHeader{theme: theme}
}

// SetWidth sets the bar width.
func (h *SessionHeader) SetWidth(width int) {
	h.width = width
}

// SetSnapshot updates the rendered session.
func (h *SessionHeader) SetSnapshot(snap session.Snapshot) {
	h.snap = snap
}

// View renders the bar: brand and principal on the left, status and time
// left on the right.
func (h SessionHeader) View() string {
	t := h.theme
	width := orDefault(h.width, defaultWidth)

	var status string
	switch h.snap.State {
	case session.StateActive:
		status = t.StatusActive.Render(styles.StatusIndicators.Active+" Session active") +
			"  " + t.Subtle.Render("expires in ") + t.Countdown.Render(FormatRemaining(h.snap.Remaining))
	case session.StateExpired:
		status = t.StatusExpired.Render(styles.StatusIndicators.Error + " Session expired")
	default:
		status = t.Subtle.Render("Signed out")
	}

	user := ""
	if h.snap.Record != nil {
		// Leave room for the brand and the status block.
		room := width - lipgloss.Width(status) - 20
		if room < 4 {
			room = 4
		}
		user = t.HeaderUser.Render(util.TruncateWidth(h.snap.Record.User, room))
	}
	left := t.Title.Render("libcat")
	if user != "" {
		left += t.Subtle.Render("  Welcome, ") + user
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + status
	return t.Header.Width(width).Render(line)
}
