// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/libcat-tui/internal/session"
)

// KeyMap holds the session-level bindings.
type KeyMap struct {
	Extend      key.Binding
	Logout      key.Binding
	Dismiss     key.Binding
	Acknowledge key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Extend:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "extend session")),
		Logout:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		Dismiss:     key.NewBinding(key.WithKeys("esc", "x"), key.WithHelp("esc", "dismiss warning")),
		Acknowledge: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// activityKind maps a terminal event to the activity it represents.
func activityKind(msg tea.Msg) (session.ActivityKind, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return session.KeyPress, true
	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseLeft, tea.MouseRight, tea.MouseMiddle:
			return session.PointerDown, true
		case tea.MouseRelease:
			return session.Click, true
		case tea.MouseMotion:
			return session.PointerMove, true
		case tea.MouseWheelUp, tea.MouseWheelDown:
			return session.Scroll, true
		}
	}
	return 0, false
}
