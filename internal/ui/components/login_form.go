// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/libcat-tui/internal/login"
	"github.com/jeranaias/libcat-tui/internal/ui/styles"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

const (
	fieldUsername = iota
	fieldPassword
	fieldCity
	fieldCount
)

var fieldNames = [fieldCount]string{login.FieldUsername, login.FieldPassword, login.FieldCity}

// LoginFormKeys are the form's bindings.
type LoginFormKeys struct {
	Next         key.Binding
	Prev         key.Binding
	Submit       key.Binding
	TogglePasswd key.Binding
}

// DefaultLoginFormKeys returns the standard bindings.
func DefaultLoginFormKeys() LoginFormKeys {
	return LoginFormKeys{
		Next:         key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:         key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		Submit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign in")),
		TogglePasswd: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "show password")),
	}
}

// LoginSubmitMsg is emitted when the user submits the form.
type LoginSubmitMsg struct {
	Form login.Form
}

// LoginForm is the sign-in screen.
type LoginForm struct {
	inputs       [fieldCount]textinput.Model
	focus        int
	showPassword bool

	errors     login.FieldErrors
	general    string
	submitting bool

	keys   LoginFormKeys
	theme  *styles.Theme
	width  int
	height int
}

// NewLoginForm creates the form with the city prefilled from city.
func NewLoginForm(theme *styles.Theme, city string) LoginForm {
	f := LoginForm{keys: DefaultLoginFormKeys(), theme: theme}

	placeholders := [fieldCount]string{"Enter your username", "Enter your password", "Enter your city"}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Prompt = ""
		in.CharLimit = 64
		in.Width = 32
		f.inputs[i] = in
	}
	f.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	f.inputs[fieldPassword].EchoCharacter = '•'
	f.inputs[fieldCity].SetValue(city)
	f.inputs[fieldUsername].Focus()
	return f
}

// SetSize sets the screen dimensions.
func (f *LoginForm) SetSize(width, height int) {
	f.width, f.height = width, height
}

// Form returns the current values.
func (f LoginForm) Form() login.Form {
	return login.Form{
		Username: f.inputs[fieldUsername].Value(),
		Password: f.inputs[fieldPassword].Value(),
		City:     f.inputs[fieldCity].Value(),
	}
}

// Focused returns the name of the focused field.
func (f LoginForm) Focused() string {
	return fieldNames[f.focus]
}

// PasswordVisible reports whether the password is echoed.
func (f LoginForm) PasswordVisible() bool {
	return f.showPassword
}

// Submitting reports whether a submission is in flight.
func (f LoginForm) Submitting() bool {
	return f.submitting
}

// SetSubmitting marks a submission in flight and clears old messages.
func (f *LoginForm) SetSubmitting(on bool) {
	f.submitting = on
	if on {
		f.errors = nil
		f.general = ""
	}
}

// SetErrors shows field errors and a general message.
func (f *LoginForm) SetErrors(fields login.FieldErrors, general string) {
	f.errors = fields
	f.general = general
	f.submitting = false
}

// Errors returns the field errors being shown.
func (f LoginForm) Errors() login.FieldErrors {
	return f.errors
}

// General returns the general error being shown.
func (f LoginForm) General() string {
	return f.general
}

// Reset clears the credentials but keeps the city.
func (f *LoginForm) Reset() {
	f.inputs[fieldUsername].Reset()
	f.inputs[fieldPassword].Reset()
	f.errors = nil
	f.general = ""
	f.submitting = false
	f.setFocus(fieldUsername)
}

// Init implements tea.Model.
func (f LoginForm) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles keys for the form.
func (f LoginForm) Update(msg tea.Msg) (LoginForm, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.SetSize(msg.Width, msg.Height)
		return f, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, f.keys.Submit):
			if f.submitting {
				return f, nil
			}
			form := f.Form()
			return f, func() tea.Msg { return LoginSubmitMsg{Form: form} }
		case key.Matches(msg, f.keys.Next):
			return f, f.setFocus((f.focus + 1) % fieldCount)
		case key.Matches(msg, f.keys.Prev):
			return f, f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		case key.Matches(msg, f.keys.TogglePasswd):
			f.showPassword = !f.showPassword
			if f.showPassword {
				f.inputs[fieldPassword].EchoMode = textinput.EchoNormal
			} else {
				f.inputs[fieldPassword].EchoMode = textinput.EchoPassword
			}
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)

	// An error clears once its field has content again.
	if f.errors != nil && f.inputs[f.focus].Value() != "" {
		delete(f.errors, fieldNames[f.focus])
	}
	return f, cmd
}

func (f *LoginForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

// View renders the form centred on screen.
func (f LoginForm) View() string {
	t := f.theme
	labels := [fieldCount]string{"Username", "Password", "City"}

	var parts []string
	parts = append(parts,
		t.Title.Render("Welcome Back"),
		t.Subtle.Render("Sign in to your library account"),
		"",
	)

	for i := range f.inputs {
		box := t.Input
		if i == f.focus {
			box = t.InputFocused
		}
		parts = append(parts, t.Label.Render(labels[i]), box.Render(f.inputs[i].View()))
		if msg := f.errors[fieldNames[i]]; msg != "" {
			parts = append(parts, t.FieldError.Render(msg))
		}
	}

	parts = append(parts, "")
	if f.general != "" {
		parts = append(parts, t.GeneralError.Render(styles.StatusIndicators.Error+" "+f.general), "")
	}
	if f.submitting {
		parts = append(parts, t.ButtonBusy.Render("Signing in..."))
	} else {
		parts = append(parts, t.Button.Render("Sign In"))
	}

	hints := []string{"tab next", "enter sign in", "ctrl+p show password", "ctrl+c quit"}
	if f.showPassword {
		hints[2] = "ctrl+p hide password"
	}
	parts = append(parts, "", t.KeyHint.Render(strings.Join(hints, " • ")))

	card := t.Card.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(orDefault(f.width, defaultWidth), orDefault(f.height, defaultHeight),
		lipgloss.Center, lipgloss.Center, card)
}
