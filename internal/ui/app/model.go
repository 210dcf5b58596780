// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/libcat-tui/internal/clock"
	"github.com/jeranaias/libcat-tui/internal/login"
	"github.com/jeranaias/libcat-tui/internal/session"
	"github.com/jeranaias/libcat-tui/internal/ui/components"
	"github.com/jeranaias/libcat-tui/internal/ui/styles"
)

// refreshInterval drives the countdown in the header.
const refreshInterval = time.Second

// submitTimeout bounds a whole sign-in attempt, weather lookup included.
const submitTimeout = 20 * time.Second

// Submitter runs a sign-in attempt. *login.Flow satisfies it.
type Submitter interface {
	Submit(ctx context.Context, form login.Form) (*login.Result, error)
}

// Options configures the model.
type Options struct {
	Controller  *session.Controller
	Login       Submitter
	Theme       *styles.Theme
	Clock       clock.Clock
	DefaultCity string
}

// loginDoneMsg reports the outcome of a submission.
type loginDoneMsg struct {
	err error
}

// tickMsg refreshes time-dependent parts of the view.
type tickMsg time.Time

// Model is the root tea.Model.
type Model struct {
	ctrl   *session.Controller
	submit Submitter
	clock  clock.Clock
	keys   KeyMap
	theme  *styles.Theme

	snap session.Snapshot

	form    components.LoginForm
	header  components.SessionHeader
	toast   components.WarningToast
	expired components.ExpiredNotice
	weather components.WeatherWidget

	width    int
	height   int
	quitting bool
}

// New creates the model from the controller's current state.
func New(opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(styles.ModeAuto)
	}

	m := Model{
		ctrl:    opts.Controller,
		submit:  opts.Login,
		clock:   opts.Clock,
		keys:    DefaultKeyMap(),
		theme:   opts.Theme,
		form:    components.NewLoginForm(opts.Theme, opts.DefaultCity),
		header:  components.NewSessionHeader(opts.Theme),
		toast:   components.NewWarningToast(opts.Theme),
		expired: components.NewExpiredNotice(opts.Theme),
		weather: components.NewWeatherWidget(opts.Theme),
	}
	m.apply(m.ctrl.Snapshot())
	return m
}

// Snapshot returns the snapshot the view was last rendered from.
func (m Model) Snapshot() session.Snapshot {
	return m.snap
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// apply renders from snap. Leaving Active or Expired resets the form.
func (m *Model) apply(snap session.Snapshot) {
	prev := m.snap.State
	m.snap = snap
	m.header.SetSnapshot(snap)
	m.toast.SetState(snap.Warning)

	if snap.State == session.StateActive && (prev != session.StateActive || m.weather.Weather() == nil) {
		m.weather.SetDocument(m.ctrl.Weather())
	}
	if snap.State == session.StateLoggedOut && prev != session.StateLoggedOut {
		m.form.Reset()
	}
}

func (m *Model) refresh() {
	m.apply(m.ctrl.Snapshot())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.form.SetSize(msg.Width, msg.Height)
		m.header.SetWidth(msg.Width)
		m.toast.SetWidth(msg.Width)
		m.expired.SetSize(msg.Width, msg.Height)
		return m, nil

	case SnapshotMsg:
		m.apply(msg.Snapshot)
		return m, nil

	case tickMsg:
		m.refresh()
		return m, m.tick()

	case components.LoginSubmitMsg:
		return m.startLogin(msg.Form)

	case loginDoneMsg:
		if msg.err != nil {
			var fe login.FieldErrors
			errors.As(msg.err, &fe)
			m.form.SetErrors(fe, login.Message(msg.err))
			return m, nil
		}
		m.form.SetSubmitting(false)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m.quit()
		}
	}

	switch m.snap.State {
	case session.StateActive:
		return m.updateActive(msg)
	case session.StateExpired:
		return m.updateExpired(msg)
	default:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kind, ok := activityKind(msg); ok {
		m.ctrl.Dispatcher().Dispatch(session.Signal{Kind: kind, At: m.clock.Now()})
		// The signal itself may have ended the session. The key is then
		// spent, and the Active bindings no longer apply.
		if m.ctrl.State() != session.StateActive {
			m.refresh()
			return m, nil
		}
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Extend):
			m.ctrl.ExtendSession()
		case key.Matches(msg, m.keys.Logout):
			m.ctrl.Logout()
		case key.Matches(msg, m.keys.Dismiss):
			m.ctrl.DismissWarning()
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		}
	}
	m.refresh()
	return m, nil
}

func (m Model) updateExpired(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Acknowledge):
			m.ctrl.Acknowledge()
			m.refresh()
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		}
	}
	return m, nil
}

func (m Model) startLogin(form login.Form) (tea.Model, tea.Cmd) {
	if errs := form.Validate(); errs != nil {
		m.form.SetErrors(errs, "")
		return m, nil
	}
	m.form.SetSubmitting(true)

	submit := m.submit
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		_, err := submit.Submit(ctx, form)
		return loginDoneMsg{err: err}
	}
}

// quit leaves the session in the store for the next run.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.ctrl.Detach()
	return m, tea.Quit
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.snap.State {
	case session.StateActive:
		return m.viewActive()
	case session.StateExpired:
		return m.expired.View()
	default:
		return m.form.View()
	}
}

func (m Model) viewActive() string {
	t := m.theme

	var body []string
	body = append(body, "", t.Title.Render("Library Manager"), "")
	if w := m.weather.View(); w != "" {
		body = append(body, w, "")
	}
	if rec := m.snap.Record; rec != nil {
		body = append(body,
			t.Subtle.Render("Signed in at ")+rec.LoginTime.Local().Format("15:04:05"),
			t.Subtle.Render("Last activity ")+rec.LastActivity.Local().Format("15:04:05"),
		)
	}
	body = append(body, "", t.KeyHint.Render(strings.Join([]string{
		"e extend session", "L log out", "esc dismiss warning", "q quit",
	}, " • ")))

	content := lipgloss.NewStyle().Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left, body...))
	screen := lipgloss.JoinVertical(lipgloss.Left, m.header.View(), content)
	return m.toast.Overlay(screen)
}
