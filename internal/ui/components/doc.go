// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the screens and widgets of the libcat TUI.
//
// # Components
//
//   - LoginForm: username, password and city inputs with inline errors
//   - SessionHeader: principal, session status and time left
//   - WarningToast: the one-shot expiry warning
//   - ExpiredNotice: shown after the session ends on its own
//   - WeatherWidget: the cached weather document
//
// Components render with a *styles.Theme and hold no session state of
// their own; the app model feeds them controller snapshots.
package components
