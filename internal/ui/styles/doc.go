// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles holds the libcat palette and the lipgloss styles built
// from it.
//
// Colors are lipgloss.AdaptiveColor values, so they follow the terminal's
// light or dark background. NewTheme picks the background from termenv
// unless the user pinned one in the config.
package styles
