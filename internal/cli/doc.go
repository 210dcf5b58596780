// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the libcat command line.
//
// # Commands
//
//	libcat               open the terminal UI (same as "libcat tui")
//	libcat login         sign in from the shell
//	libcat logout        end the stored session
//	libcat extend        refresh the stored session's activity
//	libcat status        show the stored session (--json for scripts)
//	libcat weather       look up the weather for a city or position
//
// Every command shares the session store with the terminal UI, so a
// session started in one is visible to the other.
package cli
