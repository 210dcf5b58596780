// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the Bubble Tea program that fronts the session
// controller.
//
// The model renders one of three screens from the controller state:
// the login form (LoggedOut), the session view (Active) or the expiry
// notice (Expired). Every key and mouse event on the session view is
// forwarded to the controller's activity dispatcher. Changes the
// controller makes on its own (poll expiry, warning shown or hidden,
// reconcile after another process edits the store) arrive as SnapshotMsg
// through a Bridge.
package app
