// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/libcat-tui/internal/session"
)

// SnapshotMsg carries a controller snapshot into the program.
type SnapshotMsg struct {
	Snapshot session.Snapshot
}

// Bridge forwards controller notifications to a running program.
//
// Notify never blocks: observers can fire from inside Update (where
// program.Send would deadlock) and a burst coalesces to the latest
// snapshot.
type Bridge struct {
	ch chan session.Snapshot
}

// NewBridge creates an idle bridge.
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan session.Snapshot, 1)}
}

// Notify queues snap, replacing any queued snapshot not yet delivered.
func (b *Bridge) Notify(snap session.Snapshot) {
	for {
		select {
		case b.ch <- snap:
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}

// Run delivers queued snapshots through send until ctx is done.
func (b *Bridge) Run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-b.ch:
			send(SnapshotMsg{Snapshot: snap})
		}
	}
}
