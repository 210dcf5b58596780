// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/libcat-tui/internal/storage"
	"github.com/jeranaias/libcat-tui/internal/ui/app"
	"github.com/jeranaias/libcat-tui/internal/ui/styles"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
}

// runTUI runs the Bubble Tea program until the user quits. Quitting keeps
// the stored session; only logout or expiry ends it.
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	if !isTerminal(cmd.InOrStdin()) {
		return errors.New("the terminal UI needs an interactive terminal; use login, status or extend instead")
	}

	// The UI owns the screen, so logs go to the log file.
	rt, err := newRuntime(opts, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	state := rt.ctrl.Restore()
	rt.log.Info().Str("state", state.String()).Msg("terminal UI starting")

	model := app.New(app.Options{
		Controller:  rt.ctrl,
		Login:       rt.loginFlow(),
		Theme:       styles.NewTheme(rt.cfg.UI.Theme),
		DefaultCity: rt.cfg.UI.DefaultCity,
	})

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if rt.cfg.UI.Mouse {
		progOpts = append(progOpts, tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(model, progOpts...)

	bridge := app.NewBridge()
	unsubscribe := rt.ctrl.Subscribe(bridge.Notify)
	defer unsubscribe()
	go bridge.Run(ctx, p.Send)

	// Another process (the CLI, a second terminal) may sign in, out or
	// extend through the same file.
	if f, ok := rt.kv.(*storage.File); ok && rt.cfg.Store.Watch {
		if err := f.Watch(ctx, rt.ctrl.Reconcile); err != nil {
			rt.log.Warn().Err(err).Msg("watch session store")
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	rt.log.Info().Msg("terminal UI closed")
	return nil
}
