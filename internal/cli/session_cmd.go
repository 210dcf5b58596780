// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/libcat-tui/internal/login"
	"github.com/jeranaias/libcat-tui/internal/session"
	"github.com/jeranaias/libcat-tui/internal/ui/components"
)

// errNotSignedIn is returned by commands that need an active session.
var errNotSignedIn = errors.New("not signed in")

// loginTimeout bounds a whole sign-in, weather lookup included.
const loginTimeout = 20 * time.Second

// =============================================================================
// LOGIN
// =============================================================================

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var user, city string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and start a session",
		Long: `Sign in to the library server. The password is always read from the
terminal (or the first line of stdin when it is not a terminal).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			p := newPrompter(cmd.InOrStdin(), out)

			form := login.Form{Username: user, City: city}
			if form.Username == "" {
				if form.Username, err = p.Line("Username: ", ""); err != nil {
					return err
				}
			}
			if form.Password, err = p.Password("Password: "); err != nil {
				return err
			}
			if form.City == "" {
				if form.City, err = p.Line("City: ", rt.cfg.UI.DefaultCity); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
			defer cancel()

			res, err := rt.loginFlow().Submit(ctx, form)
			if err != nil {
				var fe login.FieldErrors
				if errors.As(err, &fe) {
					return fe
				}
				return errors.New(login.Message(err))
			}

			snap := rt.ctrl.Snapshot()
			fmt.Fprintf(out, "Signed in as %s. Session expires in %s.\n",
				res.Principal, components.FormatRemaining(snap.Remaining))
			if res.Weather == nil {
				fmt.Fprintln(out, "Weather unavailable.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "Username")
	cmd.Flags().StringVar(&city, "city", "", "City for the weather widget")
	return cmd
}

// =============================================================================
// LOGOUT / EXTEND
// =============================================================================

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			was := rt.ctrl.Restore()
			rt.ctrl.Logout()
			if was == session.StateActive {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No active session.")
			}
			return nil
		},
	}
}

func newExtendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extend",
		Short: "Refresh the stored session's activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.ctrl.Restore() != session.StateActive {
				return errNotSignedIn
			}
			rt.ctrl.ExtendSession()
			snap := rt.ctrl.Snapshot()
			if snap.State != session.StateActive {
				return errors.New("session expired")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session extended. Expires in %s.\n",
				components.FormatRemaining(snap.Remaining))
			return nil
		},
	}
}

// =============================================================================
// STATUS
// =============================================================================

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(opts, cmd.ErrOrStderr())
			if err != nil {
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), "status", nil, err)
				}
				return err
			}
			defer rt.Close()

			rt.ctrl.Restore()
			snap := rt.ctrl.Snapshot()
			data := statusData(snap, rt.cfg.Store.Backend)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), "status", data, nil)
			}
			printStatus(cmd, data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func statusData(snap session.Snapshot, backend string) StatusData {
	data := StatusData{
		State: strings.ToLower(snap.State.String()),
		Store: backend,
	}
	if snap.State != session.StateActive || snap.Record == nil {
		return data
	}
	rec := snap.Record
	loginAt, last := rec.LoginTime.UTC(), rec.LastActivity.UTC()
	data.SessionID = rec.ID
	data.User = rec.User
	data.LoginTime = &loginAt
	data.LastActivity = &last
	data.LoginAgeSeconds = int64(snap.LoginAge / time.Second)
	data.RemainingSeconds = int64(snap.Remaining / time.Second)
	data.IdleSeconds = int64(snap.Idle / time.Second)
	return data
}

func printStatus(cmd *cobra.Command, d StatusData) {
	out := cmd.OutOrStdout()
	if d.State != "active" {
		fmt.Fprintf(out, "State:          %s\n", d.State)
		fmt.Fprintf(out, "Store:          %s\n", d.Store)
		return
	}
	fmt.Fprintf(out, "State:          %s\n", d.State)
	fmt.Fprintf(out, "User:           %s\n", d.User)
	fmt.Fprintf(out, "Signed in:      %s\n", d.LoginTime.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Last activity:  %s\n", d.LastActivity.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Login age:      %s\n", time.Duration(d.LoginAgeSeconds)*time.Second)
	fmt.Fprintf(out, "Idle:           %s\n", time.Duration(d.IdleSeconds)*time.Second)
	fmt.Fprintf(out, "Expires in:     %s\n",
		components.FormatRemaining(time.Duration(d.RemainingSeconds)*time.Second))
	fmt.Fprintf(out, "Store:          %s\n", d.Store)
}
