// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/jeranaias/libcat-tui/internal/api"
	"github.com/jeranaias/libcat-tui/internal/config"
	"github.com/jeranaias/libcat-tui/internal/logging"
	"github.com/jeranaias/libcat-tui/internal/login"
	"github.com/jeranaias/libcat-tui/internal/session"
	"github.com/jeranaias/libcat-tui/internal/storage"
)

// runtime is everything a command needs, built from the config.
type runtime struct {
	cfg    *config.Config
	log    zerolog.Logger
	kv     storage.KV
	ctrl   *session.Controller
	client *api.Client

	closers []io.Closer
}

// newRuntime opens the store and wires the controller. Logs go to logOut,
// or to the configured log file when logOut is nil.
func newRuntime(opts *rootOptions, logOut io.Writer) (*runtime, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg}

	if logOut == nil {
		path, err := cfg.LogPath()
		if err != nil {
			return nil, err
		}
		f, err := logging.OpenFile(path)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, f)
		logOut = f
	}
	rt.log = logging.New(cfg.Log.Level, cfg.Log.Format, logOut)

	storePath, err := cfg.StorePath()
	if err != nil {
		rt.Close()
		return nil, err
	}
	kv, err := storage.Open(cfg.Store.Backend, storePath)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}
	rt.kv = kv
	rt.closers = append(rt.closers, kv)

	rt.ctrl, err = session.NewController(session.Options{
		Store:  storage.NewSessionStore(kv),
		Policy: cfg.Policy(),
		Logger: logging.Component(rt.log, "session"),
	})
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.client, err = api.New(cfg.Server.URL,
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithLoginRate(cfg.Server.LoginsPerMinute),
		api.WithLogger(logging.Component(rt.log, "api")),
	)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.log.Debug().Str("store", cfg.Store.Backend).Str("path", storePath).
		Str("server", cfg.Server.URL).Msg("runtime ready")
	return rt, nil
}

// loginFlow returns the sign-in flow bound to the controller.
func (r *runtime) loginFlow() *login.Flow {
	return login.NewFlow(r.client, r.client, r.ctrl, logging.Component(r.log, "login"))
}

// Close detaches the controller and releases the store and log file.
func (r *runtime) Close() error {
	if r.ctrl != nil {
		r.ctrl.Detach()
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
