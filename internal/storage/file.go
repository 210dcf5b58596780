// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/libcat-tui/internal/util"
)

// =============================================================================
// FILE STORE
// =============================================================================

// DefaultWatchDebounce coalesces bursts of file events into one callback.
const DefaultWatchDebounce = 200 * time.Millisecond

// File keeps all keys in a single JSON object on disk. Every read goes to
// disk so edits by other processes are always visible.
type File struct {
	path string
	mu   sync.Mutex

	// Debounce is the quiet period Watch waits for before reporting a
	// change. Zero means DefaultWatchDebounce.
	Debounce time.Duration

	closed bool
}

// NewFile creates a File store at path. The file is created lazily.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &File{path: path}, nil
}

// Path returns the backing file.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrClosed
	}

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// GetMany decodes the file once, so the keys come from the same write.
func (f *File) GetMany(keys ...string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}

	values, err := f.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *File) SetMany(values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	current := f.readForWrite()
	for k, v := range values {
		current[k] = v
	}
	return f.write(current)
}

func (f *File) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	current := f.readForWrite()
	for _, k := range keys {
		delete(current, k)
	}
	return f.write(current)
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// read returns the stored object. A missing file is an empty store; a
// corrupt one is an error.
func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", f.path, err)
	}
	return values, nil
}

// readForWrite is read, except a corrupt file is replaced by the write.
func (f *File) readForWrite() map[string]string {
	values, err := f.read()
	if err != nil {
		return map[string]string{}
	}
	return values
}

func (f *File) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := util.AtomicWriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// =============================================================================
// WATCH
// =============================================================================

// Watch calls onChange, debounced, whenever the backing file is created,
// replaced, written or removed. It returns once the watcher is installed;
// watching stops when ctx is cancelled.
func (f *File) Watch(ctx context.Context, onChange func()) error {
	debounce := f.Debounce
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Atomic writes replace the file, so watch the directory.
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(f.path), err)
	}

	go f.watchLoop(ctx, w, debounce, onChange)
	return nil
}

func (f *File) watchLoop(ctx context.Context, w *fsnotify.Watcher, debounce time.Duration, onChange func()) {
	defer w.Close()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	target := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if ctx.Err() == nil {
					onChange()
				}
			})
			mu.Unlock()
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
		}
	}
}
