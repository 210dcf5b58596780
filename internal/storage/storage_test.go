// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/libcat-tui/internal/session"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// backends opens a fresh instance of every backend under a temp dir.
func backends(t *testing.T) map[string]func(t *testing.T) KV {
	open := func(backend string) func(t *testing.T) KV {
		return func(t *testing.T) KV {
			kv, err := Open(backend, DefaultPath(t.TempDir(), backend))
			require.NoError(t, err)
			t.Cleanup(func() { kv.Close() })
			return kv
		}
	}
	out := make(map[string]func(t *testing.T) KV)
	for _, b := range Backends() {
		out[b] = open(b)
	}
	return out
}

// =============================================================================
// KV CONFORMANCE
// =============================================================================

func TestKV_Conformance(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := open(t)

			_, ok, err := kv.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.SetMany(map[string]string{"a": "1", "b": "2"}))
			v, ok, err := kv.Get("a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "1", v)

			require.NoError(t, Set(kv, "a", "3"))
			v, _, _ = kv.Get("a")
			assert.Equal(t, "3", v)

			require.NoError(t, Set(kv, "empty", ""))
			v, ok, _ = kv.Get("empty")
			assert.True(t, ok)
			assert.Equal(t, "", v)

			got, err := kv.GetMany("a", "b", "missing")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"a": "3", "b": "2"}, got)

			require.NoError(t, kv.Delete("a", "never-set"))
			_, ok, _ = kv.Get("a")
			assert.False(t, ok)
			v, ok, _ = kv.Get("b")
			assert.True(t, ok)
			assert.Equal(t, "2", v)
		})
	}
}

func TestKV_PersistsAcrossReopen(t *testing.T) {
	for _, backend := range []string{BackendFile, BackendSQLite, BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			path := DefaultPath(t.TempDir(), backend)

			kv, err := Open(backend, path)
			require.NoError(t, err)
			require.NoError(t, Set(kv, KeyUser, "alice"))
			require.NoError(t, kv.Close())

			kv, err = Open(backend, path)
			require.NoError(t, err)
			defer kv.Close()

			v, ok, err := kv.Get(KeyUser)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "alice", v)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", "/tmp/x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(BackendFile, "")
	require.Error(t, err)

	kv, err := Open(BackendMemory, "")
	require.NoError(t, err)
	kv.Close()
}

func TestOpen_NormalizesName(t *testing.T) {
	kv, err := Open("  Memory ", "")
	require.NoError(t, err)
	_, ok := kv.(*Memory)
	assert.True(t, ok)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("d", "session.db"), DefaultPath("d", BackendSQLite))
	assert.Equal(t, filepath.Join("d", "session.bolt"), DefaultPath("d", BackendBolt))
	assert.Equal(t, filepath.Join("d", "session.json"), DefaultPath("d", BackendFile))
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())

	_, _, err := m.Get("a")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, Set(m, "a", "b"), ErrClosed)
	assert.ErrorIs(t, m.Delete("a"), ErrClosed)
}

// =============================================================================
// FILE BACKEND
// =============================================================================

func TestFile_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, Set(f, KeyUser, "alice"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFile_SeesExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	a, err := NewFile(path)
	require.NoError(t, err)
	b, err := NewFile(path)
	require.NoError(t, err)

	require.NoError(t, Set(a, KeyUser, "alice"))
	v, ok, err := b.Get(KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)

	require.NoError(t, b.Delete(KeyUser))
	_, ok, _ = a.Get(KeyUser)
	assert.False(t, ok)
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	f, err := NewFile(path)
	require.NoError(t, err)

	_, _, err = f.Get(KeyUser)
	require.Error(t, err)

	// A write replaces the damaged content.
	require.NoError(t, Set(f, KeyUser, "bob"))
	v, ok, err := f.Get(KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bob", v)
}

func TestFile_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")

	watched, err := NewFile(path)
	require.NoError(t, err)
	watched.Debounce = 20 * time.Millisecond

	ctx := t.Context()
	changes := make(chan struct{}, 16)
	require.NoError(t, watched.Watch(ctx, func() { changes <- struct{}{} }))

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600))

	other, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, Set(other, KeyUser, "alice"))

	require.Eventually(t, func() bool {
		select {
		case <-changes:
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

// =============================================================================
// SESSION STORE
// =============================================================================

func TestSessionStore_RoundTrip(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewSessionStore(open(t))

			rec, err := store.Load()
			require.NoError(t, err)
			assert.Nil(t, rec)

			want := &session.Record{
				ID:           "7d5f6a0e-1111-4222-8333-444455556666",
				User:         "alice",
				LoginTime:    t0,
				LastActivity: t0.Add(90 * time.Second),
			}
			require.NoError(t, store.Save(want))

			got, err := store.Load()
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, want.ID, got.ID)
			assert.Equal(t, want.User, got.User)
			assert.True(t, want.LoginTime.Equal(got.LoginTime))
			assert.True(t, want.LastActivity.Equal(got.LastActivity))
		})
	}
}

func TestSessionStore_TouchIsMonotonic(t *testing.T) {
	store := NewSessionStore(NewMemory())
	require.NoError(t, store.Save(&session.Record{User: "alice", LoginTime: t0, LastActivity: t0}))

	require.NoError(t, store.Touch(t0.Add(5*time.Minute)))
	require.NoError(t, store.Touch(t0.Add(2*time.Minute)))

	rec, err := store.Load()
	require.NoError(t, err)
	assert.True(t, rec.LastActivity.Equal(t0.Add(5*time.Minute)))
	assert.True(t, rec.LoginTime.Equal(t0), "touch must not move login time")
}

func TestSessionStore_TouchWithoutSession(t *testing.T) {
	kv := NewMemory()
	store := NewSessionStore(kv)

	require.NoError(t, store.Touch(t0))

	_, ok, err := kv.Get(KeyLastActivity)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStore_ClearKeepsWeather(t *testing.T) {
	kv := NewMemory()
	store := NewSessionStore(kv)

	doc := json.RawMessage(`{"name":"London","main":{"temp":12.5}}`)
	require.NoError(t, store.SaveWeather(doc))
	require.NoError(t, store.Save(&session.Record{ID: "x", User: "alice", LoginTime: t0, LastActivity: t0}))
	require.NoError(t, store.Clear())

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)

	for _, key := range coreKeys {
		_, ok, err := kv.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	got, err := store.LoadWeather()
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(got))
}

func TestSessionStore_MalformedTimestampsLoadAsZero(t *testing.T) {
	kv := NewMemory()
	require.NoError(t, kv.SetMany(map[string]string{
		KeyUser:         "alice",
		KeyLoginTime:    "yesterday-ish",
		KeyLastActivity: "",
	}))

	rec, err := NewSessionStore(kv).Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "alice", rec.User)
	assert.True(t, rec.LoginTime.IsZero())
	assert.True(t, rec.LastActivity.IsZero())
	assert.False(t, session.IsValid(rec, t0))
}

func TestSessionStore_MissingTimestamps(t *testing.T) {
	kv := NewMemory()
	require.NoError(t, Set(kv, KeyUser, "alice"))

	rec, err := NewSessionStore(kv).Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Empty(t, rec.ID)
	assert.True(t, rec.LoginTime.IsZero())
}

func TestSessionStore_EmptyUserIsLoggedOut(t *testing.T) {
	kv := NewMemory()
	require.NoError(t, kv.SetMany(map[string]string{
		KeyUser:      "",
		KeyLoginTime: FormatTime(t0),
	}))

	rec, err := NewSessionStore(kv).Load()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSessionStore_Weather(t *testing.T) {
	kv := NewMemory()
	store := NewSessionStore(kv)

	doc, err := store.LoadWeather()
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.Error(t, store.SaveWeather(json.RawMessage(`{broken`)))

	require.NoError(t, Set(kv, KeyWeather, "not json"))
	doc, err = store.LoadWeather()
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.NoError(t, store.SaveWeather(json.RawMessage(`{"name":"Paris"}`)))
	require.NoError(t, store.SaveWeather(nil))
	_, ok, _ := kv.Get(KeyWeather)
	assert.False(t, ok)
}

// movingKV stands in for another process: every read through it is
// followed by a Save of a different session.
type movingKV struct {
	*Memory
	next  []map[string]string
	reads int
}

func (m *movingKV) advance() {
	if len(m.next) > 0 {
		_ = m.Memory.SetMany(m.next[0])
		m.next = m.next[1:]
	}
}

func (m *movingKV) Get(key string) (string, bool, error) {
	defer m.advance()
	m.reads++
	return m.Memory.Get(key)
}

func (m *movingKV) GetMany(keys ...string) (map[string]string, error) {
	defer m.advance()
	m.reads++
	return m.Memory.GetMany(keys...)
}

func TestSessionStore_LoadReadsOneSnapshot(t *testing.T) {
	later := t0.Add(time.Hour)
	kv := &movingKV{Memory: NewMemory()}
	require.NoError(t, kv.Memory.SetMany(map[string]string{
		KeySessionID: "s1", KeyUser: "alice",
		KeyLoginTime: FormatTime(t0), KeyLastActivity: FormatTime(t0),
	}))
	for i := 0; i < 4; i++ {
		kv.next = append(kv.next, map[string]string{
			KeySessionID: "s2", KeyUser: "bob",
			KeyLoginTime: FormatTime(later), KeyLastActivity: FormatTime(later),
		})
	}

	rec, err := NewSessionStore(kv).Load()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, kv.reads)
	assert.Equal(t, &session.Record{ID: "s1", User: "alice", LoginTime: t0, LastActivity: t0}, rec)
}

func TestSessionStore_LoadError(t *testing.T) {
	kv := NewMemory()
	kv.Close()

	_, err := NewSessionStore(kv).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339nano", "2025-03-01T09:00:00.123456789Z", t0.Add(123456789 * time.Nanosecond)},
		{"offset", "2025-03-01T10:00:00+01:00", t0},
		{"unix millis", "1740819600000", t0},
		{"empty", "", time.Time{}},
		{"garbage", "soon", time.Time{}},
		{"negative millis", "-5", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTime(tt.raw)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "", FormatTime(time.Time{}))
	loc := time.FixedZone("X", 3600)
	assert.Equal(t, "2025-03-01T09:00:00Z", FormatTime(t0.In(loc)))
}
