package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/napatw/lingothai/internal/lesson"
)

// Manager snapshots session state to a local and a remote backend, and picks
// which copy (if any) a screen resumes from.
type Manager struct {
	local   LocalStore
	remote  RemoteStore
	logger  zerolog.Logger
	timeout time.Duration
}

func NewManager(local LocalStore, remote RemoteStore, timeout time.Duration, logger zerolog.Logger) *Manager {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Manager{
		local:   local,
		remote:  remote,
		logger:  logger.With().Str("component", "snapshot_manager").Logger(),
		timeout: timeout,
	}
}

// Autosave writes the snapshot through to both backends from a detached
// goroutine. Failures are logged and dropped, never retried: the next state
// change re-saves a superseding snapshot anyway, and gameplay must not block
// on storage round-trips.
func (m *Manager) Autosave(snap *lesson.Snapshot) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		m.writeThrough(ctx, snap)
	}()
}

// AutosaveSync is the synchronous form, used at session start so a restore
// issued right after has something to find.
func (m *Manager) AutosaveSync(ctx context.Context, snap *lesson.Snapshot) {
	m.writeThrough(ctx, snap)
}

func (m *Manager) writeThrough(ctx context.Context, snap *lesson.Snapshot) {
	if m.local != nil {
		if err := m.local.Set(ctx, snap); err != nil {
			autosaveFailures.WithLabelValues("local").Inc()
			m.logger.Warn().Err(err).Str("key", snap.Key.String()).Msg("local autosave dropped")
		}
	}
	if m.remote != nil {
		if err := m.remote.PostSession(ctx, snap); err != nil {
			autosaveFailures.WithLabelValues("remote").Inc()
			m.logger.Warn().Err(err).Str("key", snap.Key.String()).Msg("remote autosave dropped")
		}
	}
}

// Restore returns the snapshot to resume from: remote first, local as
// fallback, nil when neither holds a usable copy. A snapshot without
// questions is corrupt or stale and is discarded.
func (m *Manager) Restore(ctx context.Context, key lesson.Key) *lesson.Snapshot {
	if m.remote != nil {
		snap, err := m.remote.GetSession(ctx, key)
		if err != nil {
			m.logger.Warn().Err(err).Str("key", key.String()).Msg("remote restore failed, trying local")
		} else if snap.Valid() {
			restores.WithLabelValues("remote").Inc()
			return snap
		}
	}

	if m.local != nil {
		snap, err := m.local.Get(ctx, key)
		if err != nil {
			m.logger.Warn().Err(err).Str("key", key.String()).Msg("local restore failed")
		} else if snap.Valid() {
			restores.WithLabelValues("local").Inc()
			return snap
		}
	}

	return nil
}

// Clear removes the snapshot from both backends. Best-effort: a failed clear
// must not block reporting the result, so errors are logged and swallowed.
func (m *Manager) Clear(ctx context.Context, key lesson.Key) {
	if m.local != nil {
		if err := m.local.Delete(ctx, key); err != nil {
			clearFailures.WithLabelValues("local").Inc()
			m.logger.Warn().Err(err).Str("key", key.String()).Msg("local clear failed")
		}
	}
	if m.remote != nil {
		if err := m.remote.DeleteSession(ctx, key); err != nil {
			clearFailures.WithLabelValues("remote").Inc()
			m.logger.Warn().Err(err).Str("key", key.String()).Msg("remote clear failed")
		}
	}
}
