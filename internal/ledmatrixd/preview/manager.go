// Package preview implements the single-slot exclusive preview lease: an
// editor claims the slot, pings it to keep it alive, and releases it (or
// lets it expire) to hand control back to the playlist.
package preview

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	werrors "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/errors"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
)

// Timeout is how long a preview session may go unpinged before the
// background sweeper reclaims its slot.
const Timeout = 5 * time.Second

// sweepInterval is how often the sweeper checks for expired sessions.
const sweepInterval = 500 * time.Millisecond

// slot is the single occupant of the preview lease, if any.
type slot struct {
	item       v1alpha1.DisplayItem
	sessionID  uuid.UUID
	lastPingAt time.Time
}

// Manager owns the preview slot. All operations are safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	slot   *slot
	bus    *events.Bus
	logger zerolog.Logger
}

// New creates an empty Manager.
func New(bus *events.Bus, logger zerolog.Logger) *Manager {
	return &Manager{
		bus:    bus,
		logger: logger.With().Str("component", "preview-manager").Logger(),
	}
}

// Acquire claims the preview slot for a brand new session. Fails with
// ErrConflict if another session already holds it.
func (m *Manager) Acquire(item v1alpha1.DisplayItem) (v1alpha1.DisplayItem, uuid.UUID, error) {
	const op = "Manager.Acquire"

	m.mu.Lock()
	if m.slot != nil {
		m.mu.Unlock()
		return v1alpha1.DisplayItem{}, uuid.Nil, werrors.NewError("CONFLICT", "preview already held by another session", op, werrors.ErrConflict)
	}

	sessionID := uuid.New()
	m.slot = &slot{item: item, sessionID: sessionID, lastPingAt: time.Now()}
	m.mu.Unlock()

	m.publishLock(true, &sessionID)

	return item, sessionID, nil
}

// Update replaces the previewed item for the session that owns the slot. It
// does not emit an editor event — the lock holder is unchanged — but it
// does advance the item the display engine will pick up on its next tick.
func (m *Manager) Update(sessionID uuid.UUID, item v1alpha1.DisplayItem) (v1alpha1.DisplayItem, error) {
	const op = "Manager.Update"

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slot == nil {
		return v1alpha1.DisplayItem{}, werrors.NewError("NOT_IN_PREVIEW", "no preview session is active", op, werrors.ErrNotFound)
	}
	if m.slot.sessionID != sessionID {
		return v1alpha1.DisplayItem{}, werrors.NewError("FORBIDDEN", "session does not own the preview slot", op, werrors.ErrForbidden)
	}

	m.slot.item = item
	return item, nil
}

// Release clears the slot if sessionID owns it.
func (m *Manager) Release(sessionID uuid.UUID) error {
	const op = "Manager.Release"

	m.mu.Lock()
	if m.slot == nil {
		m.mu.Unlock()
		return werrors.NewError("NOT_IN_PREVIEW", "no preview session is active", op, werrors.ErrNotFound)
	}
	if m.slot.sessionID != sessionID {
		m.mu.Unlock()
		return werrors.NewError("FORBIDDEN", "session does not own the preview slot", op, werrors.ErrForbidden)
	}
	m.slot = nil
	m.mu.Unlock()

	m.publishLock(false, nil)
	return nil
}

// Ping refreshes the liveness timestamp for sessionID.
func (m *Manager) Ping(sessionID uuid.UUID) error {
	const op = "Manager.Ping"

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slot == nil {
		return werrors.NewError("NOT_IN_PREVIEW", "no preview session is active", op, werrors.ErrNotFound)
	}
	if m.slot.sessionID != sessionID {
		return werrors.NewError("FORBIDDEN", "session does not own the preview slot", op, werrors.ErrForbidden)
	}

	m.slot.lastPingAt = time.Now()
	return nil
}

// IsActive reports whether a preview session currently holds the slot.
func (m *Manager) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slot != nil
}

// IsOwner reports whether sessionID currently holds the slot.
func (m *Manager) IsOwner(sessionID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slot != nil && m.slot.sessionID == sessionID
}

// Current returns the item currently being previewed, for the display
// engine's per-tick snapshot. The second return is false when no preview is
// active.
func (m *Manager) Current() (v1alpha1.DisplayItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot == nil {
		return v1alpha1.DisplayItem{}, false
	}
	return m.slot.item, true
}

// StartSweeper runs the liveness sweep every sweepInterval until ctx is
// canceled. It is the sole authority for expiring idle preview sessions;
// endpoints never expire the slot on read.
func (m *Manager) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	m.mu.Lock()
	expired := m.slot != nil && time.Since(m.slot.lastPingAt) > Timeout
	if expired {
		m.slot = nil
	}
	m.mu.Unlock()

	if expired {
		m.logger.Info().Msg("preview session expired")
		m.publishLock(false, nil)
	}
}

func (m *Manager) publishLock(locked bool, sessionID *uuid.UUID) {
	m.bus.Publish(events.TopicEditor, v1alpha1.EditorLockEvent{Locked: locked, LockedBy: sessionID})
}
