package preview

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	werrors "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/errors"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
)

func newTestManager() *Manager {
	return New(events.NewBus(zerolog.Nop()), zerolog.Nop())
}

func TestManager_AcquireThenConflict(t *testing.T) {
	m := newTestManager()
	item := v1alpha1.DisplayItem{}

	_, session, err := m.Acquire(item)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, session)

	_, _, err = m.Acquire(item)
	assert.True(t, werrors.IsConflict(err))
}

func TestManager_UpdateRequiresOwnership(t *testing.T) {
	m := newTestManager()
	_, session, err := m.Acquire(v1alpha1.DisplayItem{})
	require.NoError(t, err)

	_, err = m.Update(uuid.New(), v1alpha1.DisplayItem{})
	assert.True(t, werrors.IsForbidden(err))

	_, err = m.Update(session, v1alpha1.DisplayItem{})
	assert.NoError(t, err)
}

func TestManager_UpdateWithoutActiveSession(t *testing.T) {
	m := newTestManager()
	_, err := m.Update(uuid.New(), v1alpha1.DisplayItem{})
	assert.True(t, werrors.IsNotFound(err))
}

func TestManager_ReleaseClearsSlot(t *testing.T) {
	m := newTestManager()
	_, session, err := m.Acquire(v1alpha1.DisplayItem{})
	require.NoError(t, err)

	require.NoError(t, m.Release(session))
	assert.False(t, m.IsActive())

	err = m.Release(session)
	assert.True(t, werrors.IsNotFound(err))
}

func TestManager_ReleaseWrongOwner(t *testing.T) {
	m := newTestManager()
	_, _, err := m.Acquire(v1alpha1.DisplayItem{})
	require.NoError(t, err)

	err = m.Release(uuid.New())
	assert.True(t, werrors.IsForbidden(err))
}

func TestManager_CurrentReflectsActiveItem(t *testing.T) {
	m := newTestManager()
	item := v1alpha1.DisplayItem{Content: v1alpha1.Content{Data: v1alpha1.TextContent{Text: "preview me"}}}

	_, session, err := m.Acquire(item)
	require.NoError(t, err)

	got, active := m.Current()
	require.True(t, active)
	assert.Equal(t, "preview me", got.Content.Data.Text)

	require.NoError(t, m.Release(session))
	_, active = m.Current()
	assert.False(t, active)
}

func TestManager_SweepExpiresStaleSession(t *testing.T) {
	m := newTestManager()
	_, _, err := m.Acquire(v1alpha1.DisplayItem{})
	require.NoError(t, err)

	m.mu.Lock()
	m.slot.lastPingAt = time.Now().Add(-2 * Timeout)
	m.mu.Unlock()

	m.sweep()

	assert.False(t, m.IsActive())
}

func TestManager_SweepLeavesLiveSessionAlone(t *testing.T) {
	m := newTestManager()
	_, session, err := m.Acquire(v1alpha1.DisplayItem{})
	require.NoError(t, err)

	require.NoError(t, m.Ping(session))
	m.sweep()

	assert.True(t, m.IsActive())
}
