package display

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/panel"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/playlist"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/preview"
)

type fakePersister struct{ doc *playlist.Document }

func (p *fakePersister) Load() (*playlist.Document, error) { return p.doc, nil }
func (p *fakePersister) Save(doc *playlist.Document) error  { p.doc = doc; return nil }

type fakeDriver struct {
	buf *panel.FrameBuffer
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{buf: panel.NewFrameBuffer(32, 16)}
}

func (d *fakeDriver) Canvas() *panel.FrameBuffer { return d.buf }
func (d *fakeDriver) Swap() *panel.FrameBuffer   { return d.buf }
func (d *fakeDriver) Fatal() <-chan error        { return nil }
func (d *fakeDriver) Close() error               { return nil }

func newTestEngine(t *testing.T, items ...v1alpha1.DisplayItem) (*Engine, *playlist.Store, *preview.Manager) {
	t.Helper()
	bus := events.NewBus(zerolog.Nop())
	store, err := playlist.New(&fakePersister{}, bus, 100, zerolog.Nop())
	require.NoError(t, err)
	for _, item := range items {
		_, err := store.Create(item)
		require.NoError(t, err)
	}
	previewMgr := preview.New(bus, zerolog.Nop())
	driver := newFakeDriver()
	engine := NewEngine(store, previewMgr, driver, false, zerolog.Nop())
	return engine, store, previewMgr
}

func TestEngine_StartsIdleWithEmptyPlaylist(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	engine.EnsureStarted()
	assert.Equal(t, stateIdle, engine.state.kind)
}

func TestEngine_EnsureStartedPicksFirstItem(t *testing.T) {
	engine, _, _ := newTestEngine(t, staticTextItem("a"), staticTextItem("b"))
	engine.EnsureStarted()
	assert.Equal(t, statePlaylist, engine.state.kind)
	assert.Equal(t, 0, engine.state.idx)
}

func TestEngine_PreviewPreemptsPlaylist(t *testing.T) {
	engine, _, previewMgr := newTestEngine(t, staticTextItem("a"))
	engine.EnsureStarted()
	engine.tick()
	require.Equal(t, statePlaylist, engine.state.kind)

	_, _, err := previewMgr.Acquire(staticTextItem("preview"))
	require.NoError(t, err)

	engine.tick()
	assert.Equal(t, statePreview, engine.state.kind)
}

func TestEngine_ReleasingPreviewResumesPlaylist(t *testing.T) {
	engine, _, previewMgr := newTestEngine(t, staticTextItem("a"))
	engine.EnsureStarted()

	_, session, err := previewMgr.Acquire(staticTextItem("preview"))
	require.NoError(t, err)
	engine.tick()
	require.Equal(t, statePreview, engine.state.kind)

	require.NoError(t, previewMgr.Release(session))
	engine.tick()
	assert.Equal(t, statePlaylist, engine.state.kind)
}

func TestEngine_ReleasingPreviewResumesAtLastPlaylistIndex(t *testing.T) {
	engine, _, previewMgr := newTestEngine(t, staticTextItem("a"), staticTextItem("b"), staticTextItem("c"))
	engine.EnsureStarted()
	engine.state.idx = 2

	_, session, err := previewMgr.Acquire(staticTextItem("preview"))
	require.NoError(t, err)
	engine.tick()
	require.Equal(t, statePreview, engine.state.kind)

	require.NoError(t, previewMgr.Release(session))
	engine.tick()
	require.Equal(t, statePlaylist, engine.state.kind)
	assert.Equal(t, 2, engine.state.idx, "must resume at the playlist index active before the preview started")
}

func TestEngine_AdvancesPlaylistAfterStaticDuration(t *testing.T) {
	item := staticTextItem("a")
	duration := uint32(1)
	item.Duration = &duration
	second := staticTextItem("b")
	second.Duration = &duration

	engine, _, _ := newTestEngine(t, item, second)
	engine.EnsureStarted()
	engine.state.startedAt = time.Now().Add(-2 * time.Second)

	engine.tick()
	assert.Equal(t, 1, engine.state.idx)
}

func TestEngine_LoneItemLoopsRatherThanStalling(t *testing.T) {
	item := staticTextItem("a")
	duration := uint32(1)
	item.Duration = &duration

	engine, _, _ := newTestEngine(t, item)
	engine.EnsureStarted()
	engine.state.startedAt = time.Now().Add(-2 * time.Second)

	engine.tick()
	assert.Equal(t, statePlaylist, engine.state.kind)
	assert.Equal(t, 0, engine.state.idx)
}
