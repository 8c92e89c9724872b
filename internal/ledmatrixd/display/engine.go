package display

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/panel"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/playlist"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/preview"
)

// tickPeriod is the animation tick rate; ~60 Hz per the render loop's
// target, well below the refresh thread's BCM rate.
const tickPeriod = 16660 * time.Microsecond

type engineStateKind int

const (
	stateIdle engineStateKind = iota
	statePlaylist
	statePreview
)

// engineState is the active-item state machine's current value: which item
// is showing, when it started (for elapsed-duration and scroll-offset
// math), and how many scroll passes it has completed.
type engineState struct {
	kind      engineStateKind
	idx       int
	item      v1alpha1.DisplayItem
	startedAt time.Time
	passes    int
}

// Engine is the playback state machine: it decides which item is active,
// drives the Renderer at a fixed tick, and hands frames to the panel
// driver.
type Engine struct {
	store    *playlist.Store
	preview  *preview.Manager
	driver   panel.Driver
	renderer *Renderer
	inverse  bool
	logger   zerolog.Logger

	state engineState
}

// NewEngine wires the engine's collaborators. inverseColors mirrors the
// panel config's inverse-colors flag.
func NewEngine(store *playlist.Store, previewMgr *preview.Manager, driver panel.Driver, inverseColors bool, logger zerolog.Logger) *Engine {
	return &Engine{
		store:    store,
		preview:  previewMgr,
		driver:   driver,
		renderer: NewRenderer(),
		inverse:  inverseColors,
		logger:   logger.With().Str("component", "display-engine").Logger(),
		state:    engineState{kind: stateIdle},
	}
}

// Run drives the tick loop until ctx is canceled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) tick() {
	now := time.Now()

	previewItem, previewOn := e.preview.Current()
	e.applyPreviewTransition(previewItem, previewOn, now)

	buf := e.driver.Canvas()

	switch e.state.kind {
	case stateIdle:
		buf.Clear()
	case statePlaylist, statePreview:
		effectiveBrightness := e.store.EffectiveBrightness()
		t := now.Sub(e.state.startedAt)
		passes := e.renderer.Render(e.state.item, t, buf, effectiveBrightness, e.inverse)
		e.state.passes = passes
		e.evaluateEndOfItem(now)
	}

	e.driver.Swap()
}

// applyPreviewTransition unconditionally switches to preview when one
// becomes active, and resumes playlist playback (or goes idle) when it
// clears, per the engine's transition rules.
func (e *Engine) applyPreviewTransition(previewItem v1alpha1.DisplayItem, previewOn bool, now time.Time) {
	switch {
	case previewOn && e.state.kind != statePreview:
		e.state = engineState{kind: statePreview, idx: e.state.idx, item: previewItem, startedAt: now}
	case previewOn && e.state.kind == statePreview:
		e.state.item = previewItem
	case !previewOn && e.state.kind == statePreview:
		e.resumePlaylist(now)
	}
}

func (e *Engine) resumePlaylist(now time.Time) {
	items := e.store.List()
	if len(items) == 0 {
		e.state = engineState{kind: stateIdle}
		return
	}
	idx := e.state.idx
	if idx >= len(items) {
		idx = 0
	}
	e.state = engineState{kind: statePlaylist, idx: idx, item: items[idx], startedAt: now}
}

func (e *Engine) evaluateEndOfItem(now time.Time) {
	item := e.state.item
	var done bool
	if item.Content.Data.Scroll {
		r := item.RepeatCount
		done = r != nil && *r != 0 && e.state.passes >= int(*r)
	} else {
		d := item.Duration
		done = d != nil && *d != 0 && now.Sub(e.state.startedAt) >= time.Duration(*d)*time.Second
	}

	if !done {
		return
	}

	switch e.state.kind {
	case statePreview:
		// Preview loops until explicitly cleared.
		e.state.startedAt = now
		e.state.passes = 0
	case statePlaylist:
		e.advancePlaylist(now)
	}
}

func (e *Engine) advancePlaylist(now time.Time) {
	items := e.store.List()
	if len(items) == 0 {
		e.state = engineState{kind: stateIdle}
		return
	}
	next := (e.state.idx + 1) % len(items)
	e.state = engineState{kind: statePlaylist, idx: next, item: items[next], startedAt: now}
}

// EnsureStarted picks the initial state on process start: the first
// playlist item if any exist, else idle. Call once before Run.
func (e *Engine) EnsureStarted() {
	if e.state.kind != stateIdle {
		return
	}
	items := e.store.List()
	if len(items) == 0 {
		return
	}
	e.state = engineState{kind: statePlaylist, idx: 0, item: items[0], startedAt: time.Now()}
}
