// Package playlist implements the control plane's authoritative state: the
// ordered playlist of display items and the global brightness setting.
package playlist

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	werrors "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/errors"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
)

// Store is the authoritative, thread-safe owner of the playlist and
// brightness. Every mutation is applied under a single exclusive lock,
// persisted through Persister, and published on the event bus.
type Store struct {
	mu            sync.RWMutex
	items         []v1alpha1.DisplayItem
	brightness    uint8
	maxBrightness uint8

	persister Persister
	bus       *events.Bus
	logger    zerolog.Logger
}

// New creates a Store, loading its initial state from persister. A missing
// or unreadable file boots with an empty playlist and brightness 100; a
// corrupt file is a startup error.
func New(persister Persister, bus *events.Bus, maxBrightness uint8, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		persister:     persister,
		bus:           bus,
		maxBrightness: maxBrightness,
		brightness:    100,
		logger:        logger.With().Str("component", "playlist-store").Logger(),
	}

	doc, err := persister.Load()
	if err != nil {
		return nil, err
	}
	if doc != nil {
		s.items = doc.Items
		s.brightness = doc.Brightness
	}

	return s, nil
}

// List returns a snapshot of the playlist in playback order.
func (s *Store) List() []v1alpha1.DisplayItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Get returns one item by id.
func (s *Store) Get(id uuid.UUID) (v1alpha1.DisplayItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return v1alpha1.DisplayItem{}, werrors.NewError("NOT_FOUND", "no such playlist item", "Store.Get", werrors.ErrNotFound)
}

// Create validates item, assigns it an id if absent, appends it, persists
// and publishes an Add event.
func (s *Store) Create(item v1alpha1.DisplayItem) (v1alpha1.DisplayItem, error) {
	const op = "Store.Create"

	if err := validate(&item, true); err != nil {
		return v1alpha1.DisplayItem{}, err
	}

	s.mu.Lock()
	for _, existing := range s.items {
		if existing.ID == item.ID {
			s.mu.Unlock()
			return v1alpha1.DisplayItem{}, werrors.NewError("INVALID_INPUT", "id already in use", op, werrors.ErrInvalidInput)
		}
	}
	s.items = append(s.items, item)
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	s.persist(snapshot)
	s.bus.Publish(events.TopicPlaylist, v1alpha1.PlaylistEvent{Items: snapshot, Action: v1alpha1.PlaylistActionAdd})

	return item, nil
}

// Update replaces the item with the given id in place, preserving its
// position in the playlist.
func (s *Store) Update(id uuid.UUID, item v1alpha1.DisplayItem) (v1alpha1.DisplayItem, error) {
	const op = "Store.Update"

	item.ID = id
	if err := validate(&item, false); err != nil {
		return v1alpha1.DisplayItem{}, err
	}

	s.mu.Lock()
	idx := indexOf(s.items, id)
	if idx < 0 {
		s.mu.Unlock()
		return v1alpha1.DisplayItem{}, werrors.NewError("NOT_FOUND", "no such playlist item", op, werrors.ErrNotFound)
	}
	s.items[idx] = item
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	s.persist(snapshot)
	s.bus.Publish(events.TopicPlaylist, v1alpha1.PlaylistEvent{Items: snapshot, Action: v1alpha1.PlaylistActionUpdate})

	return item, nil
}

// Delete removes the item with the given id.
func (s *Store) Delete(id uuid.UUID) error {
	const op = "Store.Delete"

	s.mu.Lock()
	idx := indexOf(s.items, id)
	if idx < 0 {
		s.mu.Unlock()
		return werrors.NewError("NOT_FOUND", "no such playlist item", op, werrors.ErrNotFound)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	s.persist(snapshot)
	s.bus.Publish(events.TopicPlaylist, v1alpha1.PlaylistEvent{Items: snapshot, Action: v1alpha1.PlaylistActionDelete})

	return nil
}

// Reorder replaces the playlist order with the permutation of ids given. The
// multiset of ids must exactly match the current playlist.
func (s *Store) Reorder(ids []uuid.UUID) ([]v1alpha1.DisplayItem, error) {
	const op = "Store.Reorder"

	s.mu.Lock()
	snapshot, err := func() ([]v1alpha1.DisplayItem, error) {
		defer s.mu.Unlock()

		if len(ids) != len(s.items) {
			return nil, werrors.NewError("INVALID_REORDER", "id count does not match playlist size", op, werrors.ErrInvalidReorder)
		}

		byID := make(map[uuid.UUID]v1alpha1.DisplayItem, len(s.items))
		for _, item := range s.items {
			byID[item.ID] = item
		}

		reordered := make([]v1alpha1.DisplayItem, 0, len(ids))
		seen := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			item, ok := byID[id]
			if !ok {
				return nil, werrors.NewError("INVALID_REORDER", "id set does not match playlist", op, werrors.ErrInvalidReorder)
			}
			if _, dup := seen[id]; dup {
				return nil, werrors.NewError("INVALID_REORDER", "duplicate id in reorder request", op, werrors.ErrInvalidReorder)
			}
			seen[id] = struct{}{}
			reordered = append(reordered, item)
		}

		s.items = reordered
		return cloneItems(s.items), nil
	}()
	if err != nil {
		return nil, err
	}

	s.persist(snapshot)
	s.bus.Publish(events.TopicPlaylist, v1alpha1.PlaylistEvent{Items: snapshot, Action: v1alpha1.PlaylistActionReorder})

	return snapshot, nil
}

// Brightness returns the current unclamped-by-cap brightness setting.
func (s *Store) Brightness() uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brightness
}

// SetBrightness rejects v above 100 with ErrInvalidInput; otherwise it
// stores v, persists and publishes a BrightnessChanged event.
func (s *Store) SetBrightness(v uint8) (uint8, error) {
	if v > 100 {
		return 0, werrors.NewError("OUT_OF_RANGE", "brightness must be 0-100", "Store.SetBrightness", werrors.ErrInvalidInput)
	}

	s.mu.Lock()
	s.brightness = v
	snapshot := cloneItems(s.items)
	s.mu.Unlock()

	s.persist(snapshot)
	s.bus.Publish(events.TopicBrightness, v1alpha1.BrightnessEvent{Brightness: v})

	return v, nil
}

// EffectiveBrightness applies the process-wide max-brightness cap:
// effective = brightness * max_brightness / 100.
func (s *Store) EffectiveBrightness() uint8 {
	s.mu.RLock()
	b := s.brightness
	s.mu.RUnlock()
	return uint8(uint32(b) * uint32(s.maxBrightness) / 100)
}

// persist writes the full document through the configured Persister. Write
// failures are logged and otherwise swallowed: the in-memory mutation that
// triggered this write has already succeeded and must not be undone.
func (s *Store) persist(items []v1alpha1.DisplayItem) {
	s.mu.RLock()
	doc := &Document{Items: items, Brightness: s.brightness}
	s.mu.RUnlock()

	if err := s.persister.Save(doc); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist playlist state")
	}
}

func indexOf(items []v1alpha1.DisplayItem, id uuid.UUID) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []v1alpha1.DisplayItem) []v1alpha1.DisplayItem {
	out := make([]v1alpha1.DisplayItem, len(items))
	copy(out, items)
	return out
}
