// Package http exposes the playlist and brightness control plane over HTTP:
// CRUD and reordering for playlist items, the brightness setting, and the
// Server-Sent Events streams that mirror both to connected editors.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	werrors "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/errors"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/playlist"
)

// Handler serves the playlist and brightness HTTP API.
type Handler struct {
	store  *playlist.Store
	bus    *events.Bus
	logger zerolog.Logger
}

// NewHandler builds a Handler over store, publishing/subscribing through bus.
func NewHandler(store *playlist.Store, bus *events.Bus, logger zerolog.Logger) *Handler {
	return &Handler{
		store:  store,
		bus:    bus,
		logger: logger.With().Str("component", "playlist-http").Logger(),
	}
}

// Router returns a router pre-configured with all playlist endpoints.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts every playlist/brightness/event endpoint on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/playlist/items", func(r chi.Router) {
		r.Get("/", h.handleListItems)
		r.Post("/", h.handleCreateItem)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetItem)
			r.Put("/", h.handleUpdateItem)
			r.Delete("/", h.handleDeleteItem)
		})
	})
	r.Put("/api/playlist/reorder", h.handleReorder)

	r.Route("/api/settings/brightness", func(r chi.Router) {
		r.Get("/", h.handleGetBrightness)
		r.Put("/", h.handleSetBrightness)
	})

	r.Get("/api/events/playlist", h.handlePlaylistEvents)
	r.Get("/api/events/brightness", h.handleBrightnessEvents)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if he, ok := err.(HTTPError); ok {
		h.respondJSON(w, he.StatusCode(), map[string]string{"error": he.Error()})
		return
	}

	status := statusFor(err)
	msg := err.Error()
	if werr, ok := err.(*werrors.Error); ok {
		msg = werr.Message
	}
	h.respondJSON(w, status, map[string]string{"error": msg})
}
