// Package http exposes the preview lease over HTTP: acquire/update/release,
// liveness pings, ownership checks, and the editor-lock Server-Sent Events
// stream.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	werrors "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/errors"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/preview"
)

// Handler serves the preview HTTP API.
type Handler struct {
	manager *preview.Manager
	bus     *events.Bus
	logger  zerolog.Logger
}

// NewHandler builds a Handler over manager, publishing/subscribing through bus.
func NewHandler(manager *preview.Manager, bus *events.Bus, logger zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		bus:     bus,
		logger:  logger.With().Str("component", "preview-http").Logger(),
	}
}

// Router returns a router pre-configured with all preview endpoints.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts every preview/event endpoint on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/preview", func(r chi.Router) {
		r.Post("/", h.handleAcquire)
		r.Put("/", h.handleUpdate)
		r.Delete("/", h.handleRelease)
		r.Get("/status", h.handleStatus)
		r.Post("/ping", h.handlePing)
		r.Post("/session", h.handleSessionOwnership)
	})

	r.Get("/api/events/editor", h.handleEditorEvents)
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
