package http

import (
	"net/http"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/sse"
)

func (h *Handler) handlePlaylistEvents(w http.ResponseWriter, r *http.Request) {
	initial := v1alpha1.PlaylistEvent{Items: h.store.List(), Action: v1alpha1.PlaylistActionAdd}
	sse.Stream(w, r, h.bus, events.TopicPlaylist, initial, h.logger)
}

func (h *Handler) handleBrightnessEvents(w http.ResponseWriter, r *http.Request) {
	initial := v1alpha1.BrightnessEvent{Brightness: h.store.Brightness()}
	sse.Stream(w, r, h.bus, events.TopicBrightness, initial, h.logger)
}
