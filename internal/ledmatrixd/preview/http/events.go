package http

import (
	"net/http"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/sse"
)

func (h *Handler) handleEditorEvents(w http.ResponseWriter, r *http.Request) {
	initial := v1alpha1.EditorLockEvent{Locked: h.manager.IsActive()}
	sse.Stream(w, r, h.bus, events.TopicEditor, initial, h.logger)
}
