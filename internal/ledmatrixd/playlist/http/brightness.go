package http

import (
	"encoding/json"
	"net/http"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
)

func (h *Handler) handleGetBrightness(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, v1alpha1.BrightnessSettings{Brightness: h.store.Brightness()})
}

func (h *Handler) handleSetBrightness(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.BrightnessSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, ErrInvalidRequest("invalid request body"))
		return
	}

	brightness, err := h.store.SetBrightness(req.Brightness)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, v1alpha1.BrightnessSettings{Brightness: brightness})
}
