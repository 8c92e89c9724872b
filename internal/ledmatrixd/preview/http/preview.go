package http

import (
	"encoding/json"
	"net/http"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
)

func (h *Handler) handleAcquire(w http.ResponseWriter, r *http.Request) {
	var item v1alpha1.DisplayItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.respondError(w, ErrInvalidRequest("invalid request body"))
		return
	}

	acquired, sessionID, err := h.manager.Acquire(item)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, v1alpha1.PreviewSession{Item: acquired, SessionID: sessionID})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.PreviewUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, ErrInvalidRequest("invalid request body"))
		return
	}

	updated, err := h.manager.Update(req.SessionID, req.Item)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, v1alpha1.PreviewSession{Item: updated, SessionID: req.SessionID})
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.SessionIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, ErrInvalidRequest("invalid request body"))
		return
	}

	if err := h.manager.Release(req.SessionID); err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, nil)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, v1alpha1.PreviewStatus{Active: h.manager.IsActive()})
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.SessionIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, ErrInvalidRequest("invalid request body"))
		return
	}

	if err := h.manager.Ping(req.SessionID); err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, nil)
}

func (h *Handler) handleSessionOwnership(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.SessionIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, ErrInvalidRequest("invalid request body"))
		return
	}

	h.respondJSON(w, http.StatusOK, v1alpha1.SessionOwnership{IsOwner: h.manager.IsOwner(req.SessionID)})
}
