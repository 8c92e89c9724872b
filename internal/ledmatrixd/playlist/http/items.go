package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
)

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var item v1alpha1.DisplayItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.respondError(w, ErrInvalidRequest("invalid request body"))
		return
	}

	created, err := h.store.Create(item)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, ErrInvalidRequest("invalid item id"))
		return
	}

	item, err := h.store.Get(id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, item)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, ErrInvalidRequest("invalid item id"))
		return
	}

	var item v1alpha1.DisplayItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.respondError(w, ErrInvalidRequest("invalid request body"))
		return
	}

	updated, err := h.store.Update(id, item)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, ErrInvalidRequest("invalid item id"))
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, nil)
}

func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, ErrInvalidRequest("invalid request body"))
		return
	}

	items, err := h.store.Reorder(req.ItemIDs)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, items)
}
