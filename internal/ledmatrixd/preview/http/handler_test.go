package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/events"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/preview"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	bus := events.NewBus(zerolog.Nop())
	manager := preview.New(bus, zerolog.Nop())
	return NewHandler(manager, bus, zerolog.Nop())
}

func TestHandler_AcquireThenConflict(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	body, _ := json.Marshal(v1alpha1.DisplayItem{})

	req := httptest.NewRequest(http.MethodPost, "/api/preview", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var session v1alpha1.PreviewSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEqual(t, uuid.Nil, session.SessionID)

	req2 := httptest.NewRequest(http.MethodPost, "/api/preview", bytes.NewReader(body))
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusForbidden, rec2.Code)
}

func TestHandler_ReleaseWrongSessionReturns403(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	body, _ := json.Marshal(v1alpha1.DisplayItem{})
	req := httptest.NewRequest(http.MethodPost, "/api/preview", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	releaseBody, _ := json.Marshal(v1alpha1.SessionIDRequest{SessionID: uuid.New()})
	releaseReq := httptest.NewRequest(http.MethodDelete, "/api/preview", bytes.NewReader(releaseBody))
	releaseRec := httptest.NewRecorder()
	router.ServeHTTP(releaseRec, releaseReq)

	assert.Equal(t, http.StatusForbidden, releaseRec.Code)
}

func TestHandler_StatusReflectsActivity(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	statusReq := httptest.NewRequest(http.MethodGet, "/api/preview/status", nil)
	statusRec := httptest.NewRecorder()
	router.ServeHTTP(statusRec, statusReq)
	var status v1alpha1.PreviewStatus
	require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &status))
	assert.False(t, status.Active)

	body, _ := json.Marshal(v1alpha1.DisplayItem{})
	req := httptest.NewRequest(http.MethodPost, "/api/preview", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	statusReq2 := httptest.NewRequest(http.MethodGet, "/api/preview/status", nil)
	statusRec2 := httptest.NewRecorder()
	router.ServeHTTP(statusRec2, statusReq2)
	require.NoError(t, json.Unmarshal(statusRec2.Body.Bytes(), &status))
	assert.True(t, status.Active)
}

func TestHandler_SessionOwnership(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	body, _ := json.Marshal(v1alpha1.DisplayItem{})
	req := httptest.NewRequest(http.MethodPost, "/api/preview", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var session v1alpha1.PreviewSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))

	ownReq := httptest.NewRequest(http.MethodPost, "/api/preview/session",
		bytes.NewReader(mustMarshal(v1alpha1.SessionIDRequest{SessionID: session.SessionID})))
	ownRec := httptest.NewRecorder()
	router.ServeHTTP(ownRec, ownReq)

	var ownership v1alpha1.SessionOwnership
	require.NoError(t, json.Unmarshal(ownRec.Body.Bytes(), &ownership))
	assert.True(t, ownership.IsOwner)
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
