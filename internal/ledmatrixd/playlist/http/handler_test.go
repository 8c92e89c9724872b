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
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/playlist"
)

type memPersister struct{ doc *playlist.Document }

func (p *memPersister) Load() (*playlist.Document, error) { return p.doc, nil }
func (p *memPersister) Save(doc *playlist.Document) error  { p.doc = doc; return nil }

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	bus := events.NewBus(zerolog.Nop())
	store, err := playlist.New(&memPersister{}, bus, 100, zerolog.Nop())
	require.NoError(t, err)
	return NewHandler(store, bus, zerolog.Nop())
}

func staticItemBody(text string) []byte {
	duration := uint32(5)
	item := v1alpha1.DisplayItem{
		Duration: &duration,
		Content: v1alpha1.Content{
			ContentType: v1alpha1.ContentTypeText,
			Data:        v1alpha1.TextContent{Text: text},
		},
	}
	body, _ := json.Marshal(item)
	return body
}

func TestHandler_CreateAndListItems(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/playlist/items", bytes.NewReader(staticItemBody("hello")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created v1alpha1.DisplayItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)

	listReq := httptest.NewRequest(http.MethodGet, "/api/playlist/items", nil)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, listReq)
	require.Equal(t, http.StatusOK, listRec.Code)

	var items []v1alpha1.DisplayItem
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
}

func TestHandler_GetItemNotFoundReturns404(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	req := httptest.NewRequest(http.MethodGet, "/api/playlist/items/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_CreateInvalidBodyReturns400(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/playlist/items", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ReorderMismatchReturns400(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	createReq := httptest.NewRequest(http.MethodPost, "/api/playlist/items", bytes.NewReader(staticItemBody("a")))
	createRec := httptest.NewRecorder()
	router.ServeHTTP(createRec, createReq)
	require.Equal(t, http.StatusCreated, createRec.Code)

	reorderBody, _ := json.Marshal(v1alpha1.ReorderRequest{ItemIDs: []uuid.UUID{uuid.New(), uuid.New()}})
	req := httptest.NewRequest(http.MethodPut, "/api/playlist/reorder", bytes.NewReader(reorderBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_BrightnessRoundTrip(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	body, _ := json.Marshal(v1alpha1.BrightnessSettings{Brightness: 42})
	req := httptest.NewRequest(http.MethodPut, "/api/settings/brightness", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/api/settings/brightness", nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	require.Equal(t, http.StatusOK, getRec.Code)

	var got v1alpha1.BrightnessSettings
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &got))
	assert.Equal(t, uint8(42), got.Brightness)
}

func TestHandler_BrightnessOutOfRangeReturns400(t *testing.T) {
	h := newTestHandler(t)
	router := h.Router()

	body, _ := json.Marshal(v1alpha1.BrightnessSettings{Brightness: 255})
	req := httptest.NewRequest(http.MethodPut, "/api/settings/brightness", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
