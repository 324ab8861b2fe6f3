package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/displaywall/backend/internal/app"
	"github.com/displaywall/backend/internal/core"
	"github.com/displaywall/backend/internal/domain"
)

type stubCatalog struct {
	items []*domain.MediaItem
}

func (s *stubCatalog) Insert(_ context.Context, item *domain.MediaItem) error {
	s.items = append(s.items, item)
	return nil
}

func (s *stubCatalog) Get(_ context.Context, id domain.MediaID) (*domain.MediaItem, error) {
	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubCatalog) All(context.Context) ([]*domain.MediaItem, error) {
	return s.items, nil
}

func (s *stubCatalog) Save(_ context.Context, item *domain.MediaItem) error {
	for i, it := range s.items {
		if it.ID == item.ID {
			s.items[i] = item
		}
	}
	return nil
}

func (s *stubCatalog) Delete(_ context.Context, id domain.MediaID) error {
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubCatalog) Options(context.Context) (core.CategoryOptions, error) {
	return core.CategoryOptions{}, nil
}

func (s *stubCatalog) FindOne(context.Context, string, string) (*domain.MediaItem, error) {
	return nil, domain.ErrNotFound
}

type stubAssets struct{}

func (stubAssets) Store(_ context.Context, _ []byte, contentType string) (core.AssetDescriptor, error) {
	kind := domain.KindImage
	if strings.HasPrefix(contentType, "video/") {
		kind = domain.KindVideo
	}
	return core.AssetDescriptor{Kind: kind, URL: "https://x/a.png"}, nil
}

func (stubAssets) Delete(context.Context, string) error { return nil }

type stubPublisher struct{ snapshots int }

func (s *stubPublisher) Publish(any)                                {}
func (s *stubPublisher) Snapshot(context.Context)                   { s.snapshots++ }
func (s *stubPublisher) SnapshotTo(context.Context, core.SessionID) {}

func newTestRouter() (*gin.Engine, *stubCatalog, *stubPublisher) {
	gin.SetMode(gin.TestMode)
	catalog := &stubCatalog{}
	events := &stubPublisher{}
	h := NewMediaHandler(catalog, app.NewLifecycle(catalog, stubAssets{}, events))

	r := gin.New()
	r.GET("/api/display-media", h.List)
	r.GET("/api/display-media/:id", h.Get)
	r.POST("/api/display-media", h.Create)
	r.PUT("/api/display-media/:id", h.Update)
	r.DELETE("/api/display-media/:id", h.Delete)
	return r, catalog, events
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListEmptyCatalog(t *testing.T) {
	r, _, _ := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/display-media", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No media found.", decode(t, w).Message)
}

func TestGetMissing(t *testing.T) {
	r, _, _ := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/display-media/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Media not found.", decode(t, w).Message)
}

func TestCreateRequiresCategory(t *testing.T) {
	r, _, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/display-media", strings.NewReader("subcategory=welcome"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category is required.", decode(t, w).Message)
}

func TestCreateRejectsNonNumericPinpoint(t *testing.T) {
	r, _, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/display-media", strings.NewReader("category=lobby&pinpointX=abc"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateWithUpload(t *testing.T) {
	r, catalog, events := newTestRouter()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("category", "lobby"))
	require.NoError(t, mw.WriteField("subcategory", "welcome"))
	fw, err := mw.CreateFormFile("mediaEn", "a.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/display-media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Media created successfully.", decode(t, w).Message)
	require.Len(t, catalog.items, 1)
	require.NotNil(t, catalog.items[0].Media[domain.LangEN])
	assert.Equal(t, "https://x/a.png", catalog.items[0].Media[domain.LangEN].URL)
	assert.Equal(t, 1, events.snapshots)
}

func TestUpdateMissing(t *testing.T) {
	r, _, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPut, "/api/display-media/nope", strings.NewReader("category=lobby"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Media item not found.", decode(t, w).Message)
}

func TestDelete(t *testing.T) {
	r, catalog, events := newTestRouter()
	catalog.items = append(catalog.items, &domain.MediaItem{ID: "item-1", Category: "lobby"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/display-media/item-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Media deleted successfully.", decode(t, w).Message)
	assert.Empty(t, catalog.items)
	assert.Equal(t, 1, events.snapshots)
}
