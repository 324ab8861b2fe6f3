package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/displaywall/backend/internal/app"
	"github.com/displaywall/backend/internal/core"
	"github.com/displaywall/backend/internal/domain"
)

// MediaHandler is the administrative surface over the catalog. Reads go to
// the store directly; mutations go through the lifecycle manager so asset
// ordering and the snapshot broadcast hold.
type MediaHandler struct {
	Catalog   core.CatalogStore
	Lifecycle *app.Lifecycle
}

func NewMediaHandler(catalog core.CatalogStore, lifecycle *app.Lifecycle) *MediaHandler {
	return &MediaHandler{Catalog: catalog, Lifecycle: lifecycle}
}

type apiResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, apiResponse{Status: status, Message: message, Data: data})
}

func (h *MediaHandler) List(c *gin.Context) {
	items, err := h.Catalog.All(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list media")
		respond(c, http.StatusInternalServerError, "Failed to fetch media.", nil)
		return
	}
	msg := "Media fetched."
	if len(items) == 0 {
		msg = "No media found."
	}
	respond(c, http.StatusOK, msg, items)
}

func (h *MediaHandler) Get(c *gin.Context) {
	item, err := h.Catalog.Get(c.Request.Context(), domain.MediaID(c.Param("id")))
	if errors.Is(err, domain.ErrNotFound) {
		respond(c, http.StatusNotFound, "Media not found.", nil)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("get media")
		respond(c, http.StatusInternalServerError, "Failed to fetch media.", nil)
		return
	}
	respond(c, http.StatusOK, "Media retrieved.", item)
}

func (h *MediaHandler) Create(c *gin.Context) {
	fields, uploads, ok := h.parseForm(c)
	if !ok {
		return
	}
	item, err := h.Lifecycle.Create(c.Request.Context(), fields, uploads)
	if err != nil {
		h.fail(c, err, "Failed to create media.")
		return
	}
	respond(c, http.StatusCreated, "Media created successfully.", item)
}

func (h *MediaHandler) Update(c *gin.Context) {
	fields, uploads, ok := h.parseForm(c)
	if !ok {
		return
	}
	item, err := h.Lifecycle.Update(c.Request.Context(), domain.MediaID(c.Param("id")), fields, uploads)
	if err != nil {
		h.fail(c, err, "Failed to update media.")
		return
	}
	respond(c, http.StatusOK, "Media updated successfully.", item)
}

func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.Lifecycle.Delete(c.Request.Context(), domain.MediaID(c.Param("id"))); err != nil {
		h.fail(c, err, "Failed to delete media.")
		return
	}
	respond(c, http.StatusOK, "Media deleted successfully.", nil)
}

func (h *MediaHandler) fail(c *gin.Context, err error, fallback string) {
	var vErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respond(c, http.StatusNotFound, "Media item not found.", nil)
	case errors.Is(err, domain.ErrCategoryRequired):
		respond(c, http.StatusBadRequest, "Category is required.", nil)
	case errors.As(err, &vErr):
		respond(c, http.StatusBadRequest, vErr.Error(), nil)
	default:
		log.Error().Err(err).Str("module", "adapters.http").Msg("media mutation failed")
		respond(c, http.StatusInternalServerError, fallback, nil)
	}
}

func (h *MediaHandler) parseForm(c *gin.Context) (app.Fields, app.Uploads, bool) {
	fields := app.Fields{
		Category:    c.PostForm("category"),
		Subcategory: c.PostForm("subcategory"),
	}

	var ok bool
	if fields.PinpointX, ok = parseAxis(c, "pinpointX"); !ok {
		return fields, app.Uploads{}, false
	}
	if fields.PinpointY, ok = parseAxis(c, "pinpointY"); !ok {
		return fields, app.Uploads{}, false
	}

	var uploads app.Uploads
	for _, f := range []struct {
		name string
		dst  **app.Upload
	}{
		{"mediaEn", &uploads.MediaEN},
		{"mediaAr", &uploads.MediaAR},
		{"pinpoint", &uploads.Pinpoint},
	} {
		up, err := formUpload(c, f.name)
		if err != nil {
			respond(c, http.StatusBadRequest, "Failed to read uploaded file.", nil)
			return fields, uploads, false
		}
		*f.dst = up
	}
	return fields, uploads, true
}

func parseAxis(c *gin.Context, name string) (*float64, bool) {
	raw := c.PostForm(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		respond(c, http.StatusBadRequest, "Pinpoint coordinates must be numeric.", nil)
		return nil, false
	}
	return &v, true
}

func formUpload(c *gin.Context, name string) (*app.Upload, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &app.Upload{Data: data, ContentType: fh.Header.Get("Content-Type")}, nil
}
