package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/costumerent/costume-market/internal/blob"
)

// ImageStore stores listing pictures and turns references into links.
type ImageStore interface {
	Store(ctx context.Context, obj blob.Object, p blob.Policy) (string, error)
	URL(ref string) string
}

// UploadHandler accepts costume images ahead of listing creation.
type UploadHandler struct {
	Images   ImageStore
	MaxBytes int64
	Log      *zap.Logger
}

// NewUploadHandler wires an UploadHandler.
func NewUploadHandler(images ImageStore, maxBytes int64, log *zap.Logger) *UploadHandler {
	return &UploadHandler{Images: images, MaxBytes: maxBytes, Log: log}
}

// Image stores the multipart field "image" and returns its public URL.
func (h *UploadHandler) Image(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image: is required", "field": "image"})
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "unreadable image")
	}
	defer f.Close()

	ref, err := h.Images.Store(c.Request().Context(), blob.Object{Name: fh.Filename, Body: f}, blob.Images(h.MaxBytes))
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{"image_url": h.Images.URL(ref)})
	case errors.Is(err, blob.ErrTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "image: file is too large", "field": "image"})
	case errors.Is(err, blob.ErrUnsupportedMedia):
		return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "image: must be a jpeg, png or gif file", "field": "image"})
	case errors.Is(err, blob.ErrEmpty):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image: is required", "field": "image"})
	default:
		h.Log.Error("store image", zap.String("filename", fh.Filename), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}
}
