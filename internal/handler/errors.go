package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/costumerent/costume-market/internal/blob"
	"github.com/costumerent/costume-market/internal/middleware"
	"github.com/costumerent/costume-market/internal/model"
	"github.com/costumerent/costume-market/internal/service"
)

// respondError maps service errors to HTTP responses.  Unknown errors are
// reported as 500 without detail; services have already logged them.
func respondError(c echo.Context, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, blob.ErrTooLarge):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, blob.ErrUnsupportedMedia):
			status = http.StatusUnsupportedMediaType
		}
		body := echo.Map{"error": ve.Error()}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		return c.JSON(status, body)
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "costume is already reserved for these dates"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// principal builds the caller identity from the context populated by the
// auth middleware.  Anonymous callers get the zero Principal.
func principal(c echo.Context) model.Principal {
	id, _ := middleware.UserID(c)
	return model.Principal{UserID: id}
}
