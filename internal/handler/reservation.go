package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/costumerent/costume-market/internal/blob"
	"github.com/costumerent/costume-market/internal/model"
	"github.com/costumerent/costume-market/internal/service"
)

// ReservationService is the subset of *service.ReservationService used here.
type ReservationService interface {
	Reserve(ctx context.Context, p model.Principal, in service.ReserveInput) (*model.Reservation, error)
	MarkReserved(ctx context.Context, costumeID uint64, p model.Principal) (*model.Costume, error)
	Get(ctx context.Context, id uint64, p model.Principal) (*model.Reservation, error)
	ListMine(ctx context.Context, p model.Principal) ([]*model.Reservation, error)
}

// ReservationHandler serves reservation endpoints.
type ReservationHandler struct {
	Reservations ReservationService
}

// NewReservationHandler wires a ReservationHandler.
func NewReservationHandler(reservations ReservationService) *ReservationHandler {
	return &ReservationHandler{Reservations: reservations}
}

// Create registers a reservation from a multipart form carrying
// costume_id, client_phone, start_date, end_date and the id_document file.
func (h *ReservationHandler) Create(c echo.Context) error {
	in := service.ReserveInput{
		ClientPhone: c.FormValue("client_phone"),
		StartDate:   c.FormValue("start_date"),
		EndDate:     c.FormValue("end_date"),
	}
	if raw := strings.TrimSpace(c.FormValue("costume_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "costume_id: must be a positive integer", "field": "costume_id"})
		}
		in.CostumeID = id
	}

	fh, err := c.FormFile("id_document")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return badRequest(c, "unreadable id_document")
		}
		defer f.Close()
		in.Document = &blob.Object{Name: fh.Filename, Body: f}
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		return badRequest(c, "invalid multipart form")
	}

	res, err := h.Reservations.Reserve(c.Request().Context(), principal(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Reservation created successfully", "data": toReservation(res)})
}

// Get returns a reservation registered by the caller.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	res, err := h.Reservations.Get(c.Request().Context(), id, principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toReservation(res)})
}

// ListMine returns the caller's reservations, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	out, err := h.Reservations.ListMine(c.Request().Context(), principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toReservations(out)})
}
