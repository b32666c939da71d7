package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/costumerent/costume-market/internal/model"
	"github.com/costumerent/costume-market/internal/service"
)

// ListingService is the subset of *service.ListingService used here.
type ListingService interface {
	Create(ctx context.Context, p model.Principal, in service.CreateCostumeInput) (*model.Costume, error)
	Update(ctx context.Context, id uint64, p model.Principal, patch model.CostumePatch) (*model.Costume, error)
	Delete(ctx context.Context, id uint64, p model.Principal) error
	Get(ctx context.Context, id uint64) (*model.Costume, error)
}

// QueryService is the subset of *service.QueryService used here.
type QueryService interface {
	Search(ctx context.Context, term string) ([]*model.Costume, error)
	ListBySeller(ctx context.Context, sellerID uint64, p model.Principal) ([]*model.Costume, error)
}

// CostumeHandler serves the costume listing endpoints.
type CostumeHandler struct {
	Listing ListingService
	Query   QueryService
	Reserve ReservationService
}

// NewCostumeHandler wires a CostumeHandler.
func NewCostumeHandler(listing ListingService, query QueryService, reserve ReservationService) *CostumeHandler {
	return &CostumeHandler{Listing: listing, Query: query, Reserve: reserve}
}

// List returns every costume, or only those matching ?search= when given.
func (h *CostumeHandler) List(c echo.Context) error {
	return h.search(c, c.QueryParam("search"))
}

// Search filters costumes by ?q=.  A blank term lists everything.
func (h *CostumeHandler) Search(c echo.Context) error {
	return h.search(c, c.QueryParam("q"))
}

func (h *CostumeHandler) search(c echo.Context, term string) error {
	out, err := h.Query.Search(c.Request().Context(), term)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toCostumes(out)})
}

// Get returns one costume.
func (h *CostumeHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid costume id")
	}
	out, err := h.Listing.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toCostume(out)})
}

// Create lists a new costume for the caller.
func (h *CostumeHandler) Create(c echo.Context) error {
	var req createCostumeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.Listing.Create(c.Request().Context(), principal(c), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Costume created successfully", "data": toCostume(out)})
}

// Update applies a partial update.  PUT and PATCH behave the same: only
// fields present in the body change.
func (h *CostumeHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid costume id")
	}
	var req patchCostumeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.Listing.Update(c.Request().Context(), id, principal(c), req.patch())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Costume updated successfully", "data": toCostume(out)})
}

// Delete removes a costume owned by the caller.
func (h *CostumeHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid costume id")
	}
	if err := h.Listing.Delete(c.Request().Context(), id, principal(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Costume deleted successfully"})
}

// BySeller lists the caller's own costumes.
func (h *CostumeHandler) BySeller(c echo.Context) error {
	sellerID, ok := pathID(c, "sellerId")
	if !ok {
		return badRequest(c, "invalid seller id")
	}
	out, err := h.Query.ListBySeller(c.Request().Context(), sellerID, principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toCostumes(out)})
}

// MarkReserved flags a costume as reserved without creating a reservation.
func (h *CostumeHandler) MarkReserved(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid costume id")
	}
	out, err := h.Reserve.MarkReserved(c.Request().Context(), id, principal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Costume reserved successfully", "data": toCostume(out)})
}
