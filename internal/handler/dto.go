package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/costumerent/costume-market/internal/model"
	"github.com/costumerent/costume-market/internal/service"
)

type costumeDTO struct {
	ID          uint64    `json:"id"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	ImageURL    string    `json:"image_url"`
	SellerID    uint64    `json:"seller_id"`
	IsReserved  bool      `json:"is_reserved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCostume(c *model.Costume) costumeDTO {
	return costumeDTO{
		ID:          c.ID,
		Description: c.Description,
		Price:       c.Price.StringFixed(2),
		ImageURL:    c.ImageURL,
		SellerID:    c.SellerID,
		IsReserved:  c.IsReserved,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCostumes(in []*model.Costume) []costumeDTO {
	out := make([]costumeDTO, 0, len(in))
	for _, c := range in {
		out = append(out, toCostume(c))
	}
	return out
}

// reservationDTO omits the identity document reference; documents are
// never served back.
type reservationDTO struct {
	ID          uint64    `json:"id"`
	CostumeID   uint64    `json:"costume_id"`
	ClientPhone string    `json:"client_phone"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	SellerID    uint64    `json:"seller_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toReservation(r *model.Reservation) reservationDTO {
	return reservationDTO{
		ID:          r.ID,
		CostumeID:   r.CostumeID,
		ClientPhone: r.ClientPhone,
		StartDate:   r.StartDate.Format(model.DateLayout),
		EndDate:     r.EndDate.Format(model.DateLayout),
		SellerID:    r.SellerID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toReservations(in []*model.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(in))
	for _, r := range in {
		out = append(out, toReservation(r))
	}
	return out
}

// createCostumeReq accepts price as a JSON number or string.  Image and
// seller keys are read in camelCase, with the snake_case spelling used by
// responses accepted as well.
type createCostumeReq struct {
	Description   string                          `json:"description"`
	Price         model.Optional[decimal.Decimal] `json:"price"`
	ImageURL      string                          `json:"imageUrl"`
	SellerID      uint64                          `json:"sellerId"`
	ImageURLSnake string                          `json:"image_url"`
	SellerIDSnake uint64                          `json:"seller_id"`
}

func (r createCostumeReq) input() service.CreateCostumeInput {
	in := service.CreateCostumeInput{
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		SellerID:    r.SellerID,
	}
	if in.ImageURL == "" {
		in.ImageURL = r.ImageURLSnake
	}
	if in.SellerID == 0 {
		in.SellerID = r.SellerIDSnake
	}
	return in
}

type patchCostumeReq struct {
	Description   model.Optional[string]          `json:"description"`
	Price         model.Optional[decimal.Decimal] `json:"price"`
	ImageURL      model.Optional[string]          `json:"imageUrl"`
	IsReserved    model.Optional[bool]            `json:"is_reserved"`
	ImageURLSnake model.Optional[string]          `json:"image_url"`
	IsReservedAlt model.Optional[bool]            `json:"isReserved"`
}

func (r patchCostumeReq) patch() model.CostumePatch {
	return model.CostumePatch{
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    either(r.ImageURL, r.ImageURLSnake),
		IsReserved:  either(r.IsReserved, r.IsReservedAlt),
	}
}

// either prefers the first spelling of a field when a body carries both.
func either[T any](a, b model.Optional[T]) model.Optional[T] {
	if a.Set {
		return a
	}
	return b
}
