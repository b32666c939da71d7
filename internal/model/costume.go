package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Costume represents a listing stored in the `costumes` table.  A costume
// belongs to exactly one seller and carries a single availability flag.
//
// Fields:
//  ID          – primary key identifier.
//  Description – free text shown to renters (non-empty).
//  Price       – rental price, DECIMAL(10,2), never negative.
//  ImageURL    – public URL of the listing picture.
//  SellerID    – user who owns the listing; immutable after creation.
//  IsReserved  – availability flag, set by reservations or by the seller.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Costume struct {
	ID          uint64          // costumes.id
	Description string          // costumes.description
	Price       decimal.Decimal // costumes.price
	ImageURL    string          // costumes.image_url
	SellerID    uint64          // costumes.seller_id
	IsReserved  bool            // costumes.is_reserved
	CreatedAt   time.Time       // costumes.created_at
	UpdatedAt   time.Time       // costumes.updated_at
}

// CostumePatch describes a partial update.  Only fields whose Optional is
// Set are applied; everything else keeps its stored value.
type CostumePatch struct {
	Description Optional[string]
	Price       Optional[decimal.Decimal]
	ImageURL    Optional[string]
	IsReserved  Optional[bool]
}

// Empty reports whether the patch carries no field at all.
func (p CostumePatch) Empty() bool {
	return !p.Description.Set && !p.Price.Set && !p.ImageURL.Set && !p.IsReserved.Set
}
