package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/costumerent/costume-market/internal/model"
)

// maxPrice is the first value that no longer fits DECIMAL(10,2).
var maxPrice = decimal.New(1, 8)

// Column widths of costumes.description and costumes.image_url.
const (
	maxDescriptionLen = 255
	maxImageURLLen    = 512
)

// CreateCostumeInput carries the fields of a new listing.  SellerID may be
// left zero, in which case the listing belongs to the caller.
type CreateCostumeInput struct {
	Description string
	Price       model.Optional[decimal.Decimal]
	ImageURL    string
	SellerID    uint64
}

// ListingService owns costume listings and their availability flag.
type ListingService struct {
	costumes CostumeStore
	log      *zap.Logger
}

// NewListingService returns a ListingService backed by costumes.
func NewListingService(costumes CostumeStore, log *zap.Logger) *ListingService {
	return &ListingService{costumes: costumes, log: log.Named("listing")}
}

// Create validates in and stores a new, unreserved costume owned by p.
func (s *ListingService) Create(ctx context.Context, p model.Principal, in CreateCostumeInput) (*model.Costume, error) {
	desc, err := validDescription(in.Description)
	if err != nil {
		return nil, err
	}
	if !in.Price.Set || in.Price.Null {
		return nil, invalid("price", "is required")
	}
	price, err := validPrice(in.Price.Value)
	if err != nil {
		return nil, err
	}
	img, err := validImageURL(in.ImageURL)
	if err != nil {
		return nil, err
	}

	seller := in.SellerID
	if seller == 0 {
		seller = p.UserID
	}
	if seller == 0 {
		return nil, invalid("seller_id", "is required")
	}
	if err := authorize(p, seller); err != nil {
		return nil, err
	}

	c := &model.Costume{Description: desc, Price: price, ImageURL: img, SellerID: seller}
	if err := s.costumes.Create(ctx, c); err != nil {
		return nil, s.fail("create costume", err)
	}
	return c, nil
}

// Update applies the present fields of patch to costume id.  Only the
// owner may update; the seller of a listing never changes.
func (s *ListingService) Update(ctx context.Context, id uint64, p model.Principal, patch model.CostumePatch) (*model.Costume, error) {
	c, err := s.owned(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, invalid("", "no fields to update")
	}

	if f := patch.Description; f.Set {
		if f.Null {
			return nil, invalid("description", "cannot be null")
		}
		if c.Description, err = validDescription(f.Value); err != nil {
			return nil, err
		}
	}
	if f := patch.Price; f.Set {
		if f.Null {
			return nil, invalid("price", "cannot be null")
		}
		if c.Price, err = validPrice(f.Value); err != nil {
			return nil, err
		}
	}
	if f := patch.ImageURL; f.Set {
		if f.Null {
			return nil, invalid("image_url", "cannot be null")
		}
		if c.ImageURL, err = validImageURL(f.Value); err != nil {
			return nil, err
		}
	}
	if f := patch.IsReserved; f.Set {
		if f.Null {
			return nil, invalid("is_reserved", "cannot be null")
		}
		c.IsReserved = f.Value
	}

	if err := s.costumes.Update(ctx, c); err != nil {
		return nil, s.fail("update costume", err)
	}
	return c, nil
}

// Delete removes costume id if p owns it.
func (s *ListingService) Delete(ctx context.Context, id uint64, p model.Principal) error {
	if _, err := s.owned(ctx, id, p); err != nil {
		return err
	}
	if err := s.costumes.Delete(ctx, id); err != nil {
		return s.fail("delete costume", err)
	}
	return nil
}

// Get returns a single costume.
func (s *ListingService) Get(ctx context.Context, id uint64) (*model.Costume, error) {
	c, err := s.costumes.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get costume", err)
	}
	return c, nil
}

// List returns every costume, newest first.
func (s *ListingService) List(ctx context.Context) ([]*model.Costume, error) {
	out, err := s.costumes.ListAll(ctx)
	if err != nil {
		return nil, s.fail("list costumes", err)
	}
	return out, nil
}

// SetReserved writes the availability flag without an ownership check.
func (s *ListingService) SetReserved(ctx context.Context, id uint64, value bool) (*model.Costume, error) {
	c, err := s.costumes.SetReserved(ctx, id, value)
	if err != nil {
		return nil, s.fail("set reserved", err)
	}
	return c, nil
}

func (s *ListingService) owned(ctx context.Context, id uint64, p model.Principal) (*model.Costume, error) {
	c, err := s.costumes.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get costume", err)
	}
	if err := authorize(p, c.SellerID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ListingService) fail(op string, err error) error {
	err = storeErr(err)
	logPersistence(s.log, op, err)
	return err
}

func validDescription(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid("description", "is required")
	}
	if utf8.RuneCountInString(v) > maxDescriptionLen {
		return "", invalid("description", "must be at most 255 characters")
	}
	return v, nil
}

func validPrice(v decimal.Decimal) (decimal.Decimal, error) {
	v = v.Round(2)
	if v.IsNegative() {
		return decimal.Decimal{}, invalid("price", "must not be negative")
	}
	if v.GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, invalid("price", "must have at most 8 integer digits")
	}
	return v, nil
}

func validImageURL(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid("image_url", "is required")
	}
	if utf8.RuneCountInString(v) > maxImageURLLen {
		return "", invalid("image_url", "must be at most 512 characters")
	}
	return v, nil
}
