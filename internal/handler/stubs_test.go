package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/costumerent/costume-market/internal/blob"
	"github.com/costumerent/costume-market/internal/middleware"
	"github.com/costumerent/costume-market/internal/model"
	"github.com/costumerent/costume-market/internal/service"
)

var stamp = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func sampleCostume() *model.Costume {
	return &model.Costume{
		ID:          7,
		Description: "Pirate suit",
		Price:       decimal.RequireFromString("25"),
		ImageURL:    "http://img/pirate.png",
		SellerID:    42,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
}

type stubListing struct {
	createFn func(p model.Principal, in service.CreateCostumeInput) (*model.Costume, error)
	updateFn func(id uint64, p model.Principal, patch model.CostumePatch) (*model.Costume, error)
	deleteFn func(id uint64, p model.Principal) error
	getFn    func(id uint64) (*model.Costume, error)
}

func (s *stubListing) Create(_ context.Context, p model.Principal, in service.CreateCostumeInput) (*model.Costume, error) {
	return s.createFn(p, in)
}

func (s *stubListing) Update(_ context.Context, id uint64, p model.Principal, patch model.CostumePatch) (*model.Costume, error) {
	return s.updateFn(id, p, patch)
}

func (s *stubListing) Delete(_ context.Context, id uint64, p model.Principal) error {
	return s.deleteFn(id, p)
}

func (s *stubListing) Get(_ context.Context, id uint64) (*model.Costume, error) {
	return s.getFn(id)
}

type stubQuery struct {
	searchTerm string
	searchFn   func(term string) ([]*model.Costume, error)
	sellerFn   func(sellerID uint64, p model.Principal) ([]*model.Costume, error)
}

func (s *stubQuery) Search(_ context.Context, term string) ([]*model.Costume, error) {
	s.searchTerm = term
	return s.searchFn(term)
}

func (s *stubQuery) ListBySeller(_ context.Context, sellerID uint64, p model.Principal) ([]*model.Costume, error) {
	return s.sellerFn(sellerID, p)
}

type stubReservations struct {
	reserveIn  service.ReserveInput
	reserveDoc []byte
	reserveFn  func(p model.Principal, in service.ReserveInput) (*model.Reservation, error)
	markFn     func(id uint64, p model.Principal) (*model.Costume, error)
	getFn      func(id uint64, p model.Principal) (*model.Reservation, error)
	mineFn     func(p model.Principal) ([]*model.Reservation, error)
}

func (s *stubReservations) Reserve(_ context.Context, p model.Principal, in service.ReserveInput) (*model.Reservation, error) {
	s.reserveIn = in
	if in.Document != nil {
		s.reserveDoc, _ = io.ReadAll(in.Document.Body)
	}
	return s.reserveFn(p, in)
}

func (s *stubReservations) MarkReserved(_ context.Context, id uint64, p model.Principal) (*model.Costume, error) {
	return s.markFn(id, p)
}

func (s *stubReservations) Get(_ context.Context, id uint64, p model.Principal) (*model.Reservation, error) {
	return s.getFn(id, p)
}

func (s *stubReservations) ListMine(_ context.Context, p model.Principal) ([]*model.Reservation, error) {
	return s.mineFn(p)
}

type stubImages struct {
	policy blob.Policy
	err    error
}

func (s *stubImages) Store(_ context.Context, obj blob.Object, p blob.Policy) (string, error) {
	s.policy = p
	if s.err != nil {
		return "", s.err
	}
	_, _ = io.ReadAll(obj.Body)
	return "costumes/abc.png", nil
}

func (s *stubImages) URL(ref string) string { return "http://localhost/uploads/" + ref }

// call runs h for a request routed through path with an optional caller.
func call(method, route, target string, body io.Reader, contentType string, userID uint64, h echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	e.Validator = NewValidator()
	withUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != 0 {
				c.Set(middleware.UserIDKey, userID)
			}
			return next(c)
		}
	}
	e.Add(method, route, h, withUser)

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func callJSON(method, route, target, body string, userID uint64, h echo.HandlerFunc) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return call(method, route, target, r, echo.MIMEApplicationJSON, userID, h)
}
