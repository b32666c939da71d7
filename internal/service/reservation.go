package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/costumerent/costume-market/internal/blob"
	"github.com/costumerent/costume-market/internal/model"
	"github.com/costumerent/costume-market/internal/queue"
	"github.com/costumerent/costume-market/internal/repository"
)

const (
	minPhoneLen    = 8
	maxPhoneLen    = 32
	publishTimeout = 3 * time.Second
)

// ReserveInput is a reservation request as received from the client.
// Dates are YYYY-MM-DD strings; Document is the identity document upload.
type ReserveInput struct {
	CostumeID   uint64
	ClientPhone string
	StartDate   string
	EndDate     string
	Document    *blob.Object
}

// ReservationOptions configures the reservation engine.
type ReservationOptions struct {
	RejectOverlap bool
	IDDocMaxBytes int64
}

// ReservationService creates reservations and keeps the costume
// availability flag in step with them.
type ReservationService struct {
	costumes     CostumeStore
	reservations ReservationStore
	blobs        BlobStore
	events       EventPublisher
	opts         ReservationOptions
	log          *zap.Logger
}

// NewReservationService wires the reservation engine.
func NewReservationService(costumes CostumeStore, reservations ReservationStore, blobs BlobStore, events EventPublisher, opts ReservationOptions, log *zap.Logger) *ReservationService {
	return &ReservationService{
		costumes:     costumes,
		reservations: reservations,
		blobs:        blobs,
		events:       events,
		opts:         opts,
		log:          log.Named("reservation"),
	}
}

// Reserve validates in, stores the identity document and records the
// reservation while marking the costume reserved.  A costume that is
// already reserved still accepts reservations unless overlap rejection is
// enabled and the dates intersect.  Nothing is written when validation
// fails; a stored document is removed again if the reservation is not
// committed.
func (s *ReservationService) Reserve(ctx context.Context, p model.Principal, in ReserveInput) (*model.Reservation, error) {
	if !p.Authenticated() {
		return nil, ErrForbidden
	}
	res, err := validReservation(in)
	if err != nil {
		return nil, err
	}
	res.SellerID = p.UserID

	if _, err := s.costumes.GetByID(ctx, res.CostumeID); err != nil {
		return nil, s.fail("get costume", err)
	}

	ref, err := s.blobs.Store(ctx, *in.Document, blob.IDDocuments(s.opts.IDDocMaxBytes))
	if err != nil {
		return nil, s.documentErr(err)
	}
	res.IDDocumentRef = ref

	if err := s.reservations.CreateReserving(ctx, res, repository.ReserveOptions{RejectOverlap: s.opts.RejectOverlap}); err != nil {
		if rmErr := s.blobs.Remove(context.WithoutCancel(ctx), ref); rmErr != nil {
			s.log.Warn("remove orphaned document", zap.String("ref", ref), zap.Error(rmErr))
		}
		return nil, s.fail("create reservation", err)
	}

	s.publish(ctx, res)
	return res, nil
}

// MarkReserved sets the availability flag of costumeID.  Any
// authenticated user may do so; ownership is not checked.
func (s *ReservationService) MarkReserved(ctx context.Context, costumeID uint64, p model.Principal) (*model.Costume, error) {
	if !p.Authenticated() {
		return nil, ErrForbidden
	}
	c, err := s.costumes.SetReserved(ctx, costumeID, true)
	if err != nil {
		return nil, s.fail("mark reserved", err)
	}
	return c, nil
}

// Get returns reservation id if p registered it.
func (s *ReservationService) Get(ctx context.Context, id uint64, p model.Principal) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get reservation", err)
	}
	if err := authorize(p, res.SellerID); err != nil {
		return nil, err
	}
	return res, nil
}

// ListMine returns the reservations registered by p, newest first.
func (s *ReservationService) ListMine(ctx context.Context, p model.Principal) ([]*model.Reservation, error) {
	if !p.Authenticated() {
		return nil, ErrForbidden
	}
	out, err := s.reservations.ListBySeller(ctx, p.UserID)
	if err != nil {
		return nil, s.fail("list reservations", err)
	}
	return out, nil
}

func (s *ReservationService) publish(ctx context.Context, res *model.Reservation) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := s.events.PublishReservationCreated(ctx, queue.ReservationCreatedEvent{
		ReservationID: res.ID,
		CostumeID:     res.CostumeID,
		SellerID:      res.SellerID,
		ClientPhone:   res.ClientPhone,
		StartDate:     res.StartDate.Format(model.DateLayout),
		EndDate:       res.EndDate.Format(model.DateLayout),
		CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.log.Warn("reservation event not published", zap.Uint64("reservation_id", res.ID), zap.Error(err))
	}
}

func (s *ReservationService) documentErr(err error) error {
	switch {
	case errors.Is(err, blob.ErrEmpty):
		return &ValidationError{Field: "id_document", Msg: "is required", Err: err}
	case errors.Is(err, blob.ErrTooLarge):
		return &ValidationError{Field: "id_document", Msg: "file is too large", Err: err}
	case errors.Is(err, blob.ErrUnsupportedMedia):
		return &ValidationError{Field: "id_document", Msg: "must be a jpeg, png or pdf file", Err: err}
	}
	return s.fail("store document", err)
}

func (s *ReservationService) fail(op string, err error) error {
	err = storeErr(err)
	logPersistence(s.log, op, err)
	return err
}

func validReservation(in ReserveInput) (*model.Reservation, error) {
	if in.CostumeID == 0 {
		return nil, invalid("costume_id", "is required")
	}
	phone := strings.TrimSpace(in.ClientPhone)
	if len(phone) < minPhoneLen {
		return nil, invalid("client_phone", "must be at least 8 characters")
	}
	if utf8.RuneCountInString(phone) > maxPhoneLen {
		return nil, invalid("client_phone", "must be at most 32 characters")
	}
	start, err := parseDate(in.StartDate)
	if err != nil {
		return nil, &ValidationError{Field: "start_date", Msg: "must be a date in YYYY-MM-DD format", Err: err}
	}
	end, err := parseDate(in.EndDate)
	if err != nil {
		return nil, &ValidationError{Field: "end_date", Msg: "must be a date in YYYY-MM-DD format", Err: err}
	}
	if end.Before(start) {
		return nil, invalid("end_date", "must not be before start_date")
	}
	if in.Document == nil || in.Document.Body == nil {
		return nil, invalid("id_document", "is required")
	}
	return &model.Reservation{
		CostumeID:   in.CostumeID,
		ClientPhone: phone,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

func parseDate(v string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, strings.TrimSpace(v), time.UTC)
}
