package service

import (
	"context"

	"github.com/costumerent/costume-market/internal/blob"
	"github.com/costumerent/costume-market/internal/model"
	"github.com/costumerent/costume-market/internal/queue"
	"github.com/costumerent/costume-market/internal/repository"
)

// CostumeStore is the persistence the listing and query services need.
// *repository.CostumeRepo implements it.
type CostumeStore interface {
	Create(ctx context.Context, c *model.Costume) error
	GetByID(ctx context.Context, id uint64) (*model.Costume, error)
	ListAll(ctx context.Context) ([]*model.Costume, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]*model.Costume, error)
	Search(ctx context.Context, term string) ([]*model.Costume, error)
	Update(ctx context.Context, c *model.Costume) error
	SetReserved(ctx context.Context, id uint64, reserved bool) (*model.Costume, error)
	Delete(ctx context.Context, id uint64) error
}

// ReservationStore persists reservations.  CreateReserving must insert the
// reservation and set the costume flag atomically.
type ReservationStore interface {
	CreateReserving(ctx context.Context, res *model.Reservation, opts repository.ReserveOptions) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]*model.Reservation, error)
}

// BlobStore keeps uploaded documents.
type BlobStore interface {
	Store(ctx context.Context, obj blob.Object, p blob.Policy) (string, error)
	Remove(ctx context.Context, ref string) error
}

// EventPublisher announces committed reservations.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

var (
	_ CostumeStore     = (*repository.CostumeRepo)(nil)
	_ ReservationStore = (*repository.ReservationRepo)(nil)
	_ BlobStore        = (*blob.Local)(nil)
	_ EventPublisher   = (*queue.Publisher)(nil)
	_ EventPublisher   = queue.Discard{}
)
