package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/costumerent/costume-market/internal/blob"
	"github.com/costumerent/costume-market/internal/model"
	"github.com/costumerent/costume-market/internal/queue"
	"github.com/costumerent/costume-market/internal/repository"
)

// fakeCostumes is an in-memory CostumeStore.  Values are copied in and out
// so callers cannot mutate stored rows.
type fakeCostumes struct {
	mu     sync.Mutex
	rows   map[uint64]model.Costume
	nextID uint64
	clock  time.Time
	err    error // returned by every call when set
}

func newFakeCostumes() *fakeCostumes {
	return &fakeCostumes{rows: map[uint64]model.Costume{}, clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeCostumes) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeCostumes) Create(_ context.Context, c *model.Costume) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = f.tick()
	c.UpdatedAt = c.CreatedAt
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCostumes) GetByID(_ context.Context, id uint64) (*model.Costume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrCostumeNotFound
	}
	return &c, nil
}

func (f *fakeCostumes) filter(keep func(model.Costume) bool) []*model.Costume {
	out := make([]*model.Costume, 0)
	for _, c := range f.rows {
		if keep(c) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (f *fakeCostumes) ListAll(context.Context) ([]*model.Costume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(func(model.Costume) bool { return true }), nil
}

func (f *fakeCostumes) ListBySeller(_ context.Context, sellerID uint64) ([]*model.Costume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(func(c model.Costume) bool { return c.SellerID == sellerID }), nil
}

func (f *fakeCostumes) Search(_ context.Context, term string) ([]*model.Costume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	term = strings.ToLower(term)
	return f.filter(func(c model.Costume) bool { return strings.Contains(strings.ToLower(c.Description), term) }), nil
}

func (f *fakeCostumes) Update(_ context.Context, c *model.Costume) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	old, ok := f.rows[c.ID]
	if !ok {
		return repository.ErrCostumeNotFound
	}
	c.SellerID = old.SellerID
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = f.tick()
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCostumes) SetReserved(_ context.Context, id uint64, reserved bool) (*model.Costume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrCostumeNotFound
	}
	c.IsReserved = reserved
	c.UpdatedAt = f.tick()
	f.rows[id] = c
	return &c, nil
}

func (f *fakeCostumes) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.rows, id)
	return nil
}

// fakeReservations shares the costume fake so that inserting a reservation
// and flagging its costume happen under one lock, like the row lock the
// MySQL implementation takes.
type fakeReservations struct {
	costumes *fakeCostumes
	rows     []model.Reservation
	err      error
}

func (f *fakeReservations) CreateReserving(_ context.Context, res *model.Reservation, opts repository.ReserveOptions) error {
	f.costumes.mu.Lock()
	defer f.costumes.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	c, ok := f.costumes.rows[res.CostumeID]
	if !ok {
		return repository.ErrCostumeNotFound
	}
	if opts.RejectOverlap {
		for _, r := range f.rows {
			if r.CostumeID == res.CostumeID && r.Overlaps(res.StartDate, res.EndDate) {
				return repository.ErrConflict
			}
		}
	}
	res.ID = uint64(len(f.rows) + 1)
	res.CreatedAt = f.costumes.tick()
	res.UpdatedAt = res.CreatedAt
	f.rows = append(f.rows, *res)
	c.IsReserved = true
	f.costumes.rows[c.ID] = c
	return nil
}

func (f *fakeReservations) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	f.costumes.mu.Lock()
	defer f.costumes.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, repository.ErrReservationNotFound
}

func (f *fakeReservations) ListBySeller(_ context.Context, sellerID uint64) ([]*model.Reservation, error) {
	f.costumes.mu.Lock()
	defer f.costumes.mu.Unlock()
	out := make([]*model.Reservation, 0)
	for i := len(f.rows) - 1; i >= 0; i-- {
		if r := f.rows[i]; r.SellerID == sellerID {
			out = append(out, &r)
		}
	}
	return out, nil
}

func (f *fakeReservations) count() int {
	f.costumes.mu.Lock()
	defer f.costumes.mu.Unlock()
	return len(f.rows)
}

// fakeBlobs accepts any non-empty body unless err is set.
type fakeBlobs struct {
	mu      sync.Mutex
	stored  map[string]bool
	removed []string
	err     error
	n       int
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{stored: map[string]bool{}} }

func (f *fakeBlobs) Store(_ context.Context, obj blob.Object, p blob.Policy) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", blob.ErrEmpty
	}
	f.n++
	ref := fmt.Sprintf("%s/doc%d.pdf", p.Dir, f.n)
	f.stored[ref] = true
	return ref, nil
}

func (f *fakeBlobs) Remove(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, ref)
	f.removed = append(f.removed, ref)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.ReservationCreatedEvent
	err    error
}

func (f *fakePublisher) PublishReservationCreated(_ context.Context, ev queue.ReservationCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

var errDB = errors.New("connection refused")
