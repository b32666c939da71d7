package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/costumerent/costume-market/internal/model"
)

// ReservationRepo provides persistence for reservations.  Reservations are
// inserted together with the availability flag of their costume inside one
// transaction; they are never updated afterwards.  Dates are stored as
// DATE columns and read back as UTC midnights.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReserveOptions tunes CreateReserving.
type ReserveOptions struct {
	// RejectOverlap fails with ErrConflict when the new range intersects an
	// existing reservation of the same costume.
	RejectOverlap bool
}

const reservationColumns = `id, costume_id, client_phone, id_document_ref, start_date, end_date, seller_id, created_at, updated_at`

func scanReservation(row rowScanner) (*model.Reservation, error) {
	res := new(model.Reservation)
	if err := row.Scan(
		&res.ID, &res.CostumeID, &res.ClientPhone, &res.IDDocumentRef,
		&res.StartDate, &res.EndDate, &res.SellerID, &res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return res, nil
}

// CreateReserving inserts res and marks its costume reserved as a single
// unit.  The costume row is locked with SELECT ... FOR UPDATE first, so
// concurrent reservations of the same costume run one after another and
// the overlap check (when enabled) sees every committed reservation.
// ErrCostumeNotFound is returned when the costume does not exist.  On
// success res is refreshed from the stored row.
func (r *ReservationRepo) CreateReserving(ctx context.Context, res *model.Reservation, opts ReserveOptions) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var costumeID uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM costumes WHERE id = ? FOR UPDATE`, res.CostumeID).Scan(&costumeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCostumeNotFound
		}
		return fmt.Errorf("lock costume: %w", err)
	}

	start := res.StartDate.Format(model.DateLayout)
	end := res.EndDate.Format(model.DateLayout)

	if opts.RejectOverlap {
		const overlapQ = `SELECT COUNT(*) FROM reservations WHERE costume_id = ? AND start_date <= ? AND end_date >= ?`
		var n int
		if err := tx.QueryRowContext(ctx, overlapQ, res.CostumeID, end, start).Scan(&n); err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if n > 0 {
			return ErrConflict
		}
	}

	const ins = `INSERT INTO reservations (costume_id, client_phone, id_document_ref, start_date, end_date, seller_id) VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins, res.CostumeID, res.ClientPhone, res.IDDocumentRef, start, end, res.SellerID)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	const flag = `UPDATE costumes SET is_reserved = 1, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?`
	if _, err := tx.ExecContext(ctx, flag, res.CostumeID); err != nil {
		return fmt.Errorf("flag costume: %w", err)
	}

	stored, err := scanReservation(tx.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
	if err != nil {
		return fmt.Errorf("reload reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*res = *stored
	return nil
}

// GetByID returns a single reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// ListBySeller returns every reservation registered by sellerID, newest
// first.  When none exist an empty slice is returned.
func (r *ReservationRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE seller_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
