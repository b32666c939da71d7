package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/costumerent/costume-market/internal/model"
)

// CostumeRepo encapsulates all database queries related to costumes.  It
// depends on a sql.DB connection which should be configured elsewhere.
// Ownership is not enforced here; callers decide who may mutate a row.
type CostumeRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCostumeRepo constructs a CostumeRepo with the provided DB handle.
func NewCostumeRepo(db *sql.DB) *CostumeRepo {
	return &CostumeRepo{db: db}
}

const costumeColumns = `id, description, price, image_url, seller_id, is_reserved, created_at, updated_at`

// newest first; id breaks ties between rows created in the same microsecond
const costumeOrder = ` ORDER BY created_at DESC, id DESC`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCostume(row rowScanner) (*model.Costume, error) {
	c := new(model.Costume)
	if err := row.Scan(&c.ID, &c.Description, &c.Price, &c.ImageURL, &c.SellerID, &c.IsReserved, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new costume.  On success the costume's ID and timestamps
// are populated from the stored row so callers receive a complete record.
func (r *CostumeRepo) Create(ctx context.Context, c *model.Costume) error {
	const q = `INSERT INTO costumes (description, price, image_url, seller_id, is_reserved) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Description, c.Price, c.ImageURL, c.SellerID, c.IsReserved)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

// GetByID fetches a costume by its ID.  It returns ErrCostumeNotFound if
// no row is found.
func (r *CostumeRepo) GetByID(ctx context.Context, id uint64) (*model.Costume, error) {
	const q = `SELECT ` + costumeColumns + ` FROM costumes WHERE id = ?`
	c, err := scanCostume(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCostumeNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListAll returns every costume, most recently created first.
func (r *CostumeRepo) ListAll(ctx context.Context) ([]*model.Costume, error) {
	return r.list(ctx, `SELECT `+costumeColumns+` FROM costumes`+costumeOrder)
}

// ListBySeller returns the costumes owned by sellerID, newest first.
func (r *CostumeRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]*model.Costume, error) {
	return r.list(ctx, `SELECT `+costumeColumns+` FROM costumes WHERE seller_id = ?`+costumeOrder, sellerID)
}

// Search returns costumes whose description contains term, ignoring case.
// LIKE wildcards in term are escaped so they match literally.
func (r *CostumeRepo) Search(ctx context.Context, term string) ([]*model.Costume, error) {
	const q = `SELECT ` + costumeColumns + ` FROM costumes WHERE LOWER(description) LIKE ? ESCAPE '\\'` + costumeOrder
	return r.list(ctx, q, "%"+escapeLike(strings.ToLower(term))+"%")
}

func (r *CostumeRepo) list(ctx context.Context, q string, args ...any) ([]*model.Costume, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Costume, 0)
	for rows.Next() {
		c, err := scanCostume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the mutable columns of c and refreshes c from the stored
// row.  seller_id is never written.  ErrCostumeNotFound is returned when
// the row no longer exists.
func (r *CostumeRepo) Update(ctx context.Context, c *model.Costume) error {
	const q = `UPDATE costumes
	           SET description = ?, price = ?, image_url = ?, is_reserved = ?, updated_at = CURRENT_TIMESTAMP(6)
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Description, c.Price, c.ImageURL, c.IsReserved, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCostumeNotFound
	}
	stored, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

// SetReserved sets the availability flag unconditionally and returns the
// refreshed row.
func (r *CostumeRepo) SetReserved(ctx context.Context, id uint64, reserved bool) (*model.Costume, error) {
	const q = `UPDATE costumes SET is_reserved = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, reserved, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrCostumeNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a costume.  Deleting a row that is already gone is not an
// error.  Reservations referencing it are removed by the FK cascade.
func (r *CostumeRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM costumes WHERE id = ?`, id)
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
