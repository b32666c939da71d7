package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/costumerent/costume-market/internal/model"
)

var costumeCols = []string{"id", "description", "price", "image_url", "seller_id", "is_reserved", "created_at", "updated_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func costumeRow(id int64, desc, price string, seller int64, reserved bool, created time.Time) []driver.Value {
	return []driver.Value{id, desc, price, "http://img/" + desc, seller, reserved, created, created}
}

func TestCostumeRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCostumeRepo(db)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO costumes (description, price, image_url, seller_id, is_reserved)")).
		WithArgs("Pirate suit", decimal.RequireFromString("25.00"), "http://img/pirate", uint64(42), false).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM costumes WHERE id = ?")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(costumeCols).AddRow(int64(7), "Pirate suit", "25.00", "http://img/pirate", int64(42), false, now, now))

	c := &model.Costume{
		Description: "Pirate suit",
		Price:       decimal.RequireFromString("25.00"),
		ImageURL:    "http://img/pirate",
		SellerID:    42,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	require.Equal(t, uint64(7), c.ID)
	require.Equal(t, "25.00", c.Price.StringFixed(2))
	require.False(t, c.IsReserved)
	require.Equal(t, now, c.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCostumeRepo_Create_InsertError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCostumeRepo(db)

	mock.ExpectExec("INSERT INTO costumes").WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &model.Costume{Description: "x", ImageURL: "y", SellerID: 1})
	require.EqualError(t, err, "db down")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCostumeRepo_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMock(t)
		now := time.Now().UTC()
		mock.ExpectQuery("FROM costumes WHERE id = ?").WithArgs(uint64(3)).
			WillReturnRows(sqlmock.NewRows(costumeCols).AddRow(costumeRow(3, "witch", "12.50", 9, true, now)...))

		c, err := NewCostumeRepo(db).GetByID(context.Background(), 3)
		require.NoError(t, err)
		require.Equal(t, uint64(9), c.SellerID)
		require.True(t, c.IsReserved)
		require.True(t, decimal.RequireFromString("12.5").Equal(c.Price))
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("FROM costumes WHERE id = ?").WithArgs(uint64(3)).WillReturnRows(sqlmock.NewRows(costumeCols))

		_, err := NewCostumeRepo(db).GetByID(context.Background(), 3)
		require.ErrorIs(t, err, ErrCostumeNotFound)
	})
}

func TestCostumeRepo_ListAll_OrdersNewestFirst(t *testing.T) {
	db, mock := newMock(t)
	t1 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM costumes ORDER BY created_at DESC, id DESC")).
		WillReturnRows(sqlmock.NewRows(costumeCols).
			AddRow(costumeRow(2, "new", "1.00", 1, false, t1)...).
			AddRow(costumeRow(1, "old", "1.00", 1, false, t0)...))

	got, err := NewCostumeRepo(db).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, uint64(2), got[0].ID)
	require.Equal(t, uint64(1), got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCostumeRepo_ListAll_Empty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM costumes").WillReturnRows(sqlmock.NewRows(costumeCols))

	got, err := NewCostumeRepo(db).ListAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestCostumeRepo_Search_EscapesWildcards(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(description) LIKE ?")).
		WithArgs(`%100\%\_pirate%`).
		WillReturnRows(sqlmock.NewRows(costumeCols))

	_, err := NewCostumeRepo(db).Search(context.Background(), "100%_PIRATE")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCostumeRepo_ListBySeller(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE seller_id = ?")).WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows(costumeCols).AddRow(costumeRow(5, "cape", "3.00", 42, false, time.Now())...))

	got, err := NewCostumeRepo(db).ListBySeller(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, uint64(42), got[0].SellerID)
}

func TestCostumeRepo_Update(t *testing.T) {
	t.Run("writes mutable columns and reloads", func(t *testing.T) {
		db, mock := newMock(t)
		now := time.Now().UTC()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE costumes")).
			WithArgs("Pirate suit", decimal.RequireFromString("30"), "http://img/p", true, uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM costumes WHERE id = ?").WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows(costumeCols).AddRow(int64(7), "Pirate suit", "30.00", "http://img/p", int64(42), true, now, now))

		c := &model.Costume{ID: 7, Description: "Pirate suit", Price: decimal.RequireFromString("30"), ImageURL: "http://img/p", SellerID: 42, IsReserved: true}
		require.NoError(t, NewCostumeRepo(db).Update(context.Background(), c))
		require.Equal(t, "30.00", c.Price.StringFixed(2))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec("UPDATE costumes").WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewCostumeRepo(db).Update(context.Background(), &model.Costume{ID: 7})
		require.ErrorIs(t, err, ErrCostumeNotFound)
	})
}

func TestCostumeRepo_SetReserved(t *testing.T) {
	t.Run("sets flag", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE costumes SET is_reserved = ?")).
			WithArgs(true, uint64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("FROM costumes WHERE id = ?").WithArgs(uint64(7)).
			WillReturnRows(sqlmock.NewRows(costumeCols).AddRow(costumeRow(7, "x", "1.00", 1, true, time.Now())...))

		c, err := NewCostumeRepo(db).SetReserved(context.Background(), 7, true)
		require.NoError(t, err)
		require.True(t, c.IsReserved)
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec("UPDATE costumes SET is_reserved").WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := NewCostumeRepo(db).SetReserved(context.Background(), 7, true)
		require.ErrorIs(t, err, ErrCostumeNotFound)
	})
}

func TestCostumeRepo_Delete_IsIdempotent(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM costumes WHERE id = ?")).WithArgs(uint64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM costumes WHERE id = ?")).WithArgs(uint64(7)).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewCostumeRepo(db)
	require.NoError(t, repo.Delete(context.Background(), 7))
	require.NoError(t, repo.Delete(context.Background(), 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `a\\b\%c\_d`, escapeLike(`a\b%c_d`))
	require.Equal(t, "plain", escapeLike("plain"))
}
