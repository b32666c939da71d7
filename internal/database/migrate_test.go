package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	script := `
-- leading comment
CREATE TABLE a (id INT);

  -- another
CREATE TABLE b (
    id INT -- trailing text is kept
);
;
`
	stmts := Statements(script)
	require.Len(t, stmts, 2)
	require.Equal(t, "CREATE TABLE a (id INT)", stmts[0])
	require.Contains(t, stmts[1], "CREATE TABLE b")
}

func TestStatements_EmbeddedSchema(t *testing.T) {
	stmts := Statements(schema)
	require.Len(t, stmts, 4)
	require.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS users")
	require.Contains(t, stmts[3], "CREATE TABLE IF NOT EXISTS reservations")
}

func TestMigrate(t *testing.T) {
	t.Run("applies every statement", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		for range Statements(schema) {
			mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS")).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		require.NoError(t, Migrate(context.Background(), db))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops on first failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("boom"))

		err = Migrate(context.Background(), db)
		require.Error(t, err)
		require.Contains(t, err.Error(), "migrate statement 1")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDSN(t *testing.T) {
	require.Equal(t, "app@tcp(db:3306)/costumes?charset=utf8mb4&parseTime=true&loc=UTC", DSN("app", "", "db", "3306", "costumes"))
	require.Equal(t, "app:pw@tcp(db:3306)/costumes?charset=utf8mb4&parseTime=true&loc=UTC", DSN("app", "pw", "db", "3306", "costumes"))
}
