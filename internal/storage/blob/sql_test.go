package blob

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_Contract(t *testing.T) {
	s, err := NewSQLiteStorage(context.Background(), filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStorage(t, s)
}

func TestSQLiteStorage_RevisionIncrements(t *testing.T) {
	s, err := NewSQLiteStorage(context.Background(), filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	require.NoError(t, s.WriteText(ctx, "roles.json", "[]"))
	require.NoError(t, s.WriteText(ctx, "roles.json", "[]"))
	require.NoError(t, s.WriteText(ctx, "roles.json", "[]"))

	var rev int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT revision FROM identity_blobs WHERE key = ?`, "roles.json").Scan(&rev))
	assert.Equal(t, 3, rev)
}

func TestSQLiteStorage_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.db")
	ctx := context.Background()

	s, err := NewSQLiteStorage(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.WriteText(ctx, "users.json", `[{"id":"a"}]`))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStorage(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	text, err := s.ReadText(ctx, "users.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, text)
}

func newPostgresMock(t *testing.T) (*SQLStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStorageWithDB(db), mock
}

func TestPostgresStorage_ReadText(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(postgresDialect.read).
		WithArgs("users.json").
		WillReturnRows(sqlmock.NewRows([]string{"content"}).AddRow(`[]`))

	text, err := s.ReadText(context.Background(), "users.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_ReadText_NotFound(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(postgresDialect.read).
		WithArgs("ghost.json").
		WillReturnError(sql.ErrNoRows)

	_, err := s.ReadText(context.Background(), "ghost.json")
	require.ErrorIs(t, err, ErrBlobNotFound)
}

func TestPostgresStorage_ReadText_DBError(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(postgresDialect.read).
		WithArgs("users.json").
		WillReturnError(errors.New("db down"))

	_, err := s.ReadText(context.Background(), "users.json")
	require.ErrorContains(t, err, "db error: db down")
}

func TestPostgresStorage_WriteText(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectExec(postgresDialect.upsert).
		WithArgs("users.json", `[{"id":"1"}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.WriteText(context.Background(), "users.json", `[{"id":"1"}]`))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_WriteTexts_Transactional(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(postgresDialect.upsert).
		WithArgs("users.json", "[]").
		WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := s.WriteTexts(context.Background(), map[string]string{"users.json": "[]"})
	require.ErrorContains(t, err, "constraint")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_WriteTexts_Commit(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(postgresDialect.upsert).
		WithArgs("roles.json", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, WriteAll(context.Background(), s, map[string]string{"roles.json": "[]"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_DeleteAndExists(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectExec(postgresDialect.remove).
		WithArgs("users.json").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(postgresDialect.count).
		WithArgs("users.json").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ctx := context.Background()
	require.NoError(t, s.Delete(ctx, "users.json"))
	ok, err := s.Exists(ctx, "users.json")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_CloseDoesNotCloseBorrowedDB(t *testing.T) {
	s, mock := newPostgresMock(t)
	require.NoError(t, s.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UsesGooseSeam(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, runMigrations(context.Background(), nil, postgresDialect))
	assert.Equal(t, "postgres", gotDir)

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	err := runMigrations(context.Background(), nil, sqliteDialect)
	require.ErrorContains(t, err, "migrations (sqlite): boom")
}
