package blob

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/identitystore/internal/dbx"
	"github.com/dmitrijs2005/identitystore/internal/storage/blob/migrations"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// dialect carries the statements for one SQL engine.
type dialect struct {
	name       string
	gooseName  string
	driverName string
	read       string
	upsert     string
	remove     string
	count      string
}

var postgresDialect = dialect{
	name:       "postgres",
	gooseName:  "postgres",
	driverName: "pgx",
	read:       `SELECT content FROM identity_blobs WHERE key = $1`,
	upsert: `INSERT INTO identity_blobs (key, content) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET
			content = EXCLUDED.content,
			revision = identity_blobs.revision + 1,
			updated_at = now()`,
	remove: `DELETE FROM identity_blobs WHERE key = $1`,
	count:  `SELECT COUNT(*) FROM identity_blobs WHERE key = $1`,
}

var sqliteDialect = dialect{
	name:       "sqlite",
	gooseName:  "sqlite3",
	driverName: "sqlite",
	read:       `SELECT content FROM identity_blobs WHERE key = ?`,
	upsert: `INSERT INTO identity_blobs (key, content) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			content = excluded.content,
			revision = identity_blobs.revision + 1,
			updated_at = CURRENT_TIMESTAMP`,
	remove: `DELETE FROM identity_blobs WHERE key = ?`,
	count:  `SELECT COUNT(*) FROM identity_blobs WHERE key = ?`,
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// runMigrations applies the embedded migrations for d.
func runMigrations(ctx context.Context, db *sql.DB, d dialect) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(d.gooseName); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, d.name); err != nil {
		return fmt.Errorf("migrations (%s): %w", d.name, err)
	}
	return nil
}

// SQLStorage keeps blobs in the identity_blobs table.
type SQLStorage struct {
	db      *sql.DB
	dialect dialect
	owned   bool
}

// NewPostgresStorage opens dsn with the pgx driver and migrates the schema.
func NewPostgresStorage(ctx context.Context, dsn string) (*SQLStorage, error) {
	return openSQLStorage(ctx, postgresDialect, dsn)
}

// NewSQLiteStorage opens the database file at path and migrates the schema.
func NewSQLiteStorage(ctx context.Context, path string) (*SQLStorage, error) {
	return openSQLStorage(ctx, sqliteDialect, path)
}

// NewPostgresStorageWithDB wraps an existing handle; the schema is assumed
// to be in place and the handle stays owned by the caller.
func NewPostgresStorageWithDB(db *sql.DB) *SQLStorage {
	return &SQLStorage{db: db, dialect: postgresDialect}
}

// NewSQLiteStorageWithDB is the SQLite counterpart of NewPostgresStorageWithDB.
func NewSQLiteStorageWithDB(db *sql.DB) *SQLStorage {
	return &SQLStorage{db: db, dialect: sqliteDialect}
}

func openSQLStorage(ctx context.Context, d dialect, dsn string) (*SQLStorage, error) {
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if d.name == sqliteDialect.name {
		// one connection keeps ":memory:" databases consistent and serializes writers
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := runMigrations(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLStorage{db: db, dialect: d, owned: true}, nil
}

func (s *SQLStorage) ReadText(ctx context.Context, key string) (string, error) {
	content, ok, err := dbx.QueryText(ctx, s.db, s.dialect.read, key)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	if !ok {
		return "", ErrBlobNotFound
	}
	return content, nil
}

func (s *SQLStorage) WriteText(ctx context.Context, key, text string) error {
	return s.write(ctx, s.db, key, text)
}

// WriteTexts writes all items in a single transaction.
func (s *SQLStorage) WriteTexts(ctx context.Context, items map[string]string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for key, text := range items {
			if err := s.write(ctx, tx, key, text); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLStorage) write(ctx context.Context, db dbx.DBTX, key, text string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if _, err := db.ExecContext(ctx, s.dialect.upsert, key, text); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.remove, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQLStorage) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := dbx.QueryExists(ctx, s.db, s.dialect.count, key)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

// Close releases the handle when the storage opened it.
func (s *SQLStorage) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
