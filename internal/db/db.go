package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "pgx"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	DB      *sql.DB
	Q       *Queries
	Dialect string
}

// Open connects to the order store. For sqlite3 dsn is a file path; for pgx
// it is a Postgres connection string.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "", "sqlite", DialectSQLite:
		return openSQLite(dsn)
	case "postgres", DialectPostgres:
		return openPostgres(dsn)
	}
	return nil, fmt.Errorf("unsupported db driver %q", driver)
}

func openSQLite(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open(DialectSQLite, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Ensure FK is on
	_, _ = db.Exec(`PRAGMA foreign_keys = ON;`)

	return &Store{DB: db, Q: &Queries{db: db, dialect: DialectSQLite}, Dialect: DialectSQLite}, nil
}

func openPostgres(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	db, err := sql.Open(DialectPostgres, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{DB: db, Q: &Queries{db: db, dialect: DialectPostgres}, Dialect: DialectPostgres}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }
