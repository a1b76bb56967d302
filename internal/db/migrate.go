package db

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

const pingTimeout = 5 * time.Second

var schema = []string{
	`CREATE TABLE IF NOT EXISTS menu (
		id {{pk}},
		name TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		price {{money}} NOT NULL,
		available INTEGER NOT NULL DEFAULT 1,
		description TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS orders (
		id {{pk}},
		customer TEXT NOT NULL,
		waiter TEXT NOT NULL,
		table_number INTEGER NOT NULL CHECK(table_number >= 1),
		ordered_at BIGINT NOT NULL,
		total {{money}} NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS order_lines (
		id {{pk}},
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		menu_id BIGINT NOT NULL REFERENCES menu(id) ON DELETE RESTRICT,
		quantity INTEGER NOT NULL CHECK(quantity > 0),
		unit_price {{money}} NOT NULL,
		department TEXT NOT NULL CHECK(department IN ('cassa','brace','cucina')),
		status TEXT NOT NULL CHECK(status IN ('in_preparazione','antipasto_servito','primo_servito','secondo_servito','comanda_conclusa','cancellato')),
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS line_events (
		id {{pk}},
		line_id BIGINT NOT NULL REFERENCES order_lines(id) ON DELETE CASCADE,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		from_status TEXT NOT NULL DEFAULT '',
		to_status TEXT NOT NULL,
		changed_by TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id {{pk}},
		day TEXT NOT NULL,
		shift INTEGER NOT NULL CHECK(shift BETWEEN 1 AND 3),
		zone TEXT NOT NULL,
		table_number INTEGER NOT NULL,
		customer TEXT NOT NULL,
		people INTEGER NOT NULL CHECK(people > 0),
		phone TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS role_credentials (
		role TEXT PRIMARY KEY CHECK(role IN ('cassiere','bracerista','cuoca','cameriere')),
		password_hash TEXT NOT NULL,
		updated_at BIGINT NOT NULL
	);`,

	`CREATE INDEX IF NOT EXISTS idx_orders_ordered_at ON orders(ordered_at);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_waiter ON orders(waiter);`,
	`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id, department);`,
	`CREATE INDEX IF NOT EXISTS idx_line_events_order_created ON line_events(order_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_day_shift ON reservations(day, shift);`,
}

func dialectReplacer(dialect string) *strings.Replacer {
	if dialect == DialectPostgres {
		return strings.NewReplacer("{{pk}}", "BIGSERIAL PRIMARY KEY", "{{money}}", "NUMERIC(10,2)")
	}
	return strings.NewReplacer("{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{money}}", "TEXT")
}

// Migrate creates the schema in one transaction.
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	rep := dialectReplacer(dialect)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if dialect != DialectPostgres {
		if _, err := tx.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	for _, s := range schema {
		if _, err := tx.ExecContext(ctx, rep.Replace(s)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) Migrate(ctx context.Context) error { return Migrate(ctx, s.DB, s.Dialect) }
