package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"time"

	"desideri-go/internal/domain"
)

type Queries struct {
	db      *sql.DB
	dialect string
}

type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func unixNow() int64 { return time.Now().Unix() }

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func i2b(i int) bool { return i != 0 }

func tFromUnix(u int64) time.Time {
	if u <= 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

// rebind rewrites ? placeholders to $n for Postgres.
func (q *Queries) rebind(query string) string {
	if q.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func (q *Queries) exec(ctx context.Context, r runner, query string, args ...any) (sql.Result, error) {
	return r.ExecContext(ctx, q.rebind(query), args...)
}

func (q *Queries) query(ctx context.Context, r runner, query string, args ...any) (*sql.Rows, error) {
	return r.QueryContext(ctx, q.rebind(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, r runner, query string, args ...any) *sql.Row {
	return r.QueryRowContext(ctx, q.rebind(query), args...)
}

func (q *Queries) insertID(ctx context.Context, r runner, query string, args ...any) (int64, error) {
	var id int64
	if err := q.queryRow(ctx, r, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

/* ---------------- Menu ---------------- */

const menuColumns = `id,name,category,price,available,COALESCE(description,''),created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMenuItem(s scanner) (domain.MenuItem, error) {
	var m domain.MenuItem
	var avail int
	var ca int64
	if err := s.Scan(&m.ID, &m.Name, &m.Category, &m.Price, &avail, &m.Description, &ca); err != nil {
		return m, err
	}
	m.Available = i2b(avail)
	m.CreatedAt = tFromUnix(ca)
	return m, nil
}

func (q *Queries) CountMenu(ctx context.Context) (int, error) {
	var n int
	if err := q.queryRow(ctx, q.db, `SELECT COUNT(1) FROM menu`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (q *Queries) ListMenu(ctx context.Context, onlyAvailable bool) ([]domain.MenuItem, error) {
	where := ""
	if onlyAvailable {
		where = "WHERE available=1"
	}
	rows, err := q.query(ctx, q.db, `SELECT `+menuColumns+` FROM menu `+where+` ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (q *Queries) GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error) {
	m, err := scanMenuItem(q.queryRow(ctx, q.db, `SELECT `+menuColumns+` FROM menu WHERE id=?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetMenuItemsByIDs returns the requested items keyed by id; unknown ids
// are simply absent.
func (q *Queries) GetMenuItemsByIDs(ctx context.Context, ids []int64) (map[int64]domain.MenuItem, error) {
	out := make(map[int64]domain.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.query(ctx, q.db,
		`SELECT `+menuColumns+` FROM menu WHERE id IN (`+placeholders(len(ids))+`)`, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

func (q *Queries) CreateMenuItem(ctx context.Context, p CreateMenuItemParams) (int64, error) {
	return q.insertID(ctx, q.db, `
		INSERT INTO menu(name,category,price,available,description,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?)`,
		p.Name, p.Category, p.Price, b2i(p.Available), p.Description, unixNow(), unixNow())
}

func (q *Queries) UpdateMenuItem(ctx context.Context, p UpdateMenuItemParams) error {
	return mustAffect(q.exec(ctx, q.db, `
		UPDATE menu SET name=?, category=?, price=?, available=?, description=?, updated_at=? WHERE id=?`,
		p.Name, p.Category, p.Price, b2i(p.Available), p.Description, unixNow(), p.ID))
}

func (q *Queries) SetMenuItemAvailable(ctx context.Context, id int64, avail bool) error {
	return mustAffect(q.exec(ctx, q.db, `UPDATE menu SET available=?, updated_at=? WHERE id=?`, b2i(avail), unixNow(), id))
}

func (q *Queries) MenuItemInUse(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := q.queryRow(ctx, q.db, `SELECT COUNT(1) FROM order_lines WHERE menu_id=?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteMenuItem fails while order lines still reference the item.
func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) error {
	return mustAffect(q.exec(ctx, q.db, `DELETE FROM menu WHERE id=?`, id))
}

/* ---------------- Orders ---------------- */

const orderColumns = `o.id,o.customer,o.waiter,o.table_number,o.ordered_at,o.total,COALESCE(o.note,'')`

const lineColumns = `l.id,l.order_id,l.menu_id,COALESCE(m.name,''),COALESCE(m.category,''),l.quantity,l.unit_price,l.department,l.status,l.created_at`

const lineFrom = `FROM order_lines l JOIN menu m ON m.id=l.menu_id`

func scanOrder(s scanner) (domain.Order, error) {
	var o domain.Order
	var at int64
	if err := s.Scan(&o.ID, &o.Customer, &o.Waiter, &o.Table, &at, &o.Total, &o.Note); err != nil {
		return o, err
	}
	o.OrderedAt = tFromUnix(at)
	return o, nil
}

func scanLine(s scanner) (domain.Line, error) {
	var l domain.Line
	var dept, status string
	var ca int64
	if err := s.Scan(&l.ID, &l.OrderID, &l.MenuItemID, &l.DishName, &l.Category, &l.Quantity, &l.UnitPrice, &dept, &status, &ca); err != nil {
		return l, err
	}
	l.Department = domain.Department(dept)
	l.Status = domain.DishStatus(status)
	l.CreatedAt = tFromUnix(ca)
	return l, nil
}

// CreateOrder stores the order and all its lines atomically and returns the
// new order id. Line ids and OrderID are filled in on o.
func (q *Queries) CreateOrder(ctx context.Context, o *domain.Order) (int64, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := unixNow()
	id, err := q.insertID(ctx, tx, `
		INSERT INTO orders(customer,waiter,table_number,ordered_at,total,note,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		o.Customer, o.Waiter, o.Table, o.OrderedAt.Unix(), o.Total, o.Note, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Lines {
		l := &o.Lines[i]
		lid, err := q.insertID(ctx, tx, `
			INSERT INTO order_lines(order_id,menu_id,quantity,unit_price,department,status,created_at,updated_at)
			VALUES(?,?,?,?,?,?,?,?)`,
			id, l.MenuItemID, l.Quantity, l.UnitPrice, string(l.Department), string(l.Status), now, now)
		if err != nil {
			return 0, fmt.Errorf("insert line %d: %w", i, err)
		}
		if _, err := q.exec(ctx, tx, `
			INSERT INTO line_events(line_id,order_id,from_status,to_status,changed_by,created_at)
			VALUES(?,?,'',?,'',?)`, lid, id, string(l.Status), now); err != nil {
			return 0, err
		}
		l.ID = lid
		l.OrderID = id
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	o.ID = id
	return id, nil
}

// ListOrders returns the matching orders, newest first, with nested lines.
func (q *Queries) ListOrders(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	var conds []string
	var args []any
	if w := strings.TrimSpace(f.Waiter); w != "" {
		conds = append(conds, "o.waiter=?")
		args = append(args, w)
	}
	if f.Department != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM order_lines x WHERE x.order_id=o.id AND x.department=?)")
		args = append(args, string(f.Department))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := q.query(ctx, q.db, `SELECT `+orderColumns+` FROM orders o `+where+` ORDER BY o.ordered_at DESC, o.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	lines, err := q.query(ctx, q.db,
		`SELECT `+lineColumns+` `+lineFrom+` WHERE l.order_id IN (SELECT o.id FROM orders o `+where+`) ORDER BY l.id`, args...)
	if err != nil {
		return nil, err
	}
	defer lines.Close()

	idx := make(map[int64]int, len(out))
	for i, o := range out {
		idx[o.ID] = i
	}
	for lines.Next() {
		l, err := scanLine(lines)
		if err != nil {
			return nil, err
		}
		if i, ok := idx[l.OrderID]; ok {
			out[i].Lines = append(out[i].Lines, l)
		}
	}
	return out, lines.Err()
}

func (q *Queries) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(q.queryRow(ctx, q.db, `SELECT `+orderColumns+` FROM orders o WHERE o.id=?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	lines, err := q.listLines(ctx, `l.order_id=?`, id)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (q *Queries) UpdateOrderNote(ctx context.Context, id int64, note string) error {
	return mustAffect(q.exec(ctx, q.db, `UPDATE orders SET note=?, updated_at=? WHERE id=?`, note, unixNow(), id))
}

// DeleteOrder removes the order; lines and their events cascade.
func (q *Queries) DeleteOrder(ctx context.Context, id int64) error {
	return mustAffect(q.exec(ctx, q.db, `DELETE FROM orders WHERE id=?`, id))
}

/* ---------------- Lines ---------------- */

func (q *Queries) listLines(ctx context.Context, cond string, args ...any) ([]domain.Line, error) {
	rows, err := q.query(ctx, q.db, `SELECT `+lineColumns+` `+lineFrom+` WHERE `+cond+` ORDER BY l.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Line
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (q *Queries) GetLinesByIDs(ctx context.Context, ids []int64) ([]domain.Line, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return q.listLines(ctx, `l.id IN (`+placeholders(len(ids))+`)`, idArgs(ids)...)
}

// UpdateLineStatus sets status on every listed line in one transaction and
// returns the lines as stored afterwards. Unknown ids are ignored.
func (q *Queries) UpdateLineStatus(ctx context.Context, ids []int64, to domain.DishStatus, by domain.Role) ([]domain.Line, error) {
	if len(ids) == 0 {
		if !to.Valid() {
			return nil, fmt.Errorf("invalid status %q", to)
		}
		return nil, nil
	}
	if err := q.ApplyLineTransitions(ctx, LineTransitions{to: ids}, by); err != nil {
		return nil, err
	}
	return q.GetLinesByIDs(ctx, ids)
}

// ApplyLineTransitions writes every transition in a single transaction,
// with an audit row per line whose status actually changes. Either all of
// them are stored or none.
func (q *Queries) ApplyLineTransitions(ctx context.Context, t LineTransitions, by domain.Role) error {
	targets := make([]domain.DishStatus, 0, len(t))
	for to := range t {
		if !to.Valid() {
			return fmt.Errorf("invalid status %q", to)
		}
		targets = append(targets, to)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := unixNow()
	for _, to := range targets {
		if err := q.setLineStatus(ctx, tx, t[to], to, by, now); err != nil {
			return fmt.Errorf("set %s: %w", to, err)
		}
	}
	return tx.Commit()
}

func (q *Queries) setLineStatus(ctx context.Context, tx *sql.Tx, ids []int64, to domain.DishStatus, by domain.Role, now int64) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := q.query(ctx, tx,
		`SELECT id,order_id,status FROM order_lines WHERE id IN (`+placeholders(len(ids))+`)`, idArgs(ids)...)
	if err != nil {
		return err
	}
	type prev struct {
		id, orderID int64
		status      string
	}
	var current []prev
	for rows.Next() {
		var p prev
		if err := rows.Scan(&p.id, &p.orderID, &p.status); err != nil {
			rows.Close()
			return err
		}
		current = append(current, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range current {
		if p.status == string(to) {
			continue
		}
		if _, err := q.exec(ctx, tx, `UPDATE order_lines SET status=?, updated_at=? WHERE id=?`, string(to), now, p.id); err != nil {
			return err
		}
		if _, err := q.exec(ctx, tx, `
			INSERT INTO line_events(line_id,order_id,from_status,to_status,changed_by,created_at)
			VALUES(?,?,?,?,?,?)`, p.id, p.orderID, p.status, string(to), string(by), now); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) ListLineEvents(ctx context.Context, orderID int64) ([]LineEvent, error) {
	rows, err := q.query(ctx, q.db, `
		SELECT e.id,e.line_id,e.order_id,COALESCE(e.from_status,''),e.to_status,COALESCE(e.changed_by,''),e.created_at,
			COALESCE(m.name,'')
		FROM line_events e
		JOIN order_lines l ON l.id=e.line_id
		LEFT JOIN menu m ON m.id=l.menu_id
		WHERE e.order_id=?
		ORDER BY e.created_at ASC, e.id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LineEvent
	for rows.Next() {
		var e LineEvent
		var from, to, by string
		var ca int64
		if err := rows.Scan(&e.ID, &e.LineID, &e.OrderID, &from, &to, &by, &ca, &e.DishName); err != nil {
			return nil, err
		}
		e.FromStatus = domain.DishStatus(from)
		e.ToStatus = domain.DishStatus(to)
		e.ChangedBy = domain.Role(by)
		e.CreatedAt = tFromUnix(ca)
		out = append(out, e)
	}
	return out, rows.Err()
}

/* ---------------- Reservations ---------------- */

const reservationColumns = `id,day,shift,zone,table_number,customer,people,COALESCE(phone,''),COALESCE(note,''),created_at,updated_at`

func scanReservation(s scanner) (domain.Reservation, error) {
	var r domain.Reservation
	var ca, ua int64
	if err := s.Scan(&r.ID, &r.Day, &r.Shift, &r.Zone, &r.Table, &r.Customer, &r.People, &r.Phone, &r.Note, &ca, &ua); err != nil {
		return r, err
	}
	r.Created = tFromUnix(ca)
	r.Updated = tFromUnix(ua)
	return r, nil
}

func (q *Queries) ListReservations(ctx context.Context, f ReservationFilter) ([]domain.Reservation, error) {
	return q.listReservations(ctx, q.db, f)
}

func (q *Queries) listReservations(ctx context.Context, r runner, f ReservationFilter) ([]domain.Reservation, error) {
	var conds []string
	var args []any
	if f.Day != "" {
		conds = append(conds, "day=?")
		args = append(args, f.Day)
	}
	if f.Shift != 0 {
		conds = append(conds, "shift=?")
		args = append(args, f.Shift)
	}
	if f.Zone != "" {
		conds = append(conds, "zone=?")
		args = append(args, f.Zone)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	rows, err := q.query(ctx, r, `SELECT `+reservationColumns+` FROM reservations `+where+` ORDER BY day, shift, zone, table_number, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (q *Queries) GetReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	r, err := scanReservation(q.queryRow(ctx, q.db, `SELECT `+reservationColumns+` FROM reservations WHERE id=?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (q *Queries) CreateReservation(ctx context.Context, r domain.Reservation) (int64, error) {
	return q.insertReservation(ctx, q.db, r)
}

func (q *Queries) UpdateReservation(ctx context.Context, r domain.Reservation) error {
	return q.updateReservation(ctx, q.db, r)
}

func (q *Queries) insertReservation(ctx context.Context, rn runner, r domain.Reservation) (int64, error) {
	return q.insertID(ctx, rn, `
		INSERT INTO reservations(day,shift,zone,table_number,customer,people,phone,note,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?,?,?,?)`,
		r.Day, r.Shift, r.Zone, r.Table, r.Customer, r.People, r.Phone, r.Note, unixNow(), unixNow())
}

func (q *Queries) updateReservation(ctx context.Context, rn runner, r domain.Reservation) error {
	return mustAffect(q.exec(ctx, rn, `
		UPDATE reservations SET day=?, shift=?, zone=?, table_number=?, customer=?, people=?, phone=?, note=?, updated_at=?
		WHERE id=?`,
		r.Day, r.Shift, r.Zone, r.Table, r.Customer, r.People, r.Phone, r.Note, unixNow(), r.ID))
}

// BookReservation stores r (insert when r.ID is 0, update otherwise) once
// check has accepted it against the bookings already on r's day and shift.
// Check and write share one transaction; on Postgres a transaction-scoped
// advisory lock per day and shift serialises concurrent bookings, on SQLite
// the single connection does.
func (q *Queries) BookReservation(ctx context.Context, r domain.Reservation, check func(existing []domain.Reservation) error) (int64, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if q.dialect == DialectPostgres {
		if _, err := q.exec(ctx, tx, `SELECT pg_advisory_xact_lock(?)`, shiftLockKey(r.Day, r.Shift)); err != nil {
			return 0, fmt.Errorf("lock shift: %w", err)
		}
	}
	existing, err := q.listReservations(ctx, tx, ReservationFilter{Day: r.Day, Shift: r.Shift})
	if err != nil {
		return 0, err
	}
	if err := check(existing); err != nil {
		return 0, err
	}

	id := r.ID
	if id == 0 {
		if id, err = q.insertReservation(ctx, tx, r); err != nil {
			return 0, err
		}
	} else if err := q.updateReservation(ctx, tx, r); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func shiftLockKey(day string, shift int) int64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "reservations:%s:%d", day, shift)
	return int64(h.Sum64())
}

/* ---------------- Role credentials ---------------- */

// GetRoleCredential returns the bcrypt hash for role, "" when none is set.
func (q *Queries) GetRoleCredential(ctx context.Context, role domain.Role) (string, error) {
	var hash string
	err := q.queryRow(ctx, q.db, `SELECT password_hash FROM role_credentials WHERE role=?`, string(role)).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return hash, err
}

func (q *Queries) UpsertRoleCredential(ctx context.Context, role domain.Role, hash string) error {
	_, err := q.exec(ctx, q.db, `
		INSERT INTO role_credentials(role,password_hash,updated_at) VALUES(?,?,?)
		ON CONFLICT(role) DO UPDATE SET password_hash=excluded.password_hash, updated_at=excluded.updated_at`,
		string(role), hash, unixNow())
	return err
}

/* ---------------- Debug ---------------- */

func (q *Queries) DebugCounts(ctx context.Context) (string, error) {
	type c struct {
		name string
		qry  string
	}
	checks := []c{
		{"menu", "SELECT COUNT(1) FROM menu"},
		{"orders", "SELECT COUNT(1) FROM orders"},
		{"lines", "SELECT COUNT(1) FROM order_lines"},
		{"events", "SELECT COUNT(1) FROM line_events"},
		{"reservations", "SELECT COUNT(1) FROM reservations"},
	}
	var parts []string
	for _, it := range checks {
		var n int
		if err := q.queryRow(ctx, q.db, it.qry).Scan(&n); err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s=%d", it.name, n))
	}
	return strings.Join(parts, " | "), nil
}
