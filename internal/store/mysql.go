package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/reeliz-ticketing/internal/model"
)

// MySQLStore is the production TicketStore backed by the transaction
// table.  Columns mirror the legacy schema (id, date, name, room, movie,
// sits, amount, barcode) extended with status, void_reason and scans_used.
// Every barcode is also written to the issued_barcode ledger, which
// Delete never touches, so a barcode stays burned across deletes and
// process restarts.  Per-id linearizability for MarkScanned is provided
// by a SELECT ... FOR UPDATE row lock inside a transaction.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to the given database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

const ticketColumns = `id, date, name, room, movie, sits, amount, barcode, status, void_reason, scans_used, created_at`

// Insert writes a new ticket row and records its barcode in the
// issued_barcode ledger inside one transaction.  Duplicate ids and
// barcodes surface as ErrDuplicateID/ErrDuplicateBarcode via the unique
// indexes.
func (s *MySQLStore) Insert(ctx context.Context, t *model.Ticket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const burn = `INSERT INTO issued_barcode (barcode) VALUES (?)`
	if _, err := tx.ExecContext(ctx, burn, t.Barcode); err != nil {
		if isDuplicateKey(err, "uq_issued_barcode") {
			return ErrDuplicateBarcode
		}
		return err
	}
	const q = `INSERT INTO transaction (id, date, name, room, movie, sits, amount, barcode, status, void_reason, scans_used)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q,
		t.ID, t.Date, t.HolderName, t.Room, t.Movie, t.SeatList(), t.Amount,
		t.Barcode, string(t.Status), t.VoidReason, t.ScanConsumed,
	); err != nil {
		if isDuplicateKey(err, "barcode") {
			return ErrDuplicateBarcode
		}
		if isDuplicateKey(err, "PRIMARY") {
			return ErrDuplicateID
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// FindByBarcode looks up a ticket by its barcode.
func (s *MySQLStore) FindByBarcode(ctx context.Context, barcode string) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM transaction WHERE barcode = ?`
	t, err := scanTicket(s.db.QueryRowContext(ctx, q, barcode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return t, err
}

// FindByShowtime returns confirmed tickets for the movie/room pair,
// optionally restricted to one date code.
func (s *MySQLStore) FindByShowtime(ctx context.Context, movie, room, dateCode string) ([]*model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM transaction WHERE movie = ? AND room = ? AND status = ?`
	args := []interface{}{movie, room, string(model.StatusConfirmed)}
	if dateCode != "" {
		q += ` AND date = ?`
		args = append(args, dateCode)
	}
	q += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkScanned consumes one admission credit under a row lock.
func (s *MySQLStore) MarkScanned(ctx context.Context, id uint64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = `SELECT sits, scans_used FROM transaction WHERE id = ? FOR UPDATE`
	var sits string
	var used int
	if err := tx.QueryRowContext(ctx, sel, id).Scan(&sits, &used); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTicketNotFound
		}
		return 0, err
	}
	total := len(model.SplitSeats(sits))
	if used >= total {
		return used, ErrFullyScanned
	}
	used++
	const upd = `UPDATE transaction SET scans_used = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, used, id); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return used, nil
}

// ActiveIDs returns all ticket ids ascending.
func (s *MySQLStore) ActiveIDs(ctx context.Context) ([]uint64, error) {
	const q = `SELECT id FROM transaction ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BarcodeExists checks the issued_barcode ledger, which covers every
// barcode ever written, including those of deleted tickets.
func (s *MySQLStore) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	const q = `SELECT 1 FROM issued_barcode WHERE barcode = ? LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, q, barcode).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListAll returns every ticket, newest id first.
func (s *MySQLStore) ListAll(ctx context.Context) ([]*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM transaction ORDER BY id DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes the ticket row, freeing its id.  The barcode's
// issued_barcode entry is left in place so the code is never reissued.
func (s *MySQLStore) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM transaction WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(r rowScanner) (*model.Ticket, error) {
	var t model.Ticket
	var sits, status string
	var voidReason sql.NullString
	if err := r.Scan(
		&t.ID, &t.Date, &t.HolderName, &t.Room, &t.Movie, &sits, &t.Amount,
		&t.Barcode, &status, &voidReason, &t.ScanConsumed, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	t.Seats = model.SplitSeats(sits)
	t.Status = model.TicketStatus(status)
	if voidReason.Valid {
		t.VoidReason = voidReason.String
	}
	return &t, nil
}

// isDuplicateKey matches MySQL duplicate-entry errors (error 1062)
// against the named index.
func isDuplicateKey(err error, index string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		return false
	}
	return strings.Contains(me.Message, index)
}
