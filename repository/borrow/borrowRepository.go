package borrowrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"libra/model"
)

// Row is one joined borrow entry for listings and history.
type Row struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	Username     string     `db:"username" json:"username"`
	BookID       int64      `db:"book_id" json:"book_id"`
	Title        string     `db:"title" json:"title"`
	BorrowDate   time.Time  `db:"borrow_date" json:"borrow_date"`
	ReturnDate   time.Time  `db:"return_date" json:"return_date"`
	Status       string     `db:"status" json:"status"`
	ReturnID     *int64     `db:"return_id" json:"return_id,omitempty"`
	ReturnStatus *string    `db:"return_status" json:"return_status,omitempty"`
	ReturnedOn   *time.Time `db:"returned_on" json:"returned_on,omitempty"`
}

// ErrStockConflict is returned when a guarded stock update changes no
// row, which under the row lock can only mean a violated invariant.
var ErrStockConflict = errors.New("stock update affected no rows")

// Store is the lending ledger's persistence boundary. All state-machine
// writes go through a Tx so the borrow/return invariants hold under
// concurrent callers.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	ListAll(ctx context.Context) ([]Row, error)
	ListByUser(ctx context.Context, userID int64) ([]Row, error)
}

type Tx interface {
	// BookForUpdate locks the book row, serializing stock movements per book.
	BookForUpdate(ctx context.Context, bookID int64) (*model.Book, error)
	HasActiveBorrow(ctx context.Context, userID, bookID int64) (bool, error)
	CountActiveBorrows(ctx context.Context, userID int64) (int, error)
	InsertBorrow(ctx context.Context, userID, bookID int64, borrowedAt, dueAt time.Time) (int64, error)
	DecrementStock(ctx context.Context, bookID int64) error
	IncrementStock(ctx context.Context, bookID int64) error

	BorrowForUpdate(ctx context.Context, borrowID int64) (*model.Borrow, error)
	HasReturn(ctx context.Context, borrowID int64) (bool, error)
	InsertReturn(ctx context.Context, borrowID int64) (int64, error)
	ReturnForUpdate(ctx context.Context, returnID int64) (*model.Return, error)
	ConfirmReturn(ctx context.Context, returnID int64, returnedOn time.Time) error
	MarkBorrowReturned(ctx context.Context, borrowID int64) error

	Commit() error
	Rollback() error
}

type store struct{ db *sqlx.DB }

func New(db *sqlx.DB) Store { return &store{db: db} }

func (s *store) Begin(ctx context.Context) (Tx, error) {
	t, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &tx{t: t}, nil
}

const rowCols = `
		b.id,
		b.user_id,
		u.username,
		b.book_id,
		bk.title,
		b.borrow_date,
		b.return_date,
		b.status,
		r.id     AS return_id,
		r.status AS return_status,
		r.return_date AS returned_on`

func (s *store) ListAll(ctx context.Context) ([]Row, error) {
	const q = `
		SELECT` + rowCols + `
		FROM borrows b
		JOIN users u  ON u.id = b.user_id
		JOIN books bk ON bk.id = b.book_id
		LEFT JOIN returns r ON r.borrow_id = b.id
		ORDER BY b.borrow_date DESC, b.id DESC`
	var out []Row
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store) ListByUser(ctx context.Context, userID int64) ([]Row, error) {
	const q = `
		SELECT` + rowCols + `
		FROM borrows b
		JOIN users u  ON u.id = b.user_id
		JOIN books bk ON bk.id = b.book_id
		LEFT JOIN returns r ON r.borrow_id = b.id
		WHERE b.user_id = $1
		ORDER BY b.borrow_date DESC, b.id DESC`
	var out []Row
	if err := s.db.SelectContext(ctx, &out, q, userID); err != nil {
		return nil, err
	}
	return out, nil
}

type tx struct{ t *sqlx.Tx }

func (x *tx) Commit() error   { return x.t.Commit() }
func (x *tx) Rollback() error { return x.t.Rollback() }

func (x *tx) BookForUpdate(ctx context.Context, bookID int64) (*model.Book, error) {
	b := &model.Book{}
	const q = `
		SELECT id, title, author, stock, description, image, category_id
		FROM books
		WHERE id = $1
		FOR UPDATE`
	if err := x.t.GetContext(ctx, b, q, bookID); err != nil {
		return nil, err
	}
	return b, nil
}

func (x *tx) HasActiveBorrow(ctx context.Context, userID, bookID int64) (bool, error) {
	var id int64
	const q = `
		SELECT id
		FROM borrows
		WHERE user_id = $1 AND book_id = $2 AND status = 'borrowed'
		LIMIT 1`
	err := x.t.QueryRowContext(ctx, q, userID, bookID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (x *tx) CountActiveBorrows(ctx context.Context, userID int64) (int, error) {
	var n int
	const q = `
		SELECT COUNT(*)
		FROM borrows
		WHERE user_id = $1 AND status = 'borrowed'`
	if err := x.t.QueryRowContext(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (x *tx) InsertBorrow(ctx context.Context, userID, bookID int64, borrowedAt, dueAt time.Time) (int64, error) {
	var id int64
	const q = `
		INSERT INTO borrows (user_id, book_id, borrow_date, return_date, status)
		VALUES ($1, $2, $3, $4, 'borrowed')
		RETURNING id`
	if err := x.t.QueryRowContext(ctx, q, userID, bookID, borrowedAt, dueAt).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (x *tx) DecrementStock(ctx context.Context, bookID int64) error {
	// Guard: never below zero, even though the caller holds the row lock.
	const q = `
		UPDATE books
		SET stock = stock - 1
		WHERE id = $1 AND stock > 0`
	res, err := x.t.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrStockConflict
	}
	return nil
}

func (x *tx) IncrementStock(ctx context.Context, bookID int64) error {
	res, err := x.t.ExecContext(ctx, `UPDATE books SET stock = stock + 1 WHERE id = $1`, bookID)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrStockConflict
	}
	return nil
}

func (x *tx) BorrowForUpdate(ctx context.Context, borrowID int64) (*model.Borrow, error) {
	b := &model.Borrow{}
	const q = `
		SELECT id, user_id, book_id, borrow_date, return_date, status
		FROM borrows
		WHERE id = $1
		FOR UPDATE`
	if err := x.t.GetContext(ctx, b, q, borrowID); err != nil {
		return nil, err
	}
	return b, nil
}

func (x *tx) HasReturn(ctx context.Context, borrowID int64) (bool, error) {
	var id int64
	err := x.t.QueryRowContext(ctx, `SELECT id FROM returns WHERE borrow_id = $1`, borrowID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (x *tx) InsertReturn(ctx context.Context, borrowID int64) (int64, error) {
	var id int64
	const q = `
		INSERT INTO returns (borrow_id, return_date, status)
		VALUES ($1, NULL, 'pending')
		RETURNING id`
	if err := x.t.QueryRowContext(ctx, q, borrowID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (x *tx) ReturnForUpdate(ctx context.Context, returnID int64) (*model.Return, error) {
	r := &model.Return{}
	const q = `
		SELECT id, borrow_id, return_date, status
		FROM returns
		WHERE id = $1
		FOR UPDATE`
	if err := x.t.GetContext(ctx, r, q, returnID); err != nil {
		return nil, err
	}
	return r, nil
}

func (x *tx) ConfirmReturn(ctx context.Context, returnID int64, returnedOn time.Time) error {
	const q = `
		UPDATE returns
		SET status = 'confirmed', return_date = $2
		WHERE id = $1`
	_, err := x.t.ExecContext(ctx, q, returnID, returnedOn)
	return err
}

func (x *tx) MarkBorrowReturned(ctx context.Context, borrowID int64) error {
	const q = `
		UPDATE borrows
		SET status = 'returned'
		WHERE id = $1`
	_, err := x.t.ExecContext(ctx, q, borrowID)
	return err
}
