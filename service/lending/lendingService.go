package lending

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"libra/model"
	borrowrepo "libra/repository/borrow"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound     ErrCode = "BOOK_NOT_FOUND"
	ErrOutOfStock       ErrCode = "OUT_OF_STOCK"
	ErrAlreadyBorrowed  ErrCode = "ALREADY_BORROWED"
	ErrBorrowLimit      ErrCode = "BORROW_LIMIT"
	ErrBorrowNotFound   ErrCode = "BORROW_NOT_FOUND"
	ErrNotOwner         ErrCode = "NOT_OWNER"
	ErrNotActive        ErrCode = "NOT_ACTIVE"
	ErrAlreadyRequested ErrCode = "ALREADY_REQUESTED"
	ErrReturnNotFound   ErrCode = "RETURN_NOT_FOUND"
	ErrAlreadyConfirmed ErrCode = "ALREADY_CONFIRMED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const (
	// LoanPeriod is how long a borrowed book may be kept.
	LoanPeriod = 14 * 24 * time.Hour
	// MaxActiveBorrows caps a user's concurrent loans.
	MaxActiveBorrows = 3
)

// dto

type Borrowed struct {
	BorrowID       int64     `json:"borrow_id"`
	BookID         int64     `json:"book_id"`
	Title          string    `json:"book_title"`
	DueDate        time.Time `json:"return_date"`
	RemainingStock int64     `json:"remaining_stock"`
}

// Row = repository shape
type Row = borrowrepo.Row

type Service interface {
	// Borrow lends one copy of a book to a user and decrements stock.
	Borrow(ctx context.Context, userID, bookID int64) (*Borrowed, error)

	// RequestReturn opens a pending return for the caller's active borrow.
	RequestReturn(ctx context.Context, userID, borrowID int64) (int64, error)

	// ConfirmReturn closes a pending return: confirms it, flips the
	// borrow to returned and restores the book's stock.
	ConfirmReturn(ctx context.Context, returnID int64) error

	// ListAll returns every borrow with user/book/return info (admin).
	ListAll(ctx context.Context) ([]Row, error)

	// History returns one user's borrows.
	History(ctx context.Context, userID int64) ([]Row, error)
}

// ----- Service implementation -----

type service struct {
	store   borrowrepo.Store
	timeout time.Duration
	now     func() time.Time
}

func New(store borrowrepo.Store, timeout time.Duration) Service {
	return &service{store: store, timeout: timeout, now: time.Now}
}

func (s *service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *service) Borrow(ctx context.Context, userID, bookID int64) (out *Borrowed, err error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Precondition order matters: first failure wins. The row lock on
	// the book serializes racing borrows, so the stock we read here is
	// the stock we decrement.
	book, err := tx.BookForUpdate(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if book.Stock <= 0 {
		return nil, makeErr(ErrOutOfStock)
	}

	active, err := tx.HasActiveBorrow(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, makeErr(ErrAlreadyBorrowed)
	}

	n, err := tx.CountActiveBorrows(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n >= MaxActiveBorrows {
		return nil, makeErr(ErrBorrowLimit)
	}

	now := s.now().UTC()
	due := now.Add(LoanPeriod)
	borrowID, err := tx.InsertBorrow(ctx, userID, bookID, now, due)
	if err != nil {
		return nil, err
	}
	if err = tx.DecrementStock(ctx, bookID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &Borrowed{
		BorrowID:       borrowID,
		BookID:         bookID,
		Title:          book.Title,
		DueDate:        due,
		RemainingStock: book.Stock - 1,
	}, nil
}

func (s *service) RequestReturn(ctx context.Context, userID, borrowID int64) (returnID int64, err error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b, err := tx.BorrowForUpdate(ctx, borrowID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, makeErr(ErrBorrowNotFound)
		}
		return 0, err
	}
	if b.UserID != userID {
		return 0, makeErr(ErrNotOwner)
	}
	if b.Status != model.BorrowActive {
		return 0, makeErr(ErrNotActive)
	}

	has, err := tx.HasReturn(ctx, borrowID)
	if err != nil {
		return 0, err
	}
	if has {
		return 0, makeErr(ErrAlreadyRequested)
	}

	returnID, err = tx.InsertReturn(ctx, borrowID)
	if err != nil {
		// UNIQUE (borrow_id) catches the race our check cannot see.
		if isUniqueViolation(err) {
			return 0, makeErr(ErrAlreadyRequested)
		}
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return returnID, nil
}

func (s *service) ConfirmReturn(ctx context.Context, returnID int64) (err error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ret, err := tx.ReturnForUpdate(ctx, returnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrReturnNotFound)
		}
		return err
	}
	if ret.Status == model.ReturnConfirmed {
		return makeErr(ErrAlreadyConfirmed)
	}

	b, err := tx.BorrowForUpdate(ctx, ret.BorrowID)
	if err != nil {
		return err
	}

	if err = tx.ConfirmReturn(ctx, returnID, s.now().UTC()); err != nil {
		return err
	}
	if err = tx.MarkBorrowReturned(ctx, b.ID); err != nil {
		return err
	}
	if err = tx.IncrementStock(ctx, b.BookID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) ListAll(ctx context.Context) ([]Row, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.ListAll(ctx)
}

func (s *service) History(ctx context.Context, userID int64) ([]Row, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.store.ListByUser(ctx, userID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
