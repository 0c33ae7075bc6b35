package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"libra/model"
	bookrepo "libra/repository/book"
)

type ErrCode string

const (
	ErrNotFound      ErrCode = "BOOK_NOT_FOUND"
	ErrBadInput      ErrCode = "BAD_INPUT"
	ErrCategoryTaken ErrCode = "CATEGORY_TAKEN"
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

// Filter = repository shape
type Filter = bookrepo.Filter

// Input carries the fields of a book create/update. Image is the
// already-stored reference path, nil when no file was uploaded.
// Stock is nil when the form omitted it, which create treats as zero
// and update rejects.
type Input struct {
	Title       string
	Author      string
	Stock       *int64
	Description string
	Image       *string
	CategoryID  *int64
}

type Service interface {
	List(ctx context.Context, f Filter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, in Input) (*model.Book, error)
	Update(ctx context.Context, id int64, in Input) error
	Delete(ctx context.Context, id int64) error

	Categories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
}

type service struct {
	r       bookrepo.Repo
	timeout time.Duration
}

func New(r bookrepo.Repo, timeout time.Duration) Service {
	return &service{r: r, timeout: timeout}
}

func (s *service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func validate(in Input) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" {
		return makeErr(ErrBadInput)
	}
	if in.Stock != nil && *in.Stock < 0 {
		return makeErr(ErrBadInput)
	}
	return nil
}

func (s *service) List(ctx context.Context, f Filter) ([]model.Book, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.r.List(ctx, f)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	b, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Create(ctx context.Context, in Input) (*model.Book, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var stock int64
	if in.Stock != nil {
		stock = *in.Stock
	}
	b := &model.Book{
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		Stock:       stock,
		Description: strings.TrimSpace(in.Description),
		Image:       in.Image,
		CategoryID:  in.CategoryID,
	}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Update(ctx context.Context, id int64, in Input) error {
	if err := validate(in); err != nil {
		return err
	}
	// an edit that drops the stock field must not zero inventory
	if in.Stock == nil {
		return makeErr(ErrBadInput)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	b := &model.Book{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		Stock:       *in.Stock,
		Description: strings.TrimSpace(in.Description),
		Image:       in.Image,
		CategoryID:  in.CategoryID,
	}
	if err := s.r.Update(ctx, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) Categories(ctx context.Context) ([]model.Category, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.r.ListCategories(ctx)
}

func (s *service) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, makeErr(ErrBadInput)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	id, err := s.r.CreateCategory(ctx, name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, makeErr(ErrCategoryTaken)
		}
		return nil, err
	}
	return &model.Category{ID: id, Name: name}, nil
}
