package ratingsvc

import (
	"context"
	"errors"
	"time"

	"libra/model"
	ratingrepo "libra/repository/rating"
)

type ErrCode string

const (
	ErrNotAllowed ErrCode = "RATING_NOT_ALLOWED"
	ErrBadRating  ErrCode = "BAD_RATING"
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

type Service interface {
	// Rate stores or overwrites the caller's rating for a book. Only
	// users whose return of the book was confirmed may rate it.
	Rate(ctx context.Context, userID, bookID int64, rating int) (*model.Rating, error)

	// Summary returns the average and count of a book's ratings; public.
	Summary(ctx context.Context, bookID int64) (*model.RatingSummary, error)
}

type service struct {
	r       ratingrepo.Repo
	timeout time.Duration
}

func New(r ratingrepo.Repo, timeout time.Duration) Service {
	return &service{r: r, timeout: timeout}
}

func (s *service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *service) Rate(ctx context.Context, userID, bookID int64, rating int) (*model.Rating, error) {
	if rating < 1 || rating > 5 {
		return nil, makeErr(ErrBadRating)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	ok, err := s.r.CanRate(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrNotAllowed)
	}

	rt := &model.Rating{UserID: userID, BookID: bookID, Rating: rating}
	if err := s.r.Upsert(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *service) Summary(ctx context.Context, bookID int64) (*model.RatingSummary, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.r.Summary(ctx, bookID)
}
