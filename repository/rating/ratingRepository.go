package ratingrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"libra/model"
)

type Repo interface {
	// CanRate reports whether (user, book) has a returned borrow whose
	// return was confirmed by an admin.
	CanRate(ctx context.Context, userID, bookID int64) (bool, error)
	Upsert(ctx context.Context, rt *model.Rating) error
	Summary(ctx context.Context, bookID int64) (*model.RatingSummary, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) CanRate(ctx context.Context, userID, bookID int64) (bool, error) {
	var one int
	const q = `
		SELECT 1
		FROM borrows b
		JOIN returns r ON r.borrow_id = b.id
		WHERE b.user_id = $1
		  AND b.book_id = $2
		  AND b.status = 'returned'
		  AND r.status = 'confirmed'
		LIMIT 1`
	err := r.db.QueryRowContext(ctx, q, userID, bookID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) Upsert(ctx context.Context, rt *model.Rating) error {
	const q = `
		INSERT INTO ratings (user_id, book_id, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, book_id) DO UPDATE SET rating = EXCLUDED.rating`
	_, err := r.db.ExecContext(ctx, q, rt.UserID, rt.BookID, rt.Rating)
	return err
}

func (r *repo) Summary(ctx context.Context, bookID int64) (*model.RatingSummary, error) {
	s := &model.RatingSummary{}
	const q = `
		SELECT COALESCE(AVG(rating), 0) AS avg_rating,
		       COUNT(*)                 AS total
		FROM ratings
		WHERE book_id = $1`
	if err := r.db.GetContext(ctx, s, q, bookID); err != nil {
		return nil, err
	}
	return s, nil
}
