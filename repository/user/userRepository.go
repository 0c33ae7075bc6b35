package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"libra/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByUsername(ctx context.Context, username string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, u.Username, u.PasswordHash, u.Role).Scan(&u.ID)
}

func (r *repo) ByUsername(ctx context.Context, username string) (*model.User, error) {
	u := &model.User{}
	const q = `
		SELECT id, username, password_hash, role
		FROM users
		WHERE username = $1`
	if err := r.db.GetContext(ctx, u, q, username); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	const q = `
		SELECT id, username, password_hash, role
		FROM users
		WHERE id = $1`
	if err := r.db.GetContext(ctx, u, q, id); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	var out []model.User
	const q = `
		SELECT id, username, password_hash, role
		FROM users
		ORDER BY username`
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var id int64
	const q = `
		SELECT id
		FROM users
		WHERE username = $1 AND id <> $2`
	err := r.db.QueryRowContext(ctx, q, username, excludeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repo) Update(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET username = $2, password_hash = $3, role = $4
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, u.ID, u.Username, u.PasswordHash, u.Role)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}
