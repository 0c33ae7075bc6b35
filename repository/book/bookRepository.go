package bookrepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"libra/model"
)

// Filter narrows List by title substring and/or category.
type Filter struct {
	Title      string
	CategoryID *int64
}

type Repo interface {
	List(ctx context.Context, f Filter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (int64, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

const bookCols = `
	b.id, b.title, b.author, b.stock, b.description, b.image, b.category_id,
	c.name AS category`

func (r *repo) List(ctx context.Context, f Filter) ([]model.Book, error) {
	q := `
		SELECT` + bookCols + `
		FROM books b
		LEFT JOIN categories c ON c.id = b.category_id`
	var args []any
	where := ""
	if f.Title != "" {
		args = append(args, "%"+f.Title+"%")
		where = fmt.Sprintf(" WHERE b.title ILIKE $%d", len(args))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		if where == "" {
			where = fmt.Sprintf(" WHERE b.category_id = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND b.category_id = $%d", len(args))
		}
	}
	q += where + " ORDER BY b.id"

	var out []model.Book
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b := &model.Book{}
	q := `
		SELECT` + bookCols + `
		FROM books b
		LEFT JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1`
	if err := r.db.GetContext(ctx, b, q, id); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, stock, description, image, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.Stock, b.Description, b.Image, b.CategoryID,
	).Scan(&b.ID)
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	// COALESCE keeps the existing image when no new file was uploaded.
	const q = `
		UPDATE books
		SET title = $2, author = $3, stock = $4, description = $5,
		    image = COALESCE($6, image), category_id = $7
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q,
		b.ID, b.Title, b.Author, b.Stock, b.Description, b.Image, b.CategoryID)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := r.db.SelectContext(ctx, &out, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) CreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	const q = `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
