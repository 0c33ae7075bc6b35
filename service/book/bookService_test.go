package booksvc_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"libra/model"
	bookrepo "libra/repository/book"
	booksvc "libra/service/book"
)

type repoMock struct {
	listFn           func(ctx context.Context, f bookrepo.Filter) ([]model.Book, error)
	detailFn         func(ctx context.Context, id int64) (*model.Book, error)
	createFn         func(ctx context.Context, b *model.Book) error
	updateFn         func(ctx context.Context, b *model.Book) error
	deleteFn         func(ctx context.Context, id int64) error
	categoriesFn     func(ctx context.Context) ([]model.Category, error)
	createCategoryFn func(ctx context.Context, name string) (int64, error)
}

func (m *repoMock) List(ctx context.Context, f bookrepo.Filter) ([]model.Book, error) {
	return m.listFn(ctx, f)
}
func (m *repoMock) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return m.detailFn(ctx, id)
}
func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) Update(ctx context.Context, b *model.Book) error { return m.updateFn(ctx, b) }
func (m *repoMock) Delete(ctx context.Context, id int64) error      { return m.deleteFn(ctx, id) }
func (m *repoMock) ListCategories(ctx context.Context) ([]model.Category, error) {
	return m.categoriesFn(ctx)
}
func (m *repoMock) CreateCategory(ctx context.Context, name string) (int64, error) {
	return m.createCategoryFn(ctx, name)
}

func stockOf(n int64) *int64 { return &n }

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{}, 0)
	ctx := context.Background()

	if _, err := s.Create(ctx, booksvc.Input{Title: "", Author: "a"}); err == nil {
		t.Fatal("expected error for empty title")
	}
	if _, err := s.Create(ctx, booksvc.Input{Title: "t", Author: "  "}); err == nil {
		t.Fatal("expected error for empty author")
	}
	if _, err := s.Create(ctx, booksvc.Input{Title: "t", Author: "a", Stock: stockOf(-1)}); err == nil {
		t.Fatal("expected error for negative stock")
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			if b.Title != "Clean Code" || b.Author != "Robert Martin" || b.Stock != 3 {
				return errors.New("bad args")
			}
			b.ID = 42
			return nil
		},
	}
	s := booksvc.New(m, 0)

	b, err := s.Create(context.Background(), booksvc.Input{Title: " Clean Code ", Author: "Robert Martin", Stock: stockOf(3)})
	if err != nil || b.ID != 42 {
		t.Fatalf("got %+v err=%v; want id=42 nil", b, err)
	}
}

func TestCreate_MissingStockDefaultsToZero(t *testing.T) {
	var got int64 = -1
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			got = b.Stock
			return nil
		},
	}
	s := booksvc.New(m, 0)

	if _, err := s.Create(context.Background(), booksvc.Input{Title: "t", Author: "a"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got != 0 {
		t.Fatalf("stock = %d; want 0", got)
	}
}

func TestUpdate_MissingStockRejected(t *testing.T) {
	called := false
	m := &repoMock{
		updateFn: func(ctx context.Context, b *model.Book) error {
			called = true
			return nil
		},
	}
	s := booksvc.New(m, 0)

	err := s.Update(context.Background(), 1, booksvc.Input{Title: "t", Author: "a"})
	if booksvc.Code(err) != booksvc.ErrBadInput {
		t.Fatalf("got %v; want %v", err, booksvc.ErrBadInput)
	}
	if called {
		t.Fatal("repository Update must not run without a stock value")
	}
}

func TestUpdate_Success(t *testing.T) {
	m := &repoMock{
		updateFn: func(ctx context.Context, b *model.Book) error {
			if b.ID != 1 || b.Stock != 7 {
				return errors.New("bad args")
			}
			return nil
		},
	}
	s := booksvc.New(m, 0)

	if err := s.Update(context.Background(), 1, booksvc.Input{Title: "t", Author: "a", Stock: stockOf(7)}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestList_PassesFilter(t *testing.T) {
	var got bookrepo.Filter
	m := &repoMock{
		listFn: func(ctx context.Context, f bookrepo.Filter) ([]model.Book, error) {
			got = f
			return nil, nil
		},
	}
	s := booksvc.New(m, 0)

	cat := int64(3)
	if _, err := s.List(context.Background(), booksvc.Filter{Title: "go", CategoryID: &cat}); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got.Title != "go" || got.CategoryID == nil || *got.CategoryID != 3 {
		t.Fatalf("filter not forwarded: %+v", got)
	}
}

func TestDetail_NotFound(t *testing.T) {
	m := &repoMock{
		detailFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := booksvc.New(m, 0)

	_, err := s.Detail(context.Background(), 99)
	if booksvc.Code(err) != booksvc.ErrNotFound {
		t.Fatalf("got %v; want %v", booksvc.Code(err), booksvc.ErrNotFound)
	}
}

func TestCreateCategory_EmptyName(t *testing.T) {
	s := booksvc.New(&repoMock{}, 0)
	if _, err := s.CreateCategory(context.Background(), "   "); booksvc.Code(err) != booksvc.ErrBadInput {
		t.Fatalf("expected bad input, got %v", err)
	}
}

func TestCreateCategory_Success(t *testing.T) {
	m := &repoMock{
		createCategoryFn: func(ctx context.Context, name string) (int64, error) { return 5, nil },
	}
	s := booksvc.New(m, 0)

	c, err := s.CreateCategory(context.Background(), " Fiction ")
	if err != nil || c.ID != 5 || c.Name != "Fiction" {
		t.Fatalf("got %+v err=%v", c, err)
	}
}
