package model

type Book struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Author      string  `db:"author" json:"author"`
	Stock       int64   `db:"stock" json:"stock"`
	Description string  `db:"description" json:"description"`
	Image       *string `db:"image" json:"image,omitempty"`
	CategoryID  *int64  `db:"category_id" json:"category_id,omitempty"`
	// Category is the joined category name, empty when the book has none.
	Category *string `db:"category" json:"category,omitempty"`
}

type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CreateCategoryReq represents the category creation payload
// swagger:model CreateCategoryReq
type CreateCategoryReq struct {
	Name string `json:"name" validate:"required"`
}
