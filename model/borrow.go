package model

import "time"

type BorrowStatus string

const (
	BorrowActive   BorrowStatus = "borrowed"
	BorrowReturned BorrowStatus = "returned"
)

type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "pending"
	ReturnConfirmed ReturnStatus = "confirmed"
)

type Borrow struct {
	ID         int64        `db:"id" json:"id"`
	UserID     int64        `db:"user_id" json:"user_id"`
	BookID     int64        `db:"book_id" json:"book_id"`
	BorrowDate time.Time    `db:"borrow_date" json:"borrow_date"`
	ReturnDate time.Time    `db:"return_date" json:"return_date"`
	Status     BorrowStatus `db:"status" json:"status"`
}

type Return struct {
	ID         int64        `db:"id" json:"id"`
	BorrowID   int64        `db:"borrow_id" json:"borrow_id"`
	ReturnDate *time.Time   `db:"return_date" json:"return_date,omitempty"`
	Status     ReturnStatus `db:"status" json:"status"`
}
