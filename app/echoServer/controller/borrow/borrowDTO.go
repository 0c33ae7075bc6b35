package borrow

type CreateBorrowReq struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}

type RequestReturnReq struct {
	BorrowID int64 `json:"borrow_id" validate:"required,gt=0"`
}
