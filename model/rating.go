package model

type Rating struct {
	UserID int64 `db:"user_id" json:"user_id"`
	BookID int64 `db:"book_id" json:"book_id"`
	Rating int   `db:"rating" json:"rating"`
}

type RatingSummary struct {
	AvgRating float64 `db:"avg_rating" json:"avg_rating"`
	Total     int64   `db:"total" json:"total"`
}

// RateReq represents the rating payload
// swagger:model RateReq
type RateReq struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}
