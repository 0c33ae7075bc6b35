package model

const (
	RoleAdmin  = "admin"
	RolePatron = "patron"
)

type User struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         string `db:"role" json:"role"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateUserReq represents the admin user-creation payload
// swagger:model CreateUserReq
type CreateUserReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

// UpdateUserReq represents the admin user-update payload. An empty
// password leaves the stored hash untouched.
// swagger:model UpdateUserReq
type UpdateUserReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
	Role     string `json:"role" validate:"required"`
}
