package usersvc

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"libra/model"
	userrepo "libra/repository/user"
	"libra/util/hash"
)

type ErrCode string

const (
	ErrNotFound      ErrCode = "USER_NOT_FOUND"
	ErrUsernameTaken ErrCode = "USERNAME_TAKEN"
	ErrBadInput      ErrCode = "BAD_INPUT"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode) error   { return codedError{code: c} }
func badInput(msg string) error { return codedError{code: ErrBadInput, msg: msg} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func validateUsername(username string) error {
	if len(username) < 4 || len(username) > 20 {
		return badInput("username must be 4-20 characters")
	}
	if !usernameRe.MatchString(username) {
		return badInput("username can only contain letters, numbers and underscores")
	}
	return nil
}

func validateRole(role string) error {
	if role != model.RoleAdmin && role != model.RolePatron {
		return badInput("invalid role")
	}
	return nil
}

type Service interface {
	Create(ctx context.Context, req model.CreateUserReq) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id int64, req model.UpdateUserReq) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	ur      userrepo.Repo
	timeout time.Duration
}

func New(ur userrepo.Repo, timeout time.Duration) Service {
	return &service{ur: ur, timeout: timeout}
}

func (s *service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *service) Create(ctx context.Context, req model.CreateUserReq) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RolePatron
	}
	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}
	if len(req.Password) < 6 {
		return nil, badInput("password must be at least 6 characters")
	}
	if err := validateRole(role); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{Username: req.Username, PasswordHash: hashed, Role: role}
	if err := s.ur.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrUsernameTaken)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) List(ctx context.Context) ([]model.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.ur.List(ctx)
}

func (s *service) Update(ctx context.Context, id int64, req model.UpdateUserReq) (*model.User, error) {
	if err := validateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := validateRole(req.Role); err != nil {
		return nil, err
	}
	if req.Password != "" && len(req.Password) < 6 {
		return nil, badInput("password must be at least 6 characters")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	u, err := s.ur.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	taken, err := s.ur.UsernameTaken(ctx, req.Username, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, makeErr(ErrUsernameTaken)
	}

	u.Username = req.Username
	u.Role = req.Role
	if req.Password != "" {
		hashed, err := hash.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hashed
	}

	if err := s.ur.Update(ctx, u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		if isUniqueViolation(err) {
			return nil, makeErr(ErrUsernameTaken)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.ur.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
