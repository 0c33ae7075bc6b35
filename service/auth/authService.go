package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"libra/model"
	userrepo "libra/repository/user"
	"libra/util/hash"
	jwtutil "libra/util/jwt"
)

type ErrCode string

const (
	ErrInvalidCreds ErrCode = "INVALID_CREDENTIALS"
	ErrBadInput     ErrCode = "BAD_INPUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// Login verifies credentials and issues a token carrying {id, role}.
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
}

type service struct {
	ur       userrepo.Repo
	secret   string
	ttlHours int
	timeout  time.Duration
}

func New(ur userrepo.Repo, secret string, ttlHours int, timeout time.Duration) Service {
	return &service{ur: ur, secret: secret, ttlHours: ttlHours, timeout: timeout}
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, "", makeErr(ErrBadInput)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	u, err := s.ur.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// a missing user and a wrong password look the same to callers
			return nil, "", makeErr(ErrInvalidCreds)
		}
		return nil, "", err
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", makeErr(ErrInvalidCreds)
	}

	token, err := jwtutil.Issue(s.secret, u.ID, u.Role, s.ttlHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
