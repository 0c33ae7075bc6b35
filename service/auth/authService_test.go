package authsvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"libra/model"
	"libra/util/hash"
)

type mockRepo struct {
	byUsernameFn func(ctx context.Context, username string) (*model.User, error)
}

func (m *mockRepo) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.byUsernameFn(ctx, username)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error         { return nil }
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) { return nil, nil }
func (m *mockRepo) List(ctx context.Context) ([]model.User, error)          { return nil, nil }
func (m *mockRepo) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	return false, nil
}
func (m *mockRepo) Update(ctx context.Context, u *model.User) error { return nil }
func (m *mockRepo) Delete(ctx context.Context, id int64) error      { return nil }

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	pw := "supersecret"
	hashed := mustHash(t, pw)

	m := &mockRepo{
		byUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			require.Equal(t, "halim", username)
			return &model.User{ID: 7, Username: "halim", PasswordHash: hashed, Role: model.RoleAdmin}, nil
		},
	}
	svc := New(m, "test-secret", 1, 0)

	u, tok, err := svc.Login(ctx, model.LoginReq{Username: "halim", Password: pw})
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(7), u.ID)
	require.Equal(t, model.RoleAdmin, u.Role)
}

func TestLogin_BadInput(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret", 1, 0)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Username: "  ", Password: ""})
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestLogin_UserNotFound(t *testing.T) {
	m := &mockRepo{
		byUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := New(m, "test-secret", 1, 0)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Username: "missing", Password: "whatever"})
	require.Error(t, err)
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_StorageErrorPropagates(t *testing.T) {
	m := &mockRepo{
		byUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, context.DeadlineExceeded
		},
	}
	svc := New(m, "test-secret", 1, 0)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Username: "halim", Password: "whatever"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotEqual(t, ErrInvalidCreds, Code(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed := mustHash(t, "correct-password")
	m := &mockRepo{
		byUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: 7, Username: "halim", PasswordHash: hashed, Role: model.RolePatron}, nil
		},
	}
	svc := New(m, "test-secret", 1, 0)

	_, _, err := svc.Login(context.Background(), model.LoginReq{Username: "halim", Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, ErrInvalidCreds, Code(err))
}
