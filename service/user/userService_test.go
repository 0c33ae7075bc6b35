package usersvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"libra/model"
	"libra/util/hash"
)

type mockRepo struct {
	createFn        func(ctx context.Context, u *model.User) error
	byIDFn          func(ctx context.Context, id int64) (*model.User, error)
	usernameTakenFn func(ctx context.Context, username string, excludeID int64) (bool, error)
	updateFn        func(ctx context.Context, u *model.User) error
	deleteFn        func(ctx context.Context, id int64) error
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		u.ID = 1
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, sql.ErrNoRows
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) List(ctx context.Context) ([]model.User, error) { return nil, nil }

func (m *mockRepo) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	if m.usernameTakenFn == nil {
		return false, nil
	}
	return m.usernameTakenFn(ctx, username, excludeID)
}

func (m *mockRepo) Update(ctx context.Context, u *model.User) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, u)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

func TestCreate_Validation(t *testing.T) {
	svc := New(&mockRepo{}, 0)
	ctx := context.Background()

	cases := []model.CreateUserReq{
		{Username: "ab", Password: "123456"},                     // too short
		{Username: "this_username_is_way_too_long_x", Password: "123456"},
		{Username: "bad name", Password: "123456"},               // space
		{Username: "halim", Password: "123"},                     // short password
		{Username: "halim", Password: "123456", Role: "teacher"}, // unknown role
	}
	for _, c := range cases {
		_, err := svc.Create(ctx, c)
		require.Error(t, err, "req %+v", c)
		require.Equal(t, ErrBadInput, Code(err))
	}
}

func TestCreate_DefaultsToPatron(t *testing.T) {
	var stored *model.User
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			stored = u
			return nil
		},
	}
	svc := New(m, 0)

	u, err := svc.Create(context.Background(), model.CreateUserReq{Username: "halim", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, model.RolePatron, u.Role)
	require.True(t, hash.Check(stored.PasswordHash, "supersecret"))
}

func TestUpdate_NotFound(t *testing.T) {
	svc := New(&mockRepo{}, 0)
	_, err := svc.Update(context.Background(), 9, model.UpdateUserReq{Username: "halim", Role: model.RoleAdmin})
	require.Equal(t, ErrNotFound, Code(err))
}

func TestUpdate_UsernameTaken(t *testing.T) {
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "halim", Role: model.RolePatron}, nil
		},
		usernameTakenFn: func(ctx context.Context, username string, excludeID int64) (bool, error) {
			return username == "taken", nil
		},
	}
	svc := New(m, 0)

	_, err := svc.Update(context.Background(), 9, model.UpdateUserReq{Username: "taken", Role: model.RolePatron})
	require.Equal(t, ErrUsernameTaken, Code(err))
}

func TestUpdate_KeepsPasswordWhenEmpty(t *testing.T) {
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "halim", PasswordHash: "oldhash", Role: model.RolePatron}, nil
		},
	}
	svc := New(m, 0)

	u, err := svc.Update(context.Background(), 9, model.UpdateUserReq{Username: "halim2", Role: model.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, "oldhash", u.PasswordHash)
	require.Equal(t, "halim2", u.Username)
	require.Equal(t, model.RoleAdmin, u.Role)
}

func TestDelete_NotFound(t *testing.T) {
	m := &mockRepo{
		deleteFn: func(ctx context.Context, id int64) error { return sql.ErrNoRows },
	}
	svc := New(m, 0)
	err := svc.Delete(context.Background(), 9)
	require.Equal(t, ErrNotFound, Code(err))
}
