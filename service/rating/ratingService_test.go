package ratingsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"libra/model"
)

type repoMock struct {
	ratings  map[[2]int64]int
	eligible map[[2]int64]bool
}

func newRepoMock() *repoMock {
	return &repoMock{
		ratings:  map[[2]int64]int{},
		eligible: map[[2]int64]bool{},
	}
}

func (m *repoMock) CanRate(ctx context.Context, userID, bookID int64) (bool, error) {
	return m.eligible[[2]int64{userID, bookID}], nil
}

func (m *repoMock) Upsert(ctx context.Context, rt *model.Rating) error {
	m.ratings[[2]int64{rt.UserID, rt.BookID}] = rt.Rating
	return nil
}

func (m *repoMock) Summary(ctx context.Context, bookID int64) (*model.RatingSummary, error) {
	var sum, n int64
	for k, v := range m.ratings {
		if k[1] == bookID {
			sum += int64(v)
			n++
		}
	}
	out := &model.RatingSummary{Total: n}
	if n > 0 {
		out.AvgRating = float64(sum) / float64(n)
	}
	return out, nil
}

func TestRate_NotAllowedBeforeConfirmedReturn(t *testing.T) {
	m := newRepoMock()
	svc := New(m, 0)

	_, err := svc.Rate(context.Background(), 1, 1, 4)
	require.Error(t, err)
	require.Equal(t, ErrNotAllowed, Code(err))
	require.Empty(t, m.ratings)
}

func TestRate_RangeChecked(t *testing.T) {
	m := newRepoMock()
	m.eligible[[2]int64{1, 1}] = true
	svc := New(m, 0)

	for _, bad := range []int{0, -1, 6} {
		_, err := svc.Rate(context.Background(), 1, 1, bad)
		require.Equal(t, ErrBadRating, Code(err))
	}
}

func TestRate_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	m.eligible[[2]int64{1, 1}] = true
	svc := New(m, 0)

	rt, err := svc.Rate(ctx, 1, 1, 4)
	require.NoError(t, err)
	require.Equal(t, 4, rt.Rating)

	_, err = svc.Rate(ctx, 1, 1, 2)
	require.NoError(t, err)

	require.Len(t, m.ratings, 1)
	require.Equal(t, 2, m.ratings[[2]int64{1, 1}])
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	m.eligible[[2]int64{1, 1}] = true
	m.eligible[[2]int64{2, 1}] = true
	svc := New(m, 0)

	out, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), out.Total)

	_, err = svc.Rate(ctx, 1, 1, 4)
	require.NoError(t, err)

	out, err = svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Total)
	require.Equal(t, 4.0, out.AvgRating)

	_, err = svc.Rate(ctx, 2, 1, 5)
	require.NoError(t, err)

	out, err = svc.Summary(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), out.Total)
	require.Equal(t, 4.5, out.AvgRating)
}
