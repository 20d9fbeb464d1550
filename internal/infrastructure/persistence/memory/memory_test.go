package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mudi-match-api/internal/application/feed"
	"mudi-match-api/internal/application/matching"
	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
)

func seedIndex(t *testing.T) *MovieIndex {
	t.Helper()
	idx := NewMovieIndex()
	require.NoError(t, idx.Upsert(context.Background(), []matching.IndexedMovie{
		{MovieID: 1, Vector: mood.CanonicalVector(mood.Calm), Mood: mood.Calm},
		{MovieID: 2, Vector: mood.CanonicalVector(mood.Relaxed), Mood: mood.Relaxed},
		{MovieID: 3, Vector: mood.CanonicalVector(mood.Angry), Mood: mood.Angry},
		{MovieID: 4, Vector: mood.CanonicalVector(mood.Calm), Mood: mood.Calm},
	}))
	return idx
}

func TestMovieIndex_Search(t *testing.T) {
	ctx := context.Background()
	idx := seedIndex(t)

	t.Run("同分按ID升序", func(t *testing.T) {
		got, err := idx.Search(ctx, matching.IndexQuery{Vector: mood.CanonicalVector(mood.Calm), Count: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].MovieID)
		assert.Equal(t, int64(4), got[1].MovieID)
		assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	})

	t.Run("排除与阈值", func(t *testing.T) {
		got, err := idx.Search(ctx, matching.IndexQuery{
			Vector:      mood.CanonicalVector(mood.Calm),
			Threshold:   0.9,
			Count:       10,
			ExcludedIDs: []int64{1},
		})
		require.NoError(t, err)
		for _, c := range got {
			assert.NotEqual(t, int64(1), c.MovieID)
			assert.GreaterOrEqual(t, c.Score, 0.9)
		}
		assert.NotEmpty(t, got)
	})

	t.Run("覆盖写入", func(t *testing.T) {
		require.NoError(t, idx.Upsert(ctx, []matching.IndexedMovie{{MovieID: 3, Vector: mood.CanonicalVector(mood.Calm)}}))
		assert.Equal(t, 4, idx.Len())
	})

	t.Run("已取消的上下文", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := idx.Search(cctx, matching.IndexQuery{Vector: mood.Uniform, Count: 1})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	st := &feed.State{FeedID: "f1", Version: 1, UserID: "u1", Displayed: []entity.MovieItem{{ID: 1}}}
	require.NoError(t, s.Save(ctx, st))

	t.Run("读取的是副本", func(t *testing.T) {
		got, err := s.Get(ctx, "f1")
		require.NoError(t, err)
		got.Displayed[0].ID = 99
		again, _ := s.Get(ctx, "f1")
		assert.Equal(t, int64(1), again.Displayed[0].ID)
	})

	t.Run("基于旧版本的写入被拒绝", func(t *testing.T) {
		first, err := s.Get(ctx, "f1")
		require.NoError(t, err)
		second, err := s.Get(ctx, "f1")
		require.NoError(t, err)

		first.Version++
		first.Rejected = []int64{1}
		require.NoError(t, s.Save(ctx, first))

		second.Version++
		second.Rejected = []int64{2}
		assert.ErrorIs(t, s.Save(ctx, second), feed.ErrSessionConflict)

		got, _ := s.Get(ctx, "f1")
		assert.Equal(t, []int64{1}, got.Rejected)
		assert.Equal(t, int64(2), got.Version)
	})

	t.Run("新会话版本必须从 1 开始", func(t *testing.T) {
		err := s.Save(ctx, &feed.State{FeedID: "f2", Version: 3})
		assert.ErrorIs(t, err, feed.ErrSessionConflict)
	})

	t.Run("不存在返回nil", func(t *testing.T) {
		got, err := s.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("过期后不可见", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		got, err := s.Get(ctx, "f1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestWatchedStore(t *testing.T) {
	ctx := context.Background()
	s := NewWatchedStore()

	on, err := s.Toggle(ctx, "u1", 5)
	require.NoError(t, err)
	assert.True(t, on)
	_, _ = s.Toggle(ctx, "u1", 6)

	list, _ := s.List(ctx, "u1")
	assert.Equal(t, []int64{5, 6}, list)

	on, _ = s.Toggle(ctx, "u1", 5)
	assert.False(t, on)
	list, _ = s.List(ctx, "u1")
	assert.Equal(t, []int64{6}, list)

	other, _ := s.List(ctx, "u2")
	assert.Empty(t, other)
}
