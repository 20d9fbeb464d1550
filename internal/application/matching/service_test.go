package matching

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
	apperrors "mudi-match-api/pkg/errors"
)

// fakeIndex 按预置分数返回候选，记录每次调用
type fakeIndex struct {
	mu       sync.Mutex
	items    []entity.Candidate
	calls    []IndexQuery
	err      error
	delay    time.Duration
	ignoreEx bool
}

func (f *fakeIndex) Search(ctx context.Context, q IndexQuery) ([]entity.Candidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	ex := newIDSet(q.ExcludedIDs)
	out := make([]entity.Candidate, 0, len(f.items))
	for _, c := range f.items {
		if c.Score < q.Threshold {
			continue
		}
		if !f.ignoreEx && ex.has(c.MovieID) {
			continue
		}
		out = append(out, c)
		if len(out) == q.Count {
			break
		}
	}
	return out, nil
}

func cand(id int64, score float64, keywords ...string) entity.Candidate {
	return entity.Candidate{MovieID: id, Score: score, Base: entity.Baseline{Title: "m", Keywords: keywords}}
}

func ids(cs []entity.Candidate) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		out[i] = c.MovieID
	}
	return out
}

func newTestService(idx SimilarityIndex) *Service {
	cfg := DefaultConfig()
	cfg.SearchTimeout = 50 * time.Millisecond
	return NewService(idx, cfg)
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	calm := mood.CanonicalVector(mood.Calm)

	t.Run("主检索命中", func(t *testing.T) {
		idx := &fakeIndex{items: []entity.Candidate{
			cand(1, 0.95), cand(2, 0.9), cand(3, 0.85), cand(4, 0.8), cand(5, 0.75), cand(6, 0.7), cand(7, 0.2),
		}}
		res, err := newTestService(idx).Search(ctx, Request{Vector: calm, Threshold: 0.6, Limit: 5})
		require.NoError(t, err)
		assert.False(t, res.Fallback)
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(res.Candidates))
		require.Len(t, idx.calls, 1)
		assert.Equal(t, calm, idx.calls[0].Vector)
	})

	t.Run("主检索为空时兜底一次", func(t *testing.T) {
		idx := &fakeIndex{items: []entity.Candidate{cand(1, 0.5), cand(2, 0.3), cand(3, 0.15), cand(4, 0.05)}}
		res, err := newTestService(idx).Search(ctx, Request{Vector: calm, Threshold: 0.6, Limit: 5})
		require.NoError(t, err)
		assert.True(t, res.Fallback)
		assert.Equal(t, []int64{1, 2, 3}, ids(res.Candidates))
		require.Len(t, idx.calls, 2)
		assert.Equal(t, 0.6, idx.calls[0].Threshold)
		assert.Equal(t, 0.1, idx.calls[1].Threshold)
		assert.Equal(t, idx.calls[0].Count, idx.calls[1].Count)
	})

	t.Run("兜底后仍为空不再重试", func(t *testing.T) {
		idx := &fakeIndex{items: []entity.Candidate{cand(1, 0.05)}}
		res, err := newTestService(idx).Search(ctx, Request{Vector: calm, Threshold: 0.6, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, res.Candidates)
		assert.Len(t, idx.calls, 2)
	})

	t.Run("阈值不高于兜底阈值时不再兜底", func(t *testing.T) {
		for _, threshold := range []float64{0.1, 0.05} {
			idx := &fakeIndex{items: []entity.Candidate{cand(1, 0.02)}}
			res, err := newTestService(idx).Search(ctx, Request{Vector: calm, Threshold: threshold, Limit: 5})
			require.NoError(t, err)
			assert.False(t, res.Fallback)
			assert.Empty(t, res.Candidates)
			assert.Len(t, idx.calls, 1, "threshold %v", threshold)
		}
	})

	t.Run("请求数量包含排除数并在客户端再过滤", func(t *testing.T) {
		idx := &fakeIndex{ignoreEx: true, items: []entity.Candidate{
			cand(1, 0.95), cand(2, 0.9), cand(3, 0.85), cand(4, 0.8),
		}}
		res, err := newTestService(idx).Search(ctx, Request{Vector: calm, Threshold: 0.6, Limit: 2, ExcludedIDs: []int64{1, 3}})
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 4}, ids(res.Candidates))
		assert.Equal(t, 4, idx.calls[0].Count)
		assert.Equal(t, []int64{1, 3}, idx.calls[0].ExcludedIDs)
	})

	t.Run("后端失败按依赖错误返回", func(t *testing.T) {
		idx := &fakeIndex{err: assert.AnError}
		_, err := newTestService(idx).Search(ctx, Request{Vector: calm, Threshold: 0.6, Limit: 5})
		require.Error(t, err)
		assert.Equal(t, apperrors.CategoryDependency, apperrors.CategoryOf(err))
		assert.Len(t, idx.calls, 1)
	})

	t.Run("超时视为零候选并进入兜底", func(t *testing.T) {
		idx := &fakeIndex{delay: time.Second, items: []entity.Candidate{cand(1, 0.9)}}
		res, err := newTestService(idx).Search(ctx, Request{Vector: calm, Threshold: 0.6, Limit: 5})
		require.NoError(t, err)
		assert.True(t, res.Fallback)
		assert.Empty(t, res.Candidates)
		assert.Len(t, idx.calls, 2)
	})

	t.Run("主题加分只影响排序", func(t *testing.T) {
		idx := &fakeIndex{items: []entity.Candidate{
			cand(1, 0.90, "romance"),
			cand(2, 0.88, "courtroom", "justice", "revenge"),
			cand(3, 0.70, "women's empowerment", "vindication", "justice"),
		}}
		res, err := newTestService(idx).Search(ctx, Request{
			Vector:    mood.CanonicalVector(mood.Energetic),
			ThemeTags: []string{"justice", "empowerment", "vindication"},
			Threshold: 0.6,
			Limit:     3,
		})
		require.NoError(t, err)
		// 3: 0.70+0.15, 2: 0.88+0.05, 1: 0.90
		assert.Equal(t, []int64{2, 1, 3}, ids(res.Candidates))
		assert.Equal(t, 0.88, res.Candidates[0].Score)
	})

	t.Run("相同输入结果一致", func(t *testing.T) {
		idx := &fakeIndex{items: []entity.Candidate{cand(5, 0.3), cand(4, 0.3), cand(3, 0.3), cand(2, 0.2)}}
		svc := newTestService(idx)
		first, err := svc.Search(ctx, Request{Vector: calm, Threshold: 0.6, Limit: 10})
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := svc.Search(ctx, Request{Vector: calm, Threshold: 0.6, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, ids(first.Candidates), ids(again.Candidates))
		}
		assert.Equal(t, []int64{3, 4, 5, 2}, ids(first.Candidates))
	})

	t.Run("非法数量", func(t *testing.T) {
		_, err := newTestService(&fakeIndex{}).Search(ctx, Request{Vector: calm, Threshold: 0.6})
		assert.Equal(t, apperrors.CategoryValidation, apperrors.CategoryOf(err))
	})
}

func TestService_Replenish(t *testing.T) {
	ctx := context.Background()
	v := mood.CanonicalVector(mood.Sad)

	t.Run("按档位放宽直到命中", func(t *testing.T) {
		idx := &fakeIndex{items: []entity.Candidate{cand(1, 0.25), cand(2, 0.08)}}
		got, err := newTestService(idx).Replenish(ctx, v, nil, []int64{1})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(2), got.MovieID)
		require.Len(t, idx.calls, 3)
		assert.Equal(t, []float64{0.3, 0.1, 0.05}, []float64{idx.calls[0].Threshold, idx.calls[1].Threshold, idx.calls[2].Threshold})
		assert.Equal(t, []int{20, 50, 100}, []int{idx.calls[0].Count, idx.calls[1].Count, idx.calls[2].Count})
	})

	t.Run("首档命中即返回", func(t *testing.T) {
		idx := &fakeIndex{items: []entity.Candidate{cand(7, 0.8), cand(8, 0.7)}}
		got, err := newTestService(idx).Replenish(ctx, v, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.MovieID)
		assert.Len(t, idx.calls, 1)
	})

	t.Run("全部排除时返回空", func(t *testing.T) {
		idx := &fakeIndex{ignoreEx: true, items: []entity.Candidate{cand(1, 0.9), cand(2, 0.5)}}
		got, err := newTestService(idx).Replenish(ctx, v, nil, []int64{1, 2})
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Len(t, idx.calls, 3)
	})

	t.Run("后端失败", func(t *testing.T) {
		idx := &fakeIndex{err: assert.AnError}
		_, err := newTestService(idx).Replenish(ctx, v, nil, nil)
		assert.Equal(t, apperrors.CategoryDependency, apperrors.CategoryOf(err))
	})
}

func TestThemeBoost(t *testing.T) {
	tags := []string{"justice", "empowerment", "vindication"}
	assert.Equal(t, 0.0, themeBoost(nil, tags, 0.05, 0.15))
	assert.InDelta(t, 0.05, themeBoost([]string{"Social Justice"}, tags, 0.05, 0.15), 1e-9)
	assert.InDelta(t, 0.10, themeBoost([]string{"justice", "empowerment"}, tags, 0.05, 0.15), 1e-9)
	assert.InDelta(t, 0.10, themeBoost([]string{"justice", "vindication", "empowerment"}, tags, 0.05, 0.10), 1e-9)
}
