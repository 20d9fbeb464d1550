package recommend

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mudi-match-api/internal/application/enrichment"
	"mudi-match-api/internal/application/matching"
	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
	apperrors "mudi-match-api/pkg/errors"
)

type fakeSearcher struct {
	result *matching.Result
	err    error
	last   matching.Request
	calls  int
}

func (f *fakeSearcher) Search(_ context.Context, req matching.Request) (*matching.Result, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	entries []*entity.MoodEntry
	err     error
}

func (f *fakePublisher) PublishMoodEntry(_ context.Context, e *entity.MoodEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return f.err
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func newService(s Searcher, p MoodEntryPublisher) *Service {
	return NewService(s, enrichment.NewAdapter(nil, enrichment.Config{}), p, DefaultLimits())
}

func twoCandidates() *matching.Result {
	return &matching.Result{Candidates: []entity.Candidate{
		{MovieID: 10, Score: 0.9, Base: entity.Baseline{Title: "A"}},
		{MovieID: 11, Score: 0.8, Base: entity.Baseline{Title: "B"}},
	}}
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		req   Request
		field string
	}{
		{"缺少情绪", Request{Mood: " "}, "mood"},
		{"未知情绪", Request{Mood: "hungry"}, "mood"},
		{"未知意图", Request{Mood: "sad", Intention: "wander"}, "intention"},
		{"数量过小", Request{Mood: "sad", Limit: intPtr(0)}, "limit"},
		{"数量过大", Request{Mood: "sad", Limit: intPtr(51)}, "limit"},
		{"阈值过小", Request{Mood: "sad", Threshold: floatPtr(0.001)}, "threshold"},
		{"阈值过大", Request{Mood: "sad", Threshold: floatPtr(1.5)}, "threshold"},
		{"阈值非数字", Request{Mood: "sad", Threshold: floatPtr(math.NaN())}, "threshold"},
		{"阈值为无穷大", Request{Mood: "sad", Threshold: floatPtr(math.Inf(1))}, "threshold"},
		{"排除列表过长", Request{Mood: "sad", ExcludedIDs: make([]int64, 1001)}, "exclude"},
		{"地区格式错误", Request{Mood: "sad", Region: "USA"}, "region"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeSearcher{result: twoCandidates()}
			_, err := newService(s, nil).Recommend(ctx, tc.req)
			require.Error(t, err)
			appErr := apperrors.AsAppError(err)
			assert.Equal(t, apperrors.CategoryValidation, appErr.Category())
			assert.Equal(t, tc.field, appErr.Field)
			assert.Equal(t, 400, appErr.HTTPStatus)
			assert.Zero(t, s.calls)
		})
	}
}

func TestService_Recommend(t *testing.T) {
	ctx := context.Background()

	t.Run("默认参数与转向查询", func(t *testing.T) {
		s := &fakeSearcher{result: twoCandidates()}
		pub := &fakePublisher{}
		res, err := newService(s, pub).Recommend(ctx, Request{UserID: "u1", Mood: "Sad", Intention: "shift", Region: "gb"})
		require.NoError(t, err)

		assert.Equal(t, 20, res.Limit)
		assert.InDelta(t, 0.6, res.Threshold, 1e-9)
		assert.Equal(t, "GB", res.Region)
		assert.Equal(t, mood.Happy, res.Query.TargetMood)
		assert.Equal(t, mood.CanonicalVector(mood.Happy), s.last.Vector)
		assert.Equal(t, 20, s.last.Limit)

		require.Len(t, res.Items, 2)
		assert.Equal(t, int64(10), res.Items[0].ID)
		assert.False(t, res.Items[0].Enriched)

		require.Len(t, pub.entries, 1)
		assert.Equal(t, "u1", pub.entries[0].UserID)
		assert.Equal(t, "sad", pub.entries[0].Mood)
		assert.Equal(t, "happy", pub.entries[0].TargetMood)
		assert.Equal(t, 2, pub.entries[0].ResultCount)
	})

	t.Run("显式参数透传", func(t *testing.T) {
		s := &fakeSearcher{result: twoCandidates()}
		_, err := newService(s, nil).Recommend(ctx, Request{
			Mood: "calm", Limit: intPtr(5), Threshold: floatPtr(0.3), ExcludedIDs: []int64{1, 2},
		})
		require.NoError(t, err)
		assert.Equal(t, 5, s.last.Limit)
		assert.InDelta(t, 0.3, s.last.Threshold, 1e-9)
		assert.Equal(t, []int64{1, 2}, s.last.ExcludedIDs)
	})

	t.Run("无候选返回无匹配", func(t *testing.T) {
		s := &fakeSearcher{result: &matching.Result{Fallback: true}}
		pub := &fakePublisher{}
		_, err := newService(s, pub).Recommend(ctx, Request{Mood: "angry", ExcludedIDs: []int64{7}})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrNoMatch)
		assert.Equal(t, 404, apperrors.AsAppError(err).HTTPStatus)
		require.Len(t, pub.entries, 1)
		assert.True(t, pub.entries[0].Fallback)
	})

	t.Run("检索故障返回依赖错误", func(t *testing.T) {
		dep := apperrors.NewDependency(apperrors.CodeVectorDBError, "vector search failed", errors.New("down"))
		s := &fakeSearcher{err: dep}
		_, err := newService(s, nil).Recommend(ctx, Request{Mood: "sad"})
		require.Error(t, err)
		assert.Equal(t, apperrors.CategoryDependency, apperrors.CategoryOf(err))
	})

	t.Run("发布失败不影响结果", func(t *testing.T) {
		s := &fakeSearcher{result: twoCandidates()}
		pub := &fakePublisher{err: errors.New("stream down")}
		res, err := newService(s, pub).Recommend(ctx, Request{Mood: "sad"})
		require.NoError(t, err)
		assert.Len(t, res.Items, 2)
	})
}
