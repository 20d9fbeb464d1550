package feed

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mudi-match-api/internal/application/enrichment"
	"mudi-match-api/internal/application/matching"
	"mudi-match-api/internal/application/recommend"
	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
	apperrors "mudi-match-api/pkg/errors"
)

// catalogIndex 固定分数的片库
type catalogIndex struct {
	mu    sync.Mutex
	items []entity.Candidate
	calls int
}

func newCatalog(n int) *catalogIndex {
	idx := &catalogIndex{}
	for i := 1; i <= n; i++ {
		idx.items = append(idx.items, entity.Candidate{
			MovieID: int64(i),
			Score:   1 - float64(i)/100,
			Base:    entity.Baseline{Title: "movie"},
		})
	}
	return idx
}

func (c *catalogIndex) Search(_ context.Context, q matching.IndexQuery) ([]entity.Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++

	var out []entity.Candidate
	for _, it := range c.items {
		if it.Score >= q.Threshold && !slices.Contains(q.ExcludedIDs, it.MovieID) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > q.Count {
		out = out[:q.Count]
	}
	return out, nil
}

// memSessions 与真实会话存储一样按版本拒绝过期写入
// gate 非 nil 时，前 gateN 次 Get 读完后互相等待，模拟两个实例同时读到同一版本
type memSessions struct {
	mu    sync.Mutex
	m     map[string]*State
	gets  int
	gate  *sync.WaitGroup
	gateN int
}

func (s *memSessions) Save(_ context.Context, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = map[string]*State{}
	}
	var stored int64
	if cur, ok := s.m[st.FeedID]; ok {
		stored = cur.Version
	}
	if stored != st.Version-1 {
		return ErrSessionConflict
	}
	s.m[st.FeedID] = st.Clone()
	return nil
}

func (s *memSessions) Get(_ context.Context, id string) (*State, error) {
	s.mu.Lock()
	s.gets++
	wait := s.gate != nil && s.gets <= s.gateN
	var out *State
	if st, ok := s.m[id]; ok {
		out = st.Clone()
	}
	s.mu.Unlock()

	if wait {
		s.gate.Done()
		s.gate.Wait()
	}
	return out, nil
}

type memWatched struct {
	mu sync.Mutex
	m  map[string][]int64
}

func (w *memWatched) Toggle(_ context.Context, user string, id int64) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.m == nil {
		w.m = map[string][]int64{}
	}
	next, on := ToggleWatched(w.m[user], id)
	w.m[user] = next
	return on, nil
}

func (w *memWatched) List(_ context.Context, user string) ([]int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.m[user]), nil
}

type memSaved struct {
	mu    sync.Mutex
	items []*entity.SavedMovie
	err   error
}

func (s *memSaved) Save(_ context.Context, sm *entity.SavedMovie) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, sm)
	return nil
}

// staticRecommender 首屏固定返回片库前 n 部
type staticRecommender struct {
	catalog *catalogIndex
	n       int
}

func (r *staticRecommender) Recommend(_ context.Context, req recommend.Request) (*recommend.Result, error) {
	var items []entity.MovieItem
	for _, c := range r.catalog.items[:r.n] {
		items = append(items, entity.NewBaselineItem(c))
	}
	return &recommend.Result{
		Query:  mood.BuildQuery(mood.Sad, mood.Shift, req.Reason),
		Items:  items,
		Region: "US",
	}, nil
}

// blockingReplenisher 第一次调用阻塞直到放行
type blockingReplenisher struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingReplenisher) Replenish(ctx context.Context, _ mood.Vector, _ []string, _ []int64) (*entity.Candidate, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
		<-b.release
	}
	return &entity.Candidate{MovieID: 99, Score: 0.5}, nil
}

type fixture struct {
	mgr      *Manager
	catalog  *catalogIndex
	sessions *memSessions
	watched  *memWatched
	saved    *memSaved
}

func newFixture(catalogSize, initial int) *fixture {
	catalog := newCatalog(catalogSize)
	f := &fixture{
		catalog:  catalog,
		sessions: &memSessions{},
		watched:  &memWatched{},
		saved:    &memSaved{},
	}
	f.mgr = NewManager(Deps{
		Recommender: &staticRecommender{catalog: catalog, n: initial},
		Replenisher: matching.NewService(catalog, matching.DefaultConfig()),
		Enricher:    enrichment.NewAdapter(nil, enrichment.Config{}),
		Sessions:    f.sessions,
		Watched:     f.watched,
		Saved:       f.saved,
	})
	return f
}

func (f *fixture) start(t *testing.T) *State {
	t.Helper()
	st, err := f.mgr.Start(context.Background(), recommend.Request{UserID: "u1", Mood: "sad", Intention: "shift"})
	require.NoError(t, err)
	f.catalog.calls = 0
	return st
}

func TestManager_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("拒绝后补位恢复数量", func(t *testing.T) {
		f := newFixture(6, 3)
		st := f.start(t)

		res, err := f.mgr.Reject(ctx, st.FeedID, "u1", 2)
		require.NoError(t, err)
		assert.True(t, res.Replenished)
		require.NotNil(t, res.Added)
		assert.Equal(t, int64(4), res.Added.ID)
		assert.Equal(t, 3, res.Displayed)

		got, err := f.mgr.Get(ctx, st.FeedID, "u1")
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 3, 4}, got.DisplayedIDs())
		assert.Equal(t, []int64{2}, got.Rejected)
	})

	t.Run("唯一剩余候选被拒绝后不再出现", func(t *testing.T) {
		f := newFixture(3, 2)
		st := f.start(t)

		res, err := f.mgr.Reject(ctx, st.FeedID, "u1", 1)
		require.NoError(t, err)
		require.NotNil(t, res.Added)
		assert.Equal(t, int64(3), res.Added.ID)

		res, err = f.mgr.Reject(ctx, st.FeedID, "u1", 3)
		require.NoError(t, err)
		assert.False(t, res.Replenished)
		assert.Nil(t, res.Added)
		assert.Equal(t, 1, res.Displayed)

		got, err := f.mgr.Get(ctx, st.FeedID, "u1")
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, got.DisplayedIDs())
		assert.Equal(t, []int64{1, 3}, got.Rejected)
	})

	t.Run("未展示的影片", func(t *testing.T) {
		f := newFixture(6, 3)
		st := f.start(t)
		_, err := f.mgr.Reject(ctx, st.FeedID, "u1", 5)
		assert.ErrorIs(t, err, apperrors.ErrItemNotDisplayed)
		assert.Equal(t, 0, f.catalog.calls)
	})

	t.Run("未知或他人的推荐流", func(t *testing.T) {
		f := newFixture(6, 3)
		st := f.start(t)
		_, err := f.mgr.Reject(ctx, "missing", "u1", 1)
		assert.ErrorIs(t, err, apperrors.ErrFeedNotFound)
		_, err = f.mgr.Reject(ctx, st.FeedID, "someone-else", 1)
		assert.ErrorIs(t, err, apperrors.ErrFeedNotFound)
	})
}

func TestManager_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("收藏并补位", func(t *testing.T) {
		f := newFixture(6, 3)
		st := f.start(t)

		res, err := f.mgr.Accept(ctx, st.FeedID, "u1", 1)
		require.NoError(t, err)
		assert.True(t, res.Replenished)
		assert.Equal(t, int64(4), res.Added.ID)

		require.Len(t, f.saved.items, 1)
		assert.Equal(t, int64(1), f.saved.items[0].MovieID)
		assert.Equal(t, "sad", f.saved.items[0].MoodWhenSaved)
		assert.Equal(t, "u1", f.saved.items[0].UserID)

		got, err := f.mgr.Get(ctx, st.FeedID, "u1")
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 3, 4}, got.DisplayedIDs())
		assert.Equal(t, []int64{1}, got.Accepted)
	})

	t.Run("收藏失败时会话不变", func(t *testing.T) {
		f := newFixture(6, 3)
		f.saved.err = errors.New("db down")
		st := f.start(t)

		_, err := f.mgr.Accept(ctx, st.FeedID, "u1", 1)
		require.Error(t, err)
		assert.Equal(t, apperrors.CategoryDependency, apperrors.CategoryOf(err))
		assert.Equal(t, 0, f.catalog.calls)

		got, err := f.mgr.Get(ctx, st.FeedID, "u1")
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, got.DisplayedIDs())
	})
}

func TestManager_ToggleWatched(t *testing.T) {
	ctx := context.Background()

	t.Run("标记已看补位一条", func(t *testing.T) {
		f := newFixture(6, 3)
		st := f.start(t)

		res, err := f.mgr.ToggleWatched(ctx, st.FeedID, "u1", 2)
		require.NoError(t, err)
		require.NotNil(t, res.Watched)
		assert.True(t, *res.Watched)
		assert.True(t, res.Replenished)
		assert.Equal(t, 4, res.Displayed)
		assert.Equal(t, 1, f.catalog.calls)

		watched, _ := f.watched.List(ctx, "u1")
		assert.Equal(t, []int64{2}, watched)
	})

	t.Run("取消已看不检索", func(t *testing.T) {
		f := newFixture(6, 3)
		st := f.start(t)

		_, err := f.mgr.ToggleWatched(ctx, st.FeedID, "u1", 2)
		require.NoError(t, err)
		calls := f.catalog.calls

		res, err := f.mgr.ToggleWatched(ctx, st.FeedID, "u1", 2)
		require.NoError(t, err)
		assert.False(t, *res.Watched)
		assert.False(t, res.Replenished)
		assert.Equal(t, calls, f.catalog.calls)
	})

	t.Run("已看不进入排除集合", func(t *testing.T) {
		f := newFixture(6, 3)
		st := f.start(t)
		_, err := f.mgr.ToggleWatched(ctx, st.FeedID, "u1", 1)
		require.NoError(t, err)

		got, err := f.mgr.Get(ctx, st.FeedID, "u1")
		require.NoError(t, err)
		assert.True(t, got.IsDisplayed(1))
		assert.NotContains(t, got.Rejected, int64(1))
	})
}

func TestManager_ReplenishGuard(t *testing.T) {
	t.Run("并发触发只检索一次", func(t *testing.T) {
		ctx := context.Background()
		catalog := newCatalog(6)
		sessions := &memSessions{}
		rep := &blockingReplenisher{started: make(chan struct{}), release: make(chan struct{})}
		mgr := NewManager(Deps{
			Recommender: &staticRecommender{catalog: catalog, n: 3},
			Replenisher: rep,
			Enricher:    enrichment.NewAdapter(nil, enrichment.Config{}),
			Sessions:    sessions,
			Watched:     &memWatched{},
			Saved:       &memSaved{},
		})
		st, err := mgr.Start(ctx, recommend.Request{UserID: "u1", Mood: "sad"})
		require.NoError(t, err)

		done := make(chan *ActionResult, 1)
		go func() {
			res, err := mgr.Reject(ctx, st.FeedID, "u1", 1)
			assert.NoError(t, err)
			done <- res
		}()

		select {
		case <-rep.started:
		case <-time.After(2 * time.Second):
			t.Fatal("first replenish never started")
		}

		second, err := mgr.Reject(ctx, st.FeedID, "u1", 2)
		require.NoError(t, err)
		assert.True(t, second.Suppressed)
		assert.False(t, second.Replenished)

		close(rep.release)
		first := <-done
		assert.True(t, first.Replenished)
		assert.False(t, first.Suppressed)
		assert.Equal(t, int32(1), rep.calls.Load())

		got, err := mgr.Get(ctx, st.FeedID, "u1")
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 99}, got.DisplayedIDs())
		assert.Equal(t, []int64{1, 2}, got.Rejected)
	})
}

func TestManager_ExclusionInvariant(t *testing.T) {
	t.Run("已拒绝的影片在会话内不会再出现", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture(30, 5)
		st := f.start(t)
		r := rand.New(rand.NewSource(7))
		rejected := map[int64]bool{}

		for step := 0; step < 60; step++ {
			cur, err := f.mgr.Get(ctx, st.FeedID, "u1")
			require.NoError(t, err)
			if len(cur.Displayed) == 0 {
				break
			}
			id := cur.Displayed[r.Intn(len(cur.Displayed))].ID

			var res *ActionResult
			switch r.Intn(3) {
			case 0:
				res, err = f.mgr.Reject(ctx, st.FeedID, "u1", id)
				rejected[id] = true
			case 1:
				res, err = f.mgr.Accept(ctx, st.FeedID, "u1", id)
			default:
				res, err = f.mgr.ToggleWatched(ctx, st.FeedID, "u1", id)
			}
			require.NoError(t, err)
			if res.Added != nil {
				assert.False(t, rejected[res.Added.ID], "rejected movie %d came back", res.Added.ID)
			}

			after, err := f.mgr.Get(ctx, st.FeedID, "u1")
			require.NoError(t, err)
			for _, shown := range after.DisplayedIDs() {
				assert.False(t, rejected[shown], "rejected movie %d is displayed", shown)
			}
		}
	})
}

func TestState(t *testing.T) {
	st := &State{
		Displayed: []entity.MovieItem{{ID: 1}, {ID: 2}},
		Rejected:  []int64{3},
		Accepted:  []int64{4},
	}

	t.Run("排除集合不含已看", func(t *testing.T) {
		assert.ElementsMatch(t, []int64{1, 2, 3, 4}, st.ExclusionIDs())
	})

	t.Run("纯函数不修改原状态", func(t *testing.T) {
		next, err := Reject(st, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, next.DisplayedIDs())
		assert.Equal(t, []int64{1, 2}, st.DisplayedIDs())
		assert.Equal(t, []int64{3}, st.Rejected)
	})

	t.Run("已排除的影片不会追加", func(t *testing.T) {
		_, added := Append(st, entity.MovieItem{ID: 3})
		assert.False(t, added)
		next, added := Append(st, entity.MovieItem{ID: 9})
		assert.True(t, added)
		assert.Equal(t, []int64{1, 2, 9}, next.DisplayedIDs())
	})

	t.Run("已看切换", func(t *testing.T) {
		w, on := ToggleWatched(nil, 5)
		assert.True(t, on)
		w, on = ToggleWatched(w, 5)
		assert.False(t, on)
		assert.Empty(t, w)
	})
}

func TestLocalGuard(t *testing.T) {
	g := NewLocalGuard()
	release, ok, err := g.TryAcquire(context.Background(), "f1")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = g.TryAcquire(context.Background(), "f1")
	assert.False(t, ok)
	_, ok, _ = g.TryAcquire(context.Background(), "f2")
	assert.True(t, ok)

	release()
	release()
	_, ok, _ = g.TryAcquire(context.Background(), "f1")
	assert.True(t, ok)
}

func TestManager_SharedSessions(t *testing.T) {
	t.Run("两个实例同时拒绝不丢失写入", func(t *testing.T) {
		ctx := context.Background()
		catalog := newCatalog(8)
		sessions := &memSessions{}
		guard := NewLocalGuard()
		newMgr := func() *Manager {
			return NewManager(Deps{
				Recommender: &staticRecommender{catalog: catalog, n: 3},
				Replenisher: matching.NewService(catalog, matching.DefaultConfig()),
				Enricher:    enrichment.NewAdapter(nil, enrichment.Config{}),
				Sessions:    sessions,
				Watched:     &memWatched{},
				Saved:       &memSaved{},
				Guard:       guard,
			})
		}
		a, b := newMgr(), newMgr()

		st, err := a.Start(ctx, recommend.Request{UserID: "u1", Mood: "sad"})
		require.NoError(t, err)
		require.Equal(t, []int64{1, 2, 3}, st.DisplayedIDs())

		var gate sync.WaitGroup
		gate.Add(2)
		sessions.mu.Lock()
		sessions.gets, sessions.gate, sessions.gateN = 0, &gate, 2
		sessions.mu.Unlock()

		var wg sync.WaitGroup
		for i, mgr := range []*Manager{a, b} {
			wg.Add(1)
			go func(mgr *Manager, movieID int64) {
				defer wg.Done()
				_, err := mgr.Reject(ctx, st.FeedID, "u1", movieID)
				assert.NoError(t, err)
			}(mgr, int64(i+1))
		}
		wg.Wait()

		got, err := a.Get(ctx, st.FeedID, "u1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{1, 2}, got.Rejected)
		assert.False(t, got.IsDisplayed(1))
		assert.False(t, got.IsDisplayed(2))
		assert.True(t, got.IsDisplayed(3))
		assert.Greater(t, got.Version, int64(2))
	})

	t.Run("版本冲突耗尽重试按依赖错误返回", func(t *testing.T) {
		ctx := context.Background()
		f := newFixture(6, 3)
		st := f.start(t)
		mgr := NewManager(Deps{
			Replenisher: matching.NewService(f.catalog, matching.DefaultConfig()),
			Enricher:    enrichment.NewAdapter(nil, enrichment.Config{}),
			Sessions:    conflictingSessions{f.sessions},
			Watched:     f.watched,
			Saved:       f.saved,
		})

		_, err := mgr.Reject(ctx, st.FeedID, "u1", 1)
		require.Error(t, err)
		assert.Equal(t, apperrors.CategoryDependency, apperrors.CategoryOf(err))

		got, err := f.mgr.Get(ctx, st.FeedID, "u1")
		require.NoError(t, err)
		assert.True(t, got.IsDisplayed(1))
	})
}

// conflictingSessions 每次写入都报版本冲突
type conflictingSessions struct {
	*memSessions
}

func (conflictingSessions) Save(context.Context, *State) error {
	return ErrSessionConflict
}
