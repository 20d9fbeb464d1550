package feed

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mudi-match-api/internal/application/recommend"
	"mudi-match-api/internal/domain/entity"
	apperrors "mudi-match-api/pkg/errors"
	"mudi-match-api/pkg/logger"
	"mudi-match-api/pkg/metrics"
	"mudi-match-api/pkg/tracer"
)

// Recommender 首屏推荐（由 recommend.Service 实现）
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error)
}

// ActionResult 单次反馈操作的结果
type ActionResult struct {
	Replenished bool              `json:"replenished"`
	Added       *entity.MovieItem `json:"added,omitempty"`
	Suppressed  bool              `json:"suppressed"`
	Watched     *bool             `json:"watched,omitempty"`
	Displayed   int               `json:"displayed"`
}

// Manager 推荐流管理器
type Manager struct {
	recommender Recommender
	replenisher Replenisher
	enricher    Enricher
	sessions    SessionStore
	watched     WatchedStore
	saved       SavedCollection
	guard       ReplenishGuard
	events      EventPublisher
	locks       *keyedMutex
}

// Deps 管理器依赖，events 可为 nil
type Deps struct {
	Recommender Recommender
	Replenisher Replenisher
	Enricher    Enricher
	Sessions    SessionStore
	Watched     WatchedStore
	Saved       SavedCollection
	Guard       ReplenishGuard
	Events      EventPublisher
}

// NewManager 创建推荐流管理器
func NewManager(d Deps) *Manager {
	guard := d.Guard
	if guard == nil {
		guard = NewLocalGuard()
	}
	return &Manager{
		recommender: d.Recommender,
		replenisher: d.Replenisher,
		enricher:    d.Enricher,
		sessions:    d.Sessions,
		watched:     d.Watched,
		saved:       d.Saved,
		guard:       guard,
		events:      d.Events,
		locks:       newKeyedMutex(),
	}
}

// Start 执行首屏推荐并创建推荐流会话
func (m *Manager) Start(ctx context.Context, req recommend.Request) (*State, error) {
	ctx, span := tracer.Start(ctx, "feed.Manager.Start")
	defer span.End()

	res, err := m.recommender.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	state := &State{
		FeedID:     uuid.NewString(),
		Version:    1,
		UserID:     req.UserID,
		Mood:       res.Query.Mood,
		Intention:  res.Query.Intention,
		Reason:     res.Query.Reason,
		TargetMood: res.Query.TargetMood,
		Vector:     res.Query.Vector,
		ThemeTags:  res.Query.ThemeTags,
		Region:     res.Region,
		Displayed:  res.Items,
		Rejected:   append([]int64{}, req.ExcludedIDs...),
		Accepted:   []int64{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.sessions.Save(ctx, state); err != nil {
		return nil, apperrors.NewDependency(apperrors.CodeCacheError, "failed to store feed session", err)
	}

	ctx = logger.WithContext(ctx, logger.FeedIDKey, state.FeedID)
	span.SetAttributes(attribute.String("feed_id", state.FeedID))
	logger.Info(ctx, "feed started", "mood", state.Mood, "displayed", len(state.Displayed))
	m.publish(ctx, state, 0, entity.FeedActionStart, nil)
	return state, nil
}

// Get 读取推荐流，非本人的会话视为不存在
func (m *Manager) Get(ctx context.Context, feedID, userID string) (*State, error) {
	state, err := m.sessions.Get(ctx, feedID)
	if err != nil {
		return nil, apperrors.NewDependency(apperrors.CodeCacheError, "failed to load feed session", err)
	}
	if state == nil || state.UserID != userID {
		return nil, apperrors.ErrFeedNotFound
	}
	return state, nil
}

// Reject 拒绝影片并补位一条
func (m *Manager) Reject(ctx context.Context, feedID, userID string, movieID int64) (*ActionResult, error) {
	ctx, span := m.startAction(ctx, "feed.Manager.Reject", feedID, movieID)
	defer span.End()

	state, err := m.mutate(ctx, feedID, userID, func(s *State) (*State, error) {
		return Reject(s, movieID)
	})
	if err != nil {
		return nil, err
	}

	result := m.replenish(ctx, state, "reject")
	m.publish(ctx, state, movieID, entity.FeedActionReject, result)
	return result, nil
}

// Accept 收藏影片并补位一条；收藏失败时会话不变
func (m *Manager) Accept(ctx context.Context, feedID, userID string, movieID int64) (*ActionResult, error) {
	ctx, span := m.startAction(ctx, "feed.Manager.Accept", feedID, movieID)
	defer span.End()

	state, err := m.mutate(ctx, feedID, userID, func(s *State) (*State, error) {
		next, item, err := Accept(s, movieID)
		if err != nil {
			return nil, err
		}
		saved := entity.NewSavedMovie(userID, item, string(s.Mood), s.Reason)
		if err := m.saved.Save(ctx, saved); err != nil {
			logger.Error(ctx, "failed to save movie", err, "movie_id", movieID)
			return nil, apperrors.NewDependency(apperrors.CodeSaveFailed, "failed to save movie", err)
		}
		return next, nil
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	result := m.replenish(ctx, state, "accept")
	m.publish(ctx, state, movieID, entity.FeedActionAccept, result)
	return result, nil
}

// ToggleWatched 切换已看；标记为已看时补位一条，取消已看不检索
func (m *Manager) ToggleWatched(ctx context.Context, feedID, userID string, movieID int64) (*ActionResult, error) {
	ctx, span := m.startAction(ctx, "feed.Manager.ToggleWatched", feedID, movieID)
	defer span.End()

	state, err := m.Get(ctx, feedID, userID)
	if err != nil {
		return nil, err
	}
	if !state.IsDisplayed(movieID) {
		return nil, apperrors.ErrItemNotDisplayed
	}

	watched, err := m.watched.Toggle(ctx, userID, movieID)
	if err != nil {
		return nil, apperrors.NewDependency(apperrors.CodeCacheError, "failed to update watched list", err)
	}

	if !watched {
		m.publish(ctx, state, movieID, entity.FeedActionWatchedOff, nil)
		return &ActionResult{Watched: &watched, Displayed: len(state.Displayed)}, nil
	}

	result := m.replenish(ctx, state, "watched")
	result.Watched = &watched
	m.publish(ctx, state, movieID, entity.FeedActionWatchedOn, result)
	return result, nil
}

// maxMutateAttempts 版本冲突时的最大重试次数
const maxMutateAttempts = 5

// mutate 在推荐流锁内读-改-写会话
// 进程内锁只串行化本实例；多实例间靠会话版本检查，冲突时重新读取并重放 fn
func (m *Manager) mutate(ctx context.Context, feedID, userID string, fn func(*State) (*State, error)) (*State, error) {
	unlock := m.locks.Lock(feedID)
	defer unlock()

	for attempt := 1; ; attempt++ {
		state, err := m.Get(ctx, feedID, userID)
		if err != nil {
			return nil, err
		}
		next, err := fn(state)
		if err != nil {
			return nil, err
		}
		next.Version = state.Version + 1
		next.UpdatedAt = time.Now().UTC()

		err = m.sessions.Save(ctx, next)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, ErrSessionConflict) {
			return nil, apperrors.NewDependency(apperrors.CodeCacheError, "failed to store feed session", err)
		}
		if attempt == maxMutateAttempts {
			return nil, apperrors.NewDependency(apperrors.CodeCacheError, "feed session kept changing, giving up", err)
		}
		logger.Debug(ctx, "feed session conflict, retrying", "attempt", attempt)
	}
}

// replenish 单飞补位：已有补位在途时直接放弃
// 补位失败不影响已完成的反馈操作，只体现在结果里
func (m *Manager) replenish(ctx context.Context, state *State, trigger string) *ActionResult {
	result := &ActionResult{Displayed: len(state.Displayed)}

	release, ok, err := m.guard.TryAcquire(ctx, state.FeedID)
	if err != nil {
		logger.Error(ctx, "failed to acquire replenish guard", err)
		metrics.FeedReplenishTotal.WithLabelValues(trigger, "error").Inc()
		return result
	}
	if !ok {
		logger.Debug(ctx, "replenish already in flight, suppressed", "trigger", trigger)
		metrics.FeedReplenishTotal.WithLabelValues(trigger, "suppressed").Inc()
		result.Suppressed = true
		return result
	}
	defer release()

	cand, err := m.replenisher.Replenish(ctx, state.Vector, state.ThemeTags, state.ExclusionIDs())
	if err != nil {
		logger.Error(ctx, "replenish search failed", err, "trigger", trigger)
		metrics.FeedReplenishTotal.WithLabelValues(trigger, "error").Inc()
		return result
	}
	if cand == nil {
		logger.Info(ctx, "no replenishment candidate, feed shrinks", "trigger", trigger)
		metrics.FeedReplenishTotal.WithLabelValues(trigger, "empty").Inc()
		return result
	}

	item := m.enricher.Enrich(ctx, []entity.Candidate{*cand}, state.Region)[0]

	next, err := m.mutate(ctx, state.FeedID, state.UserID, func(s *State) (*State, error) {
		updated, added := Append(s, item)
		if !added {
			return s, nil
		}
		result.Replenished = true
		return updated, nil
	})
	if err != nil {
		logger.Error(ctx, "failed to append replenished movie", err, "movie_id", item.ID)
		metrics.FeedReplenishTotal.WithLabelValues(trigger, "error").Inc()
		return result
	}

	result.Displayed = len(next.Displayed)
	if result.Replenished {
		result.Added = &item
		metrics.FeedReplenishTotal.WithLabelValues(trigger, "added").Inc()
	} else {
		metrics.FeedReplenishTotal.WithLabelValues(trigger, "empty").Inc()
	}
	return result
}

func (m *Manager) startAction(ctx context.Context, name, feedID string, movieID int64) (context.Context, trace.Span) {
	ctx = logger.WithContext(ctx, logger.FeedIDKey, feedID)
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("feed_id", feedID),
		attribute.Int64("movie_id", movieID),
	))
}

func (m *Manager) publish(ctx context.Context, state *State, movieID int64, action entity.FeedAction, result *ActionResult) {
	if m.events == nil {
		return
	}
	ev := &entity.FeedEvent{
		ID:        uuid.NewString(),
		FeedID:    state.FeedID,
		UserID:    state.UserID,
		MovieID:   movieID,
		Action:    action,
		Mood:      string(state.Mood),
		CreatedAt: time.Now().UTC(),
	}
	if result != nil {
		ev.Replenished = result.Replenished
		if result.Added != nil {
			ev.AddedID = result.Added.ID
		}
	}
	if err := m.events.PublishFeedEvent(ctx, ev); err != nil {
		logger.Warn(ctx, "failed to publish feed event", "action", action, "error", err.Error())
	}
}
