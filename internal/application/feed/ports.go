package feed

import (
	"context"
	"errors"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
)

// ErrSessionConflict 会话已被其他写入更新
var ErrSessionConflict = errors.New("feed session was modified concurrently")

// SessionStore 推荐流会话存储，Get 在会话不存在时返回 nil, nil
type SessionStore interface {
	// Save 仅当已存版本为 state.Version-1 时写入（不存在视为 0），否则返回 ErrSessionConflict
	Save(ctx context.Context, state *State) error
	Get(ctx context.Context, feedID string) (*State, error)
}

// WatchedStore 持久化的已看记录，按调用方区分
type WatchedStore interface {
	// Toggle 切换已看，返回切换后是否为已看
	Toggle(ctx context.Context, userID string, movieID int64) (bool, error)
	List(ctx context.Context, userID string) ([]int64, error)
}

// ReplenishGuard 每个推荐流同一时间最多一个补位在途
// TryAcquire 未拿到时返回 ok=false，调用方直接放弃而不是排队
type ReplenishGuard interface {
	TryAcquire(ctx context.Context, feedID string) (release func(), ok bool, err error)
}

// SavedCollection 用户收藏
type SavedCollection interface {
	Save(ctx context.Context, saved *entity.SavedMovie) error
}

// EventPublisher 推荐流事件发布，失败不影响主流程
type EventPublisher interface {
	PublishFeedEvent(ctx context.Context, event *entity.FeedEvent) error
}

// Replenisher 单条补位检索
type Replenisher interface {
	Replenish(ctx context.Context, vector mood.Vector, themeTags []string, excludedIDs []int64) (*entity.Candidate, error)
}

// Enricher 元数据补全
type Enricher interface {
	Enrich(ctx context.Context, candidates []entity.Candidate, region string) []entity.MovieItem
}
