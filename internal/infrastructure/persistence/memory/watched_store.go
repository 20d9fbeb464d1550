package memory

import (
	"context"
	"slices"
	"sync"

	"mudi-match-api/internal/application/feed"
)

// WatchedStore 按调用方保存的已看影片
type WatchedStore struct {
	mu      sync.Mutex
	watched map[string][]int64
}

var _ feed.WatchedStore = (*WatchedStore)(nil)

// NewWatchedStore 创建已看存储
func NewWatchedStore() *WatchedStore {
	return &WatchedStore{watched: make(map[string][]int64)}
}

// Toggle 切换已看，返回切换后的状态
func (s *WatchedStore) Toggle(_ context.Context, userID string, movieID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, on := feed.ToggleWatched(s.watched[userID], movieID)
	s.watched[userID] = next
	return on, nil
}

// List 按加入顺序返回已看影片
func (s *WatchedStore) List(_ context.Context, userID string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.watched[userID]), nil
}
