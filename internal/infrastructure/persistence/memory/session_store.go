package memory

import (
	"context"
	"sync"
	"time"

	"mudi-match-api/internal/application/feed"
)

type sessionEntry struct {
	state     *feed.State
	expiresAt time.Time
}

// SessionStore 带过期时间的推荐流会话存储
type SessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]sessionEntry
	now     func() time.Time
}

var _ feed.SessionStore = (*SessionStore)(nil)

// NewSessionStore 创建会话存储，ttl 为 0 表示不过期
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:     ttl,
		entries: make(map[string]sessionEntry),
		now:     time.Now,
	}
}

// Save 保存会话副本并刷新过期时间，版本不连续时返回 feed.ErrSessionConflict
func (s *SessionStore) Save(_ context.Context, state *feed.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storedVersion(state.FeedID) != state.Version-1 {
		return feed.ErrSessionConflict
	}

	var exp time.Time
	if s.ttl > 0 {
		exp = s.now().Add(s.ttl)
	}
	s.entries[state.FeedID] = sessionEntry{state: state.Clone(), expiresAt: exp}
	return nil
}

// Get 读取会话副本，不存在或已过期返回 nil
func (s *SessionStore) Get(_ context.Context, feedID string) (*feed.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(feedID)
	if !ok {
		return nil, nil
	}
	return e.state.Clone(), nil
}

// live 取未过期的条目，过期条目顺带删除；调用方持有锁
func (s *SessionStore) live(feedID string) (sessionEntry, bool) {
	e, ok := s.entries[feedID]
	if !ok {
		return sessionEntry{}, false
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, feedID)
		return sessionEntry{}, false
	}
	return e, true
}

func (s *SessionStore) storedVersion(feedID string) int64 {
	if e, ok := s.live(feedID); ok {
		return e.state.Version
	}
	return 0
}
