package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mudi-match-api/internal/application/feed"
)

// SessionStore 推荐流会话，JSON 存储并在每次写入时刷新 TTL
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

var _ feed.SessionStore = (*SessionStore)(nil)

// NewSessionStore 创建会话存储
func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) key(feedID string) string {
	return s.client.Key("feed", feedID)
}

// Save 写入会话
// WATCH 会话键后比较版本，只有已存版本为 state.Version-1 时才在事务中写入；
// 版本不符或事务期间键被改动都返回 feed.ErrSessionConflict
func (s *SessionStore) Save(ctx context.Context, state *feed.State) error {
	ctx, span := tracer.Start(ctx, "redis.SessionStore.Save",
		trace.WithAttributes(
			attribute.String("feed_id", state.FeedID),
			attribute.Int64("version", state.Version),
		))
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal feed state: %w", err)
	}

	key := s.key(state.FeedID)
	err = s.client.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != state.Version-1 {
			return feed.ErrSessionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, feed.ErrSessionConflict), errors.Is(err, redis.TxFailedErr):
		span.SetAttributes(attribute.Bool("conflict", true))
		return feed.ErrSessionConflict
	default:
		span.RecordError(err)
		return fmt.Errorf("failed to save feed state: %w", err)
	}
}

// storedVersion 读取已存会话的版本，不存在为 0
func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if IsNil(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read feed version: %w", err)
	}
	return decodeVersion(data)
}

// decodeVersion 只解码 version 字段
func decodeVersion(data []byte) (int64, error) {
	var v struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("failed to decode feed version: %w", err)
	}
	return v.Version, nil
}

// Get 读取会话，不存在或已过期返回 nil
func (s *SessionStore) Get(ctx context.Context, feedID string) (*feed.State, error) {
	ctx, span := tracer.Start(ctx, "redis.SessionStore.Get",
		trace.WithAttributes(attribute.String("feed_id", feedID)))
	defer span.End()

	data, err := s.client.rdb.Get(ctx, s.key(feedID)).Bytes()
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load feed state: %w", err)
	}

	var state feed.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feed state: %w", err)
	}
	return &state, nil
}
