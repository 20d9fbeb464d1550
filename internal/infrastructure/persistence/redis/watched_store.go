package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"mudi-match-api/internal/application/feed"
)

// toggleScript 原子切换集合成员，返回 1 表示切换后在集合中
var toggleScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 1 then
  redis.call('SREM', KEYS[1], ARGV[1])
  return 0
end
redis.call('SADD', KEYS[1], ARGV[1])
return 1
`)

// WatchedStore 已看记录，每个调用方一个 SET，不过期
type WatchedStore struct {
	client *Client
}

var _ feed.WatchedStore = (*WatchedStore)(nil)

// NewWatchedStore 创建已看存储
func NewWatchedStore(client *Client) *WatchedStore {
	return &WatchedStore{client: client}
}

func (s *WatchedStore) key(userID string) string {
	return s.client.Key("watched", userID)
}

// Toggle 切换已看
func (s *WatchedStore) Toggle(ctx context.Context, userID string, movieID int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "redis.WatchedStore.Toggle")
	defer span.End()

	on, err := toggleScript.Run(ctx, s.client.rdb, []string{s.key(userID)}, movieID).Int()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to toggle watched: %w", err)
	}
	return on == 1, nil
}

// List 已看影片，按 ID 升序
func (s *WatchedStore) List(ctx context.Context, userID string) ([]int64, error) {
	ctx, span := tracer.Start(ctx, "redis.WatchedStore.List")
	defer span.End()

	members, err := s.client.rdb.SMembers(ctx, s.key(userID)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list watched: %w", err)
	}
	return parseIDs(members), nil
}

// parseIDs 解析成员并排序，非法成员跳过
func parseIDs(members []string) []int64 {
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
