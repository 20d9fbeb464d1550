package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mudi-match-api/internal/application/feed"
	"mudi-match-api/pkg/logger"
)

// releaseScript 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// ReplenishGuard 跨实例的补位单飞锁，TTL 兜底防止持有者崩溃后死锁
type ReplenishGuard struct {
	client *Client
	ttl    time.Duration
}

var _ feed.ReplenishGuard = (*ReplenishGuard)(nil)

// NewReplenishGuard 创建补位锁
func NewReplenishGuard(client *Client, ttl time.Duration) *ReplenishGuard {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &ReplenishGuard{client: client, ttl: ttl}
}

// TryAcquire 尝试获取锁，已被占用时 ok 为 false
func (g *ReplenishGuard) TryAcquire(ctx context.Context, feedID string) (func(), bool, error) {
	ctx, span := tracer.Start(ctx, "redis.ReplenishGuard.TryAcquire")
	defer span.End()

	key := g.client.Key("replenish", feedID)
	token := uuid.NewString()

	ok, err := g.client.rdb.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("failed to acquire replenish guard: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// 请求上下文可能已取消，释放用独立上下文
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, g.client.rdb, []string{key}, token).Err(); err != nil {
			logger.Warn(ctx, "failed to release replenish guard", "feed_id", feedID, "error", err.Error())
		}
	}
	return release, true, nil
}
