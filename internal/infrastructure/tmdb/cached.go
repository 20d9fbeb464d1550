package tmdb

import (
	"context"
	"strconv"
	"time"

	"mudi-match-api/internal/application/enrichment"
	"mudi-match-api/internal/domain/entity"
)

// JSONCache 读穿缓存（由 redis.Cache 实现）
type JSONCache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any, loader func(ctx context.Context) (any, error)) error
}

// CachedProvider 按影片与地区缓存详情
type CachedProvider struct {
	next  enrichment.MetadataProvider
	cache JSONCache
	ttl   time.Duration
}

var _ enrichment.MetadataProvider = (*CachedProvider)(nil)

// NewCachedProvider 创建带缓存的元数据提供方
func NewCachedProvider(next enrichment.MetadataProvider, cache JSONCache, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &CachedProvider{next: next, cache: cache, ttl: ttl}
}

// Details 先查缓存，未命中时调用下游并回填
func (p *CachedProvider) Details(ctx context.Context, movieID int64, region string) (*entity.Enrichment, error) {
	var out entity.Enrichment
	err := p.cache.GetOrLoad(ctx, detailsKey(movieID, region), p.ttl, &out, func(ctx context.Context) (any, error) {
		return p.next.Details(ctx, movieID, region)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func detailsKey(movieID int64, region string) string {
	return "tmdb:details:" + strconv.FormatInt(movieID, 10) + ":" + region
}
