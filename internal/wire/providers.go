// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"

	"mudi-match-api/internal/application/catalog"
	"mudi-match-api/internal/application/enrichment"
	"mudi-match-api/internal/application/feed"
	"mudi-match-api/internal/application/matching"
	"mudi-match-api/internal/application/recommend"
	"mudi-match-api/internal/config"
	"mudi-match-api/internal/domain/repository"
	"mudi-match-api/internal/infrastructure/messaging"
	"mudi-match-api/internal/infrastructure/persistence/memory"
	"mudi-match-api/internal/infrastructure/persistence/milvus"
	"mudi-match-api/internal/infrastructure/persistence/postgres"
	"mudi-match-api/internal/infrastructure/persistence/redis"
	"mudi-match-api/internal/infrastructure/tmdb"
	"mudi-match-api/internal/interfaces/http/handler"
	"mudi-match-api/internal/interfaces/http/router"
	"mudi-match-api/pkg/logger"
	"mudi-match-api/pkg/utils"
)

// VectorIndex 按 vector.backend 选出的相似度索引
type VectorIndex struct {
	Backend string
	Search  matching.SimilarityIndex
	Writer  matching.IndexWriter
	// Health 内存索引没有外部依赖，为 nil
	Health handler.HealthChecker
}

// SeederLayer 片库导入 CLI 的依赖
type SeederLayer struct {
	Seeder *catalog.Seeder
	Movies *postgres.MovieRepository
	Index  *VectorIndex
}

// WorkerLayer 事件落库 worker 的依赖
type WorkerLayer struct {
	RedisClient *redis.Client
	Recorder    *messaging.Recorder
}

// ProvidePostgresClient 提供 PostgreSQL 客户端，开启 auto_migrate 时同步表结构
func ProvidePostgresClient(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Postgres.AutoMigrate {
		if err := client.AutoMigrate(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供事件流生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideVectorIndex 按配置创建相似度索引
// Milvus 集合不存在时创建；创建失败只告警，检索时再以依赖错误暴露
func ProvideVectorIndex(ctx context.Context, cfg *config.Config) (*VectorIndex, func(), error) {
	switch cfg.Vector.Backend {
	case "memory":
		idx := memory.NewMovieIndex()
		return &VectorIndex{Backend: "memory", Search: idx, Writer: idx}, func() {}, nil
	case "milvus", "":
		client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
		if err != nil {
			return nil, nil, err
		}
		idx := milvus.NewMovieIndex(client)
		if err := idx.EnsureCollection(ctx); err != nil {
			logger.Warn(ctx, "milvus collection not ready", "error", err.Error())
		}
		cleanup := func() {
			_ = client.Close()
		}
		return &VectorIndex{Backend: "milvus", Search: idx, Writer: idx, Health: client}, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported vector backend %q", cfg.Vector.Backend)
	}
}

// ProvideSearchIndex 内存索引启动时从 Postgres 片库重建
func ProvideSearchIndex(ctx context.Context, cfg *config.Config, idx *VectorIndex, movies repository.MovieRepository) (matching.SimilarityIndex, error) {
	if idx.Backend != "memory" {
		return idx.Search, nil
	}
	n, err := catalog.NewSeeder(nil, movies, idx.Writer, catalog.Config{BatchSize: cfg.Seeder.BatchSize}).Reindex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to warm memory index: %w", err)
	}
	if n == 0 {
		logger.Warn(ctx, "memory index is empty, run the seeder first")
	}
	return idx.Search, nil
}

// ProvideMatchingService 提供匹配检索服务
func ProvideMatchingService(cfg *config.Config, index matching.SimilarityIndex) *matching.Service {
	m := cfg.Matching
	attempts := make([]matching.Attempt, 0, len(m.ReplenishAttempts))
	for _, a := range m.ReplenishAttempts {
		attempts = append(attempts, matching.Attempt{Threshold: a.Threshold, Count: a.Count})
	}
	return matching.NewService(index, matching.Config{
		FallbackThreshold: m.FallbackThreshold,
		SearchTimeout:     m.SearchTimeout,
		ThemeBoost:        m.ThemeBoost,
		ThemeBoostMax:     m.ThemeBoostMax,
		ReplenishAttempts: attempts,
	})
}

// ProvideMetadataProvider TMDb 客户端外包熔断与缓存，未配置令牌时返回 nil，只输出基础字段
func ProvideMetadataProvider(ctx context.Context, cfg *config.Config, cache tmdb.JSONCache) enrichment.MetadataProvider {
	tc := cfg.Metadata.TMDB
	if tc.Token == "" {
		logger.Warn(ctx, "tmdb token not configured, enrichment disabled")
		return nil
	}
	breaker := tmdb.NewBreakerProvider(tmdb.NewClient(&tc), tc.Breaker)
	return tmdb.NewCachedProvider(breaker, cache, tc.CacheTTL)
}

// ProvideEnrichmentAdapter 提供元数据补全适配器
func ProvideEnrichmentAdapter(cfg *config.Config, provider enrichment.MetadataProvider) *enrichment.Adapter {
	return enrichment.NewAdapter(provider, enrichment.Config{
		ItemTimeout:    cfg.Enrichment.ItemTimeout,
		MaxConcurrency: cfg.Enrichment.MaxConcurrency,
		DefaultRegion:  cfg.Metadata.TMDB.Region,
	})
}

// ProvideRecommendLimits 参数范围取配置，未配置的项沿用默认值
func ProvideRecommendLimits(cfg *config.Config) recommend.Limits {
	limits := recommend.DefaultLimits()
	if cfg.Matching.DefaultLimit > 0 {
		limits.DefaultLimit = cfg.Matching.DefaultLimit
	}
	if cfg.Matching.MaxLimit > 0 {
		limits.MaxLimit = cfg.Matching.MaxLimit
	}
	if cfg.Matching.DefaultThreshold > 0 {
		limits.DefaultThreshold = cfg.Matching.DefaultThreshold
	}
	if cfg.Metadata.TMDB.Region != "" {
		limits.DefaultRegion = cfg.Metadata.TMDB.Region
	}
	return limits
}

// ProvideRecommendService 提供推荐编排服务
func ProvideRecommendService(matcher *matching.Service, enricher *enrichment.Adapter, producer *messaging.Producer, limits recommend.Limits) *recommend.Service {
	return recommend.NewService(matcher, enricher, producer, limits)
}

// ProvideSessionStore 按 feed.store 选择会话存储
func ProvideSessionStore(cfg *config.Config, client *redis.Client) feed.SessionStore {
	if cfg.Feed.Store == "memory" {
		return memory.NewSessionStore(cfg.Feed.SessionTTL)
	}
	return redis.NewSessionStore(client, cfg.Feed.SessionTTL)
}

// ProvideWatchedStore 按 feed.store 选择已看记录存储
func ProvideWatchedStore(cfg *config.Config, client *redis.Client) feed.WatchedStore {
	if cfg.Feed.Store == "memory" {
		return memory.NewWatchedStore()
	}
	return redis.NewWatchedStore(client)
}

// ProvideReplenishGuard 单实例部署用进程内守卫，否则用 Redis 锁跨实例互斥
func ProvideReplenishGuard(cfg *config.Config, client *redis.Client) feed.ReplenishGuard {
	if cfg.Feed.Store == "memory" {
		return feed.NewLocalGuard()
	}
	return redis.NewReplenishGuard(client, cfg.Feed.GuardTTL)
}

// ProvideFeedManager 提供推荐流管理器
func ProvideFeedManager(
	recommender *recommend.Service,
	matcher *matching.Service,
	enricher *enrichment.Adapter,
	sessions feed.SessionStore,
	watched feed.WatchedStore,
	saved *postgres.SavedMovieRepository,
	guard feed.ReplenishGuard,
	producer *messaging.Producer,
) *feed.Manager {
	return feed.NewManager(feed.Deps{
		Recommender: recommender,
		Replenisher: matcher,
		Enricher:    enricher,
		Sessions:    sessions,
		Watched:     watched,
		Saved:       saved,
		Guard:       guard,
		Events:      producer,
	})
}

// ProvideHealthHandler 就绪检查覆盖全部外部依赖
func ProvideHealthHandler(cfg *config.Config, pg *postgres.Client, rc *redis.Client, idx *VectorIndex) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Version,
		handler.Dependency{Name: "postgres", Checker: pg, Required: true},
		handler.Dependency{Name: "redis", Checker: rc, Required: true},
		handler.Dependency{Name: "milvus", Checker: idx.Health, Required: true},
	)
}

// ProvideRecommendationHandler 提供推荐查询处理器
func ProvideRecommendationHandler(svc *recommend.Service) *handler.RecommendationHandler {
	return handler.NewRecommendationHandler(svc)
}

// ProvideFeedHandler 提供推荐流处理器
func ProvideFeedHandler(m *feed.Manager) *handler.FeedHandler {
	return handler.NewFeedHandler(m)
}

// ProvideRouterOptions 提供中间件依赖
func ProvideRouterOptions(cfg *config.Config, limiter *redis.RateLimiter) router.Options {
	opts := router.Options{RateLimiter: limiter}
	if cfg.Security.JWT.Enabled {
		opts.Verifier = utils.NewTokenVerifier(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
	}
	return opts
}

// ProvideSeeder 提供片库导入器，批次写库放在事务中
func ProvideSeeder(cfg *config.Config, movies *postgres.MovieRepository, idx *VectorIndex, tx *postgres.TxManager) *catalog.Seeder {
	sc := cfg.Seeder
	region := sc.Region
	if region == "" {
		region = cfg.Metadata.TMDB.Region
	}
	source := tmdb.NewClient(&cfg.Metadata.TMDB)
	return catalog.NewSeeder(source, movies, idx.Writer, catalog.Config{
		Pages:          sc.Pages,
		Region:         region,
		Providers:      sc.Providers,
		RateInterval:   sc.RateInterval,
		MinVoteAverage: sc.MinVoteAverage,
		MinVoteCount:   sc.MinVoteCount,
		BatchSize:      sc.BatchSize,
		DryRun:         sc.DryRun,
	}).WithTransactor(tx)
}

// ProvideRecorder 提供事件落库处理器
func ProvideRecorder(moods *postgres.MoodEntryRepository, feeds *postgres.FeedEventRepository) *messaging.Recorder {
	return messaging.NewRecorder(moods, feeds)
}
