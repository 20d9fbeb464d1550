//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"mudi-match-api/internal/config"
	"mudi-match-api/internal/domain/repository"
	"mudi-match-api/internal/infrastructure/persistence/postgres"
	"mudi-match-api/internal/infrastructure/persistence/redis"
	"mudi-match-api/internal/infrastructure/tmdb"
	"mudi-match-api/internal/interfaces/http/handler"
	"mudi-match-api/internal/interfaces/http/router"
)

// InitializeApp 初始化 API 网关（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		VectorSet,
		MatchingSet,
		FeedSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeSeeder 初始化片库导入器
func InitializeSeeder(ctx context.Context, cfg *config.Config) (*SeederLayer, func(), error) {
	wire.Build(
		PostgresSet,
		ProvideVectorIndex,
		ProvideSeeder,
		wire.Struct(new(SeederLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeWorker 初始化事件落库 worker
func InitializeWorker(ctx context.Context, cfg *config.Config) (*WorkerLayer, func(), error) {
	wire.Build(
		PostgresSet,
		ProvideRedisClient,
		ProvideRecorder,
		wire.Struct(new(WorkerLayer), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewMovieRepository,
	postgres.NewSavedMovieRepository,
	postgres.NewMoodEntryRepository,
	postgres.NewFeedEventRepository,
)

// RepoSet 具体实现与接口绑定
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.MovieRepository), new(*postgres.MovieRepository)),
	wire.Bind(new(repository.SavedMovieRepository), new(*postgres.SavedMovieRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(tmdb.JSONCache), new(*redis.Cache)),
)

// MessagingSet 事件流提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// VectorSet 相似度索引
var VectorSet = wire.NewSet(
	ProvideVectorIndex,
	ProvideSearchIndex,
)

// MatchingSet 检索、补全与推荐编排
var MatchingSet = wire.NewSet(
	ProvideMatchingService,
	ProvideMetadataProvider,
	ProvideEnrichmentAdapter,
	ProvideRecommendLimits,
	ProvideRecommendService,
)

// FeedSet 推荐流会话
var FeedSet = wire.NewSet(
	ProvideSessionStore,
	ProvideWatchedStore,
	ProvideReplenishGuard,
	ProvideFeedManager,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	ProvideRecommendationHandler,
	ProvideFeedHandler,
	handler.NewSavedHandler,
	handler.NewWatchedHandler,
	handler.NewMoodHandler,
	wire.Struct(new(router.Handlers), "*"),
	ProvideRouterOptions,
	router.New,
)
