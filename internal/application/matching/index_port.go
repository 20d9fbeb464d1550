package matching

import (
	"context"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
)

// SimilarityIndex 应用层对相似度检索的最小依赖（port）
// 由基础设施层提供实现（Milvus 或内存索引）
type SimilarityIndex interface {
	// Search 余弦相似度 top-k，结果按分数降序
	// 后端可以忽略 Threshold/ExcludedIDs，调用方总会在客户端再过滤一次
	Search(ctx context.Context, req IndexQuery) ([]entity.Candidate, error)
}

// IndexQuery 一次后端检索请求
type IndexQuery struct {
	Vector      mood.Vector
	Threshold   float64
	Count       int
	ExcludedIDs []int64
}

// IndexedMovie 写入索引的一条影片记录
type IndexedMovie struct {
	MovieID  int64
	Vector   mood.Vector
	Mood     mood.Label
	Baseline entity.Baseline
}

// IndexWriter 片库导入时写入索引
type IndexWriter interface {
	Upsert(ctx context.Context, movies []IndexedMovie) error
}
