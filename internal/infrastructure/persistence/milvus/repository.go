package milvus

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mudi-match-api/internal/application/matching"
	domain "mudi-match-api/internal/domain/entity"
	"mudi-match-api/pkg/metrics"
)

// MovieIndex 影片情绪向量索引，实现 matching.SimilarityIndex 与 matching.IndexWriter
type MovieIndex struct {
	client *Client
}

var (
	_ matching.SimilarityIndex = (*MovieIndex)(nil)
	_ matching.IndexWriter     = (*MovieIndex)(nil)
)

// NewMovieIndex 创建影片向量索引
func NewMovieIndex(client *Client) *MovieIndex {
	return &MovieIndex{client: client}
}

func (r *MovieIndex) ready() error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	return nil
}

// EnsureCollection 确保集合与索引可用（不存在则创建），不做破坏性操作
func (r *MovieIndex) EnsureCollection(ctx context.Context) error {
	if err := r.ready(); err != nil {
		return err
	}
	exists, err := r.client.HasCollection(ctx, CollectionMovieMoods)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		if err := r.createCollection(ctx); err != nil {
			return err
		}
		if err := r.createIndex(ctx); err != nil {
			return err
		}
	}
	return r.client.LoadCollection(ctx, CollectionMovieMoods)
}

func (r *MovieIndex) createCollection(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection")
	defer span.End()

	schema := MovieMoodsSchema()
	schema.CollectionName = r.client.CollectionName(CollectionMovieMoods)
	if err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// createIndex 创建 HNSW 余弦索引
func (r *MovieIndex) createIndex(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex")
	defer span.End()

	idx, err := entity.NewIndexHNSW(entity.COSINE, r.client.config.HNSWM, r.client.config.HNSWEfConstruction)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to build index params: %w", err)
	}
	collName := r.client.CollectionName(CollectionMovieMoods)
	if err := r.client.milvus.CreateIndex(ctx, collName, fieldVector, idx, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// Search 余弦相似度检索，排除集合下推为 movie_id not in [...] 过滤
// 分数低于阈值的结果在这里直接丢弃
func (r *MovieIndex) Search(ctx context.Context, q matching.IndexQuery) ([]domain.Candidate, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "milvus.Search",
		trace.WithAttributes(
			attribute.Int("top_k", q.Count),
			attribute.Int("excluded", len(q.ExcludedIDs)),
			attribute.Float64("threshold", q.Threshold),
		))
	defer span.End()

	ef := r.client.config.SearchEf
	if ef < q.Count {
		ef = q.Count
	}
	sp, err := entity.NewIndexHNSWSearchParam(ef)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	start := time.Now()
	results, err := r.client.milvus.Search(ctx,
		r.client.CollectionName(CollectionMovieMoods),
		nil,
		exclusionFilter(q.ExcludedIDs),
		outputFields,
		[]entity.Vector{entity.FloatVector(q.Vector.Float32s())},
		fieldVector,
		entity.COSINE,
		q.Count,
		sp,
	)
	metrics.MilvusSearchDuration.WithLabelValues(CollectionMovieMoods).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var out []domain.Candidate
	for _, result := range results {
		ids, ok := result.IDs.(*entity.ColumnInt64)
		if !ok {
			return nil, fmt.Errorf("unexpected primary key column type %T", result.IDs)
		}
		for i := 0; i < result.ResultCount; i++ {
			score := float64(result.Scores[i])
			if score < q.Threshold {
				continue
			}
			out = append(out, domain.Candidate{
				MovieID: ids.Data()[i],
				Score:   score,
				Base:    baselineAt(result.Fields, i),
			})
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(out)))
	return out, nil
}

// Upsert 按 movie_id 写入或覆盖
func (r *MovieIndex) Upsert(ctx context.Context, movies []matching.IndexedMovie) error {
	if err := r.ready(); err != nil {
		return err
	}
	if len(movies) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "milvus.Upsert",
		trace.WithAttributes(attribute.Int("count", len(movies))))
	defer span.End()

	n := len(movies)
	ids := make([]int64, n)
	vectors := make([][]float32, n)
	moods := make([]string, n)
	titles := make([]string, n)
	overviews := make([]string, n)
	releases := make([]string, n)
	posters := make([]string, n)
	keywords := make([]string, n)
	voteAvgs := make([]float64, n)
	voteCounts := make([]int64, n)
	popularity := make([]float64, n)

	for i, m := range movies {
		ids[i] = m.MovieID
		vectors[i] = m.Vector.Float32s()
		moods[i] = string(m.Mood)
		titles[i] = truncate(m.Baseline.Title, 512)
		overviews[i] = truncate(m.Baseline.Overview, maxOverviewLen)
		releases[i] = m.Baseline.ReleaseDate
		posters[i] = m.Baseline.PosterPath
		keywords[i] = truncate(strings.Join(m.Baseline.Keywords, keywordSep), maxKeywordsLen)
		voteAvgs[i] = m.Baseline.VoteAverage
		voteCounts[i] = int64(m.Baseline.VoteCount)
		popularity[i] = m.Baseline.Popularity
	}

	_, err := r.client.milvus.Upsert(ctx, r.client.CollectionName(CollectionMovieMoods), "",
		entity.NewColumnInt64(fieldMovieID, ids),
		entity.NewColumnFloatVector(fieldVector, VectorDimension, vectors),
		entity.NewColumnVarChar(fieldMood, moods),
		entity.NewColumnVarChar(fieldTitle, titles),
		entity.NewColumnVarChar(fieldOverview, overviews),
		entity.NewColumnVarChar(fieldReleaseDate, releases),
		entity.NewColumnVarChar(fieldPosterPath, posters),
		entity.NewColumnVarChar(fieldKeywords, keywords),
		entity.NewColumnDouble(fieldVoteAverage, voteAvgs),
		entity.NewColumnInt64(fieldVoteCount, voteCounts),
		entity.NewColumnDouble(fieldPopularity, popularity),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert movies: %w", err)
	}
	return nil
}

// exclusionFilter 排除表达式，空集合不过滤
func exclusionFilter(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fieldMovieID + " not in [" + strings.Join(parts, ",") + "]"
}

func baselineAt(fields client.ResultSet, i int) domain.Baseline {
	var b domain.Baseline
	str := func(name string) string {
		if col, ok := fields.GetColumn(name).(*entity.ColumnVarChar); ok && i < col.Len() {
			return col.Data()[i]
		}
		return ""
	}
	b.Title = str(fieldTitle)
	b.Overview = str(fieldOverview)
	b.ReleaseDate = str(fieldReleaseDate)
	b.PosterPath = str(fieldPosterPath)
	if kw := str(fieldKeywords); kw != "" {
		b.Keywords = strings.Split(kw, keywordSep)
	}
	if col, ok := fields.GetColumn(fieldVoteAverage).(*entity.ColumnDouble); ok && i < col.Len() {
		b.VoteAverage = col.Data()[i]
	}
	if col, ok := fields.GetColumn(fieldVoteCount).(*entity.ColumnInt64); ok && i < col.Len() {
		b.VoteCount = int(col.Data()[i])
	}
	if col, ok := fields.GetColumn(fieldPopularity).(*entity.ColumnDouble); ok && i < col.Len() {
		b.Popularity = col.Data()[i]
	}
	return b
}

// truncate 按字节截断且不切断多字节字符
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	s = s[:limit]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
