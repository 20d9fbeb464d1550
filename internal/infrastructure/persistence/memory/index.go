// Package memory 进程内实现：相似度索引、推荐流会话与已看记录
// 用于本地开发（vector.backend=memory）与测试
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"mudi-match-api/internal/application/matching"
	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
)

// MovieIndex 暴力余弦检索索引
type MovieIndex struct {
	mu     sync.RWMutex
	movies map[int64]matching.IndexedMovie
}

var (
	_ matching.SimilarityIndex = (*MovieIndex)(nil)
	_ matching.IndexWriter     = (*MovieIndex)(nil)
)

// NewMovieIndex 创建内存索引
func NewMovieIndex() *MovieIndex {
	return &MovieIndex{movies: make(map[int64]matching.IndexedMovie)}
}

// Upsert 按影片 ID 覆盖写入
func (s *MovieIndex) Upsert(_ context.Context, movies []matching.IndexedMovie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range movies {
		s.movies[m.MovieID] = m
	}
	return nil
}

// Len 索引中的影片数
func (s *MovieIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies)
}

// Search 余弦相似度 top-k，分数相同按 ID 升序
func (s *MovieIndex) Search(ctx context.Context, q matching.IndexQuery) ([]entity.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Count <= 0 {
		return nil, nil
	}

	excluded := make(map[int64]struct{}, len(q.ExcludedIDs))
	for _, id := range q.ExcludedIDs {
		excluded[id] = struct{}{}
	}

	s.mu.RLock()
	out := make([]entity.Candidate, 0, len(s.movies))
	for id, m := range s.movies {
		if _, skip := excluded[id]; skip {
			continue
		}
		score := cosine(q.Vector, m.Vector)
		if score < q.Threshold {
			continue
		}
		out = append(out, entity.Candidate{MovieID: id, Score: score, Base: m.Baseline})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].MovieID < out[j].MovieID
	})
	if len(out) > q.Count {
		out = out[:q.Count]
	}
	return out, nil
}

func cosine(a, b mood.Vector) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
