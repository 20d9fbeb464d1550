// Package matching 实现按情绪向量检索候选影片：主检索、低阈值兜底与单条补位
package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
	apperrors "mudi-match-api/pkg/errors"
	"mudi-match-api/pkg/logger"
	"mudi-match-api/pkg/metrics"
	"mudi-match-api/pkg/tracer"
)

const (
	stagePrimary   = "primary"
	stageFallback  = "fallback"
	stageReplenish = "replenish"
)

// Service 匹配检索服务
type Service struct {
	index SimilarityIndex
	cfg   Config
}

// NewService 创建匹配检索服务
func NewService(index SimilarityIndex, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.FallbackThreshold <= 0 {
		cfg.FallbackThreshold = def.FallbackThreshold
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = def.SearchTimeout
	}
	if len(cfg.ReplenishAttempts) == 0 {
		cfg.ReplenishAttempts = def.ReplenishAttempts
	}
	return &Service{index: index, cfg: cfg}
}

// Search 主检索：调用方阈值无结果且兜底阈值更宽时重试一次，仍为空则返回空结果
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "matching.Service.Search",
		trace.WithAttributes(
			attribute.Float64("threshold", req.Threshold),
			attribute.Int("limit", req.Limit),
			attribute.Int("excluded", len(req.ExcludedIDs)),
		))
	defer span.End()

	if req.Limit <= 0 {
		return nil, apperrors.NewValidation("limit", "limit must be positive")
	}

	excluded := newIDSet(req.ExcludedIDs)
	count := req.Limit + len(req.ExcludedIDs)

	candidates, err := s.searchOnce(ctx, stagePrimary, req.Vector, req.Threshold, count, req.ExcludedIDs, excluded)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	result := &Result{}
	// 调用方阈值不高于兜底阈值时，兜底检索不会多出结果
	if len(candidates) == 0 && req.Threshold > s.cfg.FallbackThreshold {
		metrics.MatchFallbackTotal.Inc()
		logger.Info(ctx, "primary search empty, retrying with fallback threshold",
			"threshold", req.Threshold,
			"fallback_threshold", s.cfg.FallbackThreshold,
		)
		candidates, err = s.searchOnce(ctx, stageFallback, req.Vector, s.cfg.FallbackThreshold, count, req.ExcludedIDs, excluded)
		if err != nil {
			tracer.RecordError(span, err)
			return nil, err
		}
		result.Fallback = true
	}

	candidates = s.rank(candidates, req.ThemeTags)
	if len(candidates) > req.Limit {
		candidates = candidates[:req.Limit]
	}
	result.Candidates = candidates

	span.SetAttributes(
		attribute.Int("result_count", len(candidates)),
		attribute.Bool("fallback", result.Fallback),
	)
	return result, nil
}

// Replenish 单条补位：按从严到宽的档位依次检索，返回第一个未排除的候选
// 全部档位都为空时返回 nil
func (s *Service) Replenish(ctx context.Context, vector mood.Vector, themeTags []string, excludedIDs []int64) (*entity.Candidate, error) {
	ctx, span := tracer.Start(ctx, "matching.Service.Replenish",
		trace.WithAttributes(attribute.Int("excluded", len(excludedIDs))))
	defer span.End()

	excluded := newIDSet(excludedIDs)
	for i, a := range s.cfg.ReplenishAttempts {
		candidates, err := s.searchOnce(ctx, stageReplenish, vector, a.Threshold, a.Count, excludedIDs, excluded)
		if err != nil {
			tracer.RecordError(span, err)
			return nil, err
		}
		if len(candidates) == 0 {
			logger.Debug(ctx, "replenish attempt empty", "attempt", i, "threshold", a.Threshold, "count", a.Count)
			continue
		}
		best := s.rank(candidates, themeTags)[0]
		span.SetAttributes(attribute.Int("attempt", i), attribute.Int64("movie_id", best.MovieID))
		return &best, nil
	}
	return nil, nil
}

// searchOnce 调用后端一次并在客户端重新过滤
// 超时视为零候选，其他后端错误按依赖失败返回
func (s *Service) searchOnce(ctx context.Context, stage string, vector mood.Vector, threshold float64, count int, excludedIDs []int64, excluded idSet) ([]entity.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.index.Search(callCtx, IndexQuery{
		Vector:      vector,
		Threshold:   threshold,
		Count:       count,
		ExcludedIDs: excludedIDs,
	})
	metrics.MatchSearchDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			metrics.MatchSearchTotal.WithLabelValues(stage, "timeout").Inc()
			logger.Warn(ctx, "similarity search timed out, treating as empty",
				"stage", stage,
				"timeout", s.cfg.SearchTimeout.String(),
			)
			return nil, nil
		}
		metrics.MatchSearchTotal.WithLabelValues(stage, "error").Inc()
		logger.Error(ctx, "similarity search failed", err, "stage", stage)
		return nil, apperrors.NewDependency(apperrors.CodeVectorDBError, "similarity search failed",
			fmt.Errorf("%s search: %w", stage, err))
	}

	out := make([]entity.Candidate, 0, len(raw))
	seen := make(idSet, len(raw))
	for _, c := range raw {
		if c.Score < threshold || excluded.has(c.MovieID) || seen.has(c.MovieID) {
			continue
		}
		seen[c.MovieID] = struct{}{}
		out = append(out, c)
	}

	status := "hit"
	if len(out) == 0 {
		status = "empty"
	}
	metrics.MatchSearchTotal.WithLabelValues(stage, status).Inc()
	return out, nil
}

// rank 按 相似度 + 主题加分 排序，原始相似度保持不变
// 并列时按相似度、ID 排序，保证同样输入得到同样顺序
func (s *Service) rank(candidates []entity.Candidate, themeTags []string) []entity.Candidate {
	boosts := make(map[int64]float64, len(candidates))
	if len(themeTags) > 0 && s.cfg.ThemeBoost > 0 {
		for _, c := range candidates {
			boosts[c.MovieID] = themeBoost(c.Base.Keywords, themeTags, s.cfg.ThemeBoost, s.cfg.ThemeBoostMax)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		sa, sb := a.Score+boosts[a.MovieID], b.Score+boosts[b.MovieID]
		if sa != sb {
			return sa > sb
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.MovieID < b.MovieID
	})
	return candidates
}

// themeBoost 每命中一个主题加 per，总和不超过 ceiling
func themeBoost(keywords, themeTags []string, per, ceiling float64) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	var boost float64
	for _, tag := range themeTags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		for _, k := range lowered {
			if strings.Contains(k, tag) {
				boost += per
				break
			}
		}
	}
	if ceiling > 0 && boost > ceiling {
		boost = ceiling
	}
	return boost
}

type idSet map[int64]struct{}

func newIDSet(ids []int64) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) has(id int64) bool {
	_, ok := s[id]
	return ok
}
