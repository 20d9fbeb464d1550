// Package recommend 串联一次推荐：构造查询、检索、补全并记录情绪
package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"mudi-match-api/internal/application/matching"
	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
	apperrors "mudi-match-api/pkg/errors"
	"mudi-match-api/pkg/logger"
	"mudi-match-api/pkg/tracer"
)

// Searcher 主检索（由 matching.Service 实现）
type Searcher interface {
	Search(ctx context.Context, req matching.Request) (*matching.Result, error)
}

// Enricher 元数据补全（由 enrichment.Adapter 实现）
type Enricher interface {
	Enrich(ctx context.Context, candidates []entity.Candidate, region string) []entity.MovieItem
}

// MoodEntryPublisher 情绪记录发布，失败只记日志
type MoodEntryPublisher interface {
	PublishMoodEntry(ctx context.Context, entry *entity.MoodEntry) error
}

// Limits 参数默认值与范围；MaxExcluded 为 0 时不限制排除列表长度
type Limits struct {
	DefaultLimit     int
	MaxLimit         int
	DefaultThreshold float64
	MinThreshold     float64
	MaxThreshold     float64
	MaxExcluded      int
	DefaultRegion    string
}

// DefaultLimits 默认参数范围
func DefaultLimits() Limits {
	return Limits{
		DefaultLimit:     20,
		MaxLimit:         50,
		DefaultThreshold: 0.6,
		MinThreshold:     0.01,
		MaxThreshold:     1.0,
		MaxExcluded:      1000,
		DefaultRegion:    "US",
	}
}

// Request 推荐请求，Limit/Threshold 为 nil 时取默认值
type Request struct {
	UserID      string
	Mood        string
	Intention   string
	Reason      string
	Limit       *int
	Threshold   *float64
	ExcludedIDs []int64
	Region      string
}

// Result 推荐结果
type Result struct {
	Query     mood.Query
	Items     []entity.MovieItem
	Fallback  bool
	Limit     int
	Threshold float64
	Region    string
}

// Service 推荐编排服务
type Service struct {
	searcher  Searcher
	enricher  Enricher
	publisher MoodEntryPublisher
	limits    Limits
}

// NewService 创建推荐编排服务，publisher 可为 nil
func NewService(searcher Searcher, enricher Enricher, publisher MoodEntryPublisher, limits Limits) *Service {
	return &Service{
		searcher:  searcher,
		enricher:  enricher,
		publisher: publisher,
		limits:    limits,
	}
}

// validated 校验并补齐默认值后的请求
type validated struct {
	label     mood.Label
	intention mood.Intention
	limit     int
	threshold float64
	region    string
}

func (s *Service) validate(req Request) (*validated, error) {
	if strings.TrimSpace(req.Mood) == "" {
		return nil, apperrors.NewValidation("mood", "mood is required")
	}
	label, ok := mood.ParseLabel(req.Mood)
	if !ok {
		return nil, apperrors.NewValidation("mood", fmt.Sprintf("unknown mood %q", req.Mood))
	}
	intention, ok := mood.ParseIntention(req.Intention)
	if !ok {
		return nil, apperrors.NewValidation("intention", "intention must be sit or shift")
	}

	limit := s.limits.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit < 1 || limit > s.limits.MaxLimit {
		return nil, apperrors.NewValidation("limit", fmt.Sprintf("limit must be between 1 and %d", s.limits.MaxLimit))
	}

	threshold := s.limits.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	// NaN 与任何值比较都为 false，需单独拒绝
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) ||
		threshold < s.limits.MinThreshold || threshold > s.limits.MaxThreshold {
		return nil, apperrors.NewValidation("threshold",
			fmt.Sprintf("threshold must be between %.2f and %.2f", s.limits.MinThreshold, s.limits.MaxThreshold))
	}

	if s.limits.MaxExcluded > 0 && len(req.ExcludedIDs) > s.limits.MaxExcluded {
		return nil, apperrors.NewValidation("exclude",
			fmt.Sprintf("at most %d excluded ids are allowed", s.limits.MaxExcluded))
	}

	region := strings.ToUpper(strings.TrimSpace(req.Region))
	if region == "" {
		region = s.limits.DefaultRegion
	}
	if len(region) != 2 {
		return nil, apperrors.NewValidation("region", "region must be a two-letter country code")
	}

	return &validated{label: label, intention: intention, limit: limit, threshold: threshold, region: region}, nil
}

// Recommend 执行一次推荐
// 参数错误返回校验错误；检索与兜底均为空返回无匹配；检索后端故障返回依赖错误
func (s *Service) Recommend(ctx context.Context, req Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "recommend.Service.Recommend")
	defer span.End()

	v, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	q := mood.BuildQuery(v.label, v.intention, req.Reason)
	span.SetAttributes(
		attribute.String("mood", string(q.Mood)),
		attribute.String("target_mood", string(q.TargetMood)),
		attribute.String("intention", string(q.Intention)),
	)

	res, err := s.searcher.Search(ctx, matching.Request{
		Vector:      q.Vector,
		ThemeTags:   q.ThemeTags,
		Threshold:   v.threshold,
		Limit:       v.limit,
		ExcludedIDs: req.ExcludedIDs,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	s.recordEntry(ctx, req.UserID, q, len(res.Candidates), res.Fallback)

	if len(res.Candidates) == 0 {
		return nil, apperrors.NewNoMatch(fmt.Sprintf(
			"no movies matched mood %s after excluding %d already seen movies", q.TargetMood, len(req.ExcludedIDs)))
	}

	items := s.enricher.Enrich(ctx, res.Candidates, v.region)

	logger.Info(ctx, "recommendation served",
		"mood", q.Mood,
		"target_mood", q.TargetMood,
		"intention", q.Intention,
		"count", len(items),
		"fallback", res.Fallback,
	)

	return &Result{
		Query:     q,
		Items:     items,
		Fallback:  res.Fallback,
		Limit:     v.limit,
		Threshold: v.threshold,
		Region:    v.region,
	}, nil
}

func (s *Service) recordEntry(ctx context.Context, userID string, q mood.Query, count int, fallback bool) {
	if s.publisher == nil {
		return
	}
	entry := &entity.MoodEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Mood:        string(q.Mood),
		Intention:   string(q.Intention),
		Reason:      q.Reason,
		TargetMood:  string(q.TargetMood),
		ResultCount: count,
		Fallback:    fallback,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.publisher.PublishMoodEntry(ctx, entry); err != nil {
		logger.Warn(ctx, "failed to publish mood entry", "error", err.Error())
	}
}
