// Package enrichment 并发补全候选影片的元数据，单条失败只降级该条
package enrichment

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/pkg/logger"
	"mudi-match-api/pkg/metrics"
	"mudi-match-api/pkg/tracer"
)

// MetadataProvider 外部元数据服务（port）
type MetadataProvider interface {
	Details(ctx context.Context, movieID int64, region string) (*entity.Enrichment, error)
}

// Config 补全参数
type Config struct {
	ItemTimeout    time.Duration
	MaxConcurrency int
	DefaultRegion  string
}

// Adapter 元数据补全适配器
type Adapter struct {
	provider MetadataProvider
	cfg      Config
}

// NewAdapter 创建补全适配器，provider 为 nil 时只返回基础字段
func NewAdapter(provider MetadataProvider, cfg Config) *Adapter {
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = 4 * time.Second
	}
	if cfg.DefaultRegion == "" {
		cfg.DefaultRegion = "US"
	}
	return &Adapter{provider: provider, cfg: cfg}
}

// Enrich 并发补全，结果与输入一一对应且顺序不变
// 不重试；失败或超时的条目保留基础字段并标记 Enriched=false
func (a *Adapter) Enrich(ctx context.Context, candidates []entity.Candidate, region string) []entity.MovieItem {
	ctx, span := tracer.Start(ctx, "enrichment.Adapter.Enrich",
		trace.WithAttributes(attribute.Int("count", len(candidates))))
	defer span.End()

	if region == "" {
		region = a.cfg.DefaultRegion
	}

	items := make([]entity.MovieItem, len(candidates))
	for i, c := range candidates {
		items[i] = entity.NewBaselineItem(c)
	}
	if a.provider == nil || len(candidates) == 0 {
		return items
	}

	var g errgroup.Group
	if a.cfg.MaxConcurrency > 0 {
		g.SetLimit(a.cfg.MaxConcurrency)
	}
	for i := range candidates {
		g.Go(func() error {
			items[i] = a.enrichOne(ctx, items[i], region)
			return nil
		})
	}
	_ = g.Wait()

	degraded := 0
	for _, it := range items {
		if !it.Enriched {
			degraded++
		}
	}
	metrics.EnrichmentItemsTotal.WithLabelValues("enriched").Add(float64(len(items) - degraded))
	metrics.EnrichmentItemsTotal.WithLabelValues("degraded").Add(float64(degraded))
	span.SetAttributes(attribute.Int("degraded", degraded))
	if degraded > 0 {
		logger.Warn(ctx, "enrichment degraded to baseline fields", "degraded", degraded, "total", len(items))
	}
	return items
}

func (a *Adapter) enrichOne(ctx context.Context, base entity.MovieItem, region string) entity.MovieItem {
	itemCtx, cancel := context.WithTimeout(ctx, a.cfg.ItemTimeout)
	defer cancel()

	details, err := a.provider.Details(itemCtx, base.ID, region)
	if err != nil {
		logger.Debug(ctx, "enrichment failed for movie", "movie_id", base.ID, "error", err.Error())
		return base
	}
	if details == nil {
		return base
	}
	return base.Merge(details)
}
