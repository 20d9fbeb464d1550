package tmdb

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"mudi-match-api/internal/application/enrichment"
	"mudi-match-api/internal/config"
	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/pkg/logger"
	"mudi-match-api/pkg/metrics"
)

const breakerName = "tmdb-details"

// BreakerProvider 为详情请求加熔断，元数据服务持续故障时快速失败走基础字段
type BreakerProvider struct {
	next enrichment.MetadataProvider
	cb   *gobreaker.CircuitBreaker[*entity.Enrichment]
}

var _ enrichment.MetadataProvider = (*BreakerProvider)(nil)

// NewBreakerProvider 包装元数据提供方
// 连续失败达到 FailureThreshold 次后熔断，Timeout 后进入半开
func NewBreakerProvider(next enrichment.MetadataProvider, cfg config.BreakerConfig) *BreakerProvider {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*entity.Enrichment](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 影片不存在与调用方取消不算元数据服务故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &BreakerProvider{next: next, cb: cb}
}

// Details 熔断保护下获取详情
func (p *BreakerProvider) Details(ctx context.Context, movieID int64, region string) (*entity.Enrichment, error) {
	return p.cb.Execute(func() (*entity.Enrichment, error) {
		return p.next.Details(ctx, movieID, region)
	})
}

// State 当前熔断状态
func (p *BreakerProvider) State() gobreaker.State {
	return p.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
