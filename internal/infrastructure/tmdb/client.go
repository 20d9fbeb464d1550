// Package tmdb TMDb 元数据客户端：影片详情、观看渠道、发现与关键词
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mudi-match-api/internal/application/catalog"
	"mudi-match-api/internal/application/enrichment"
	"mudi-match-api/internal/config"
	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/pkg/metrics"
)

var tracer = otel.Tracer("tmdb")

// ErrNotFound 影片在 TMDb 不存在
var ErrNotFound = errors.New("tmdb: resource not found")

// StatusError 非 2xx 响应
type StatusError struct {
	StatusCode int
	Endpoint   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s request failed: status=%d", e.Endpoint, e.StatusCode)
}

// Client TMDb v3 API 客户端，使用 v4 读令牌认证
type Client struct {
	baseURL    string
	token      string
	language   string
	httpClient *http.Client
}

var (
	_ enrichment.MetadataProvider = (*Client)(nil)
	_ catalog.Source              = (*Client)(nil)
)

// NewClient 创建 TMDb 客户端
func NewClient(cfg *config.TMDBConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	return &Client{
		baseURL:  baseURL,
		token:    cfg.Token,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Details 影片详情，附带观看渠道
func (c *Client) Details(ctx context.Context, movieID int64, region string) (*entity.Enrichment, error) {
	q := url.Values{}
	q.Set("append_to_response", "watch/providers")

	var dto detailsDTO
	if err := c.get(ctx, "details", "/movie/"+strconv.FormatInt(movieID, 10), q, &dto); err != nil {
		return nil, err
	}
	return dto.toEnrichment(region), nil
}

// Discover 按地区、平台与评分门槛发现影片
func (c *Client) Discover(ctx context.Context, dq catalog.DiscoverQuery) (*catalog.DiscoverPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(dq.Page))
	q.Set("sort_by", "popularity.desc")
	q.Set("include_adult", "false")
	if dq.Region != "" {
		q.Set("watch_region", dq.Region)
	}
	if len(dq.Providers) > 0 {
		ids := make([]string, len(dq.Providers))
		for i, p := range dq.Providers {
			ids[i] = strconv.Itoa(p)
		}
		q.Set("with_watch_providers", strings.Join(ids, "|"))
		q.Set("with_watch_monetization_types", "flatrate")
	}
	if dq.MinVoteAverage > 0 {
		q.Set("vote_average.gte", strconv.FormatFloat(dq.MinVoteAverage, 'f', -1, 64))
	}
	if dq.MinVoteCount > 0 {
		q.Set("vote_count.gte", strconv.Itoa(dq.MinVoteCount))
	}

	var dto discoverDTO
	if err := c.get(ctx, "discover", "/discover/movie", q, &dto); err != nil {
		return nil, err
	}

	page := &catalog.DiscoverPage{Page: dto.Page, TotalPages: dto.TotalPages}
	for _, r := range dto.Results {
		page.Results = append(page.Results, catalog.DiscoveredMovie{
			ID:          r.ID,
			Title:       r.Title,
			Overview:    r.Overview,
			ReleaseDate: r.ReleaseDate,
			PosterPath:  r.PosterPath,
			GenreIDs:    r.GenreIDs,
			VoteAverage: r.VoteAverage,
			VoteCount:   r.VoteCount,
			Popularity:  r.Popularity,
		})
	}
	return page, nil
}

// Keywords 影片关键词（小写）
func (c *Client) Keywords(ctx context.Context, movieID int64) ([]string, error) {
	var dto keywordsDTO
	if err := c.get(ctx, "keywords", "/movie/"+strconv.FormatInt(movieID, 10)+"/keywords", nil, &dto); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(dto.Keywords))
	for _, k := range dto.Keywords {
		out = append(out, strings.ToLower(k.Name))
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values, dest any) error {
	ctx, span := tracer.Start(ctx, "tmdb."+endpoint,
		trace.WithAttributes(attribute.String("tmdb.path", path)))
	defer span.End()

	if q == nil {
		q = url.Values{}
	}
	if c.language != "" {
		q.Set("language", c.language)
	}
	u := c.baseURL + path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		metrics.TMDBRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("tmdb %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	metrics.TMDBRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode tmdb %s response: %w", endpoint, err)
	}
	return nil
}
