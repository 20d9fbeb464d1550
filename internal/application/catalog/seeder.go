// Package catalog 片库导入：从元数据服务拉取影片、计算情绪向量并写入数据库与相似度索引
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"mudi-match-api/internal/application/matching"
	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/mood"
	"mudi-match-api/internal/domain/repository"
	"mudi-match-api/pkg/logger"
	"mudi-match-api/pkg/metrics"
	"mudi-match-api/pkg/tracer"
)

// DiscoverQuery 一页发现请求
type DiscoverQuery struct {
	Page           int
	Region         string
	Providers      []int
	MinVoteAverage float64
	MinVoteCount   int
}

// DiscoveredMovie 发现接口返回的单部影片
type DiscoveredMovie struct {
	ID          int64
	Title       string
	Overview    string
	ReleaseDate string
	PosterPath  string
	GenreIDs    []int
	VoteAverage float64
	VoteCount   int
	Popularity  float64
}

// DiscoverPage 一页发现结果
type DiscoverPage struct {
	Page       int
	TotalPages int
	Results    []DiscoveredMovie
}

// Source 片库数据来源（由 TMDb 客户端实现）
type Source interface {
	Discover(ctx context.Context, q DiscoverQuery) (*DiscoverPage, error)
	Keywords(ctx context.Context, movieID int64) ([]string, error)
}

// Config 导入配置
type Config struct {
	Pages          int
	Region         string
	Providers      []int
	RateInterval   time.Duration
	MinVoteAverage float64
	MinVoteCount   int
	BatchSize      int
	DryRun         bool
}

// Report 导入结果
type Report struct {
	Pages        int
	Fetched      int
	Skipped      int
	Seeded       int
	Distribution map[mood.Label]int
}

// Seeder 片库导入器
type Seeder struct {
	source  Source
	movies  repository.MovieRepository
	index   matching.IndexWriter
	tx      repository.Transactor
	limiter *rate.Limiter
	cfg     Config
}

// NewSeeder 创建导入器，RateInterval 为 0 时不限速
func NewSeeder(source Source, movies repository.MovieRepository, index matching.IndexWriter, cfg Config) *Seeder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	limit := rate.Inf
	if cfg.RateInterval > 0 {
		limit = rate.Every(cfg.RateInterval)
	}
	return &Seeder{
		source:  source,
		movies:  movies,
		index:   index,
		limiter: rate.NewLimiter(limit, 1),
		cfg:     cfg,
	}
}

// WithTransactor 每批写库放进事务，索引写入失败时回滚该批
func (s *Seeder) WithTransactor(tx repository.Transactor) *Seeder {
	s.tx = tx
	return s
}

// Run 逐页拉取并导入
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	ctx, span := tracer.Start(ctx, "catalog.Seeder.Run")
	defer span.End()

	report := &Report{Distribution: make(map[mood.Label]int)}
	seen := make(map[int64]struct{})
	var batch []*entity.Movie

	for page := 1; page <= s.cfg.Pages; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}
		res, err := s.source.Discover(ctx, DiscoverQuery{
			Page:           page,
			Region:         s.cfg.Region,
			Providers:      s.cfg.Providers,
			MinVoteAverage: s.cfg.MinVoteAverage,
			MinVoteCount:   s.cfg.MinVoteCount,
		})
		if err != nil {
			tracer.RecordError(span, err)
			return report, fmt.Errorf("failed to discover page %d: %w", page, err)
		}
		report.Pages++
		logger.Info(ctx, "discover page fetched", "page", page, "results", len(res.Results), "total_pages", res.TotalPages)

		for _, d := range res.Results {
			report.Fetched++
			if _, dup := seen[d.ID]; dup || !eligible(d) {
				report.Skipped++
				continue
			}
			seen[d.ID] = struct{}{}

			movie := s.build(ctx, d, report.Seeded)
			report.Seeded++
			report.Distribution[mood.Label(movie.Mood)]++
			batch = append(batch, movie)

			if len(batch) >= s.cfg.BatchSize {
				if err := s.flush(ctx, batch); err != nil {
					return report, err
				}
				batch = batch[:0]
			}
		}

		if res.TotalPages > 0 && page >= res.TotalPages {
			break
		}
	}

	if err := s.flush(ctx, batch); err != nil {
		return report, err
	}

	span.SetAttributes(attribute.Int("seeded", report.Seeded), attribute.Int("skipped", report.Skipped))
	s.logDistribution(ctx, report)
	return report, nil
}

// Reindex 用数据库中的片库重建相似度索引
func (s *Seeder) Reindex(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "catalog.Seeder.Reindex")
	defer span.End()

	total := 0
	for page := 1; ; page++ {
		res, err := s.movies.ListAll(ctx, repository.NewPagination(page, s.cfg.BatchSize))
		if err != nil {
			return total, fmt.Errorf("failed to list movies: %w", err)
		}
		if len(res.Items) == 0 {
			break
		}
		if !s.cfg.DryRun {
			if err := s.index.Upsert(ctx, toIndexed(res.Items)); err != nil {
				return total, fmt.Errorf("failed to upsert index: %w", err)
			}
		}
		total += len(res.Items)
		if page >= res.TotalPages {
			break
		}
	}
	logger.Info(ctx, "similarity index rebuilt", "movies", total, "dry_run", s.cfg.DryRun)
	return total, nil
}

// eligible 缺少海报、简介或类型的影片不入库
func eligible(d DiscoveredMovie) bool {
	return d.PosterPath != "" && strings.TrimSpace(d.Overview) != "" && len(d.GenreIDs) > 0
}

func (s *Seeder) build(ctx context.Context, d DiscoveredMovie, catalogIndex int) *entity.Movie {
	var keywords []string
	if err := s.limiter.Wait(ctx); err == nil {
		keywords, err = s.source.Keywords(ctx, d.ID)
		if err != nil {
			logger.Warn(ctx, "failed to fetch keywords", "movie_id", d.ID, "error", err.Error())
			keywords = nil
		}
	}

	vec := mood.EmbedItem(d.GenreIDs)
	label := mood.ClassifyItem(vec, d.GenreIDs, catalogIndex)

	genreIDs := make([]int64, len(d.GenreIDs))
	for i, g := range d.GenreIDs {
		genreIDs[i] = int64(g)
	}

	return &entity.Movie{
		ID:          d.ID,
		Title:       d.Title,
		Overview:    d.Overview,
		ReleaseDate: d.ReleaseDate,
		PosterPath:  d.PosterPath,
		GenreIDs:    genreIDs,
		Keywords:    keywords,
		VoteAverage: d.VoteAverage,
		VoteCount:   d.VoteCount,
		Popularity:  d.Popularity,
		Embedding:   vec[:],
		Mood:        string(label),
	}
}

func (s *Seeder) flush(ctx context.Context, batch []*entity.Movie) error {
	if len(batch) == 0 {
		return nil
	}
	for _, m := range batch {
		metrics.SeederMoviesTotal.WithLabelValues(m.Mood).Inc()
	}
	if s.cfg.DryRun {
		logger.Info(ctx, "dry run, batch not written", "size", len(batch))
		return nil
	}
	write := func(ctx context.Context) error {
		if err := s.movies.Upsert(ctx, batch); err != nil {
			return fmt.Errorf("failed to upsert movies: %w", err)
		}
		if err := s.index.Upsert(ctx, toIndexed(batch)); err != nil {
			return fmt.Errorf("failed to upsert index: %w", err)
		}
		return nil
	}
	var err error
	if s.tx != nil {
		err = s.tx.WithTransaction(ctx, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return err
	}
	logger.Info(ctx, "batch written", "size", len(batch))
	return nil
}

func toIndexed(movies []*entity.Movie) []matching.IndexedMovie {
	out := make([]matching.IndexedMovie, 0, len(movies))
	for _, m := range movies {
		var vec mood.Vector
		copy(vec[:], m.Embedding)
		out = append(out, matching.IndexedMovie{
			MovieID:  m.ID,
			Vector:   vec,
			Mood:     mood.Label(m.Mood),
			Baseline: m.Baseline(),
		})
	}
	return out
}

func (s *Seeder) logDistribution(ctx context.Context, r *Report) {
	labels := make([]mood.Label, 0, len(r.Distribution))
	for l := range r.Distribution {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	args := []any{"seeded", r.Seeded, "skipped", r.Skipped, "pages", r.Pages}
	for _, l := range labels {
		args = append(args, string(l), r.Distribution[l])
	}
	logger.Info(ctx, "catalog seeding finished", args...)

	for _, l := range mood.Labels {
		if r.Seeded > 0 && r.Distribution[l] == 0 {
			logger.Warn(ctx, "mood has no movies after seeding", "mood", l)
		}
	}
}
