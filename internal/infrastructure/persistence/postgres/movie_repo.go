package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/repository"
)

// MovieRepository 片库仓储实现
type MovieRepository struct {
	client *Client
}

var _ repository.MovieRepository = (*MovieRepository)(nil)

// NewMovieRepository 创建片库仓储
func NewMovieRepository(client *Client) *MovieRepository {
	return &MovieRepository{client: client}
}

// Upsert 按 ID 插入或覆盖，重复导入不会产生重复行
func (r *MovieRepository) Upsert(ctx context.Context, movies []*entity.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.Upsert",
		trace.WithAttributes(attribute.Int("count", len(movies))))
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "overview", "release_date", "poster_path", "genre_ids", "keywords",
			"vote_average", "vote_count", "popularity", "embedding", "mood", "updated_at",
		}),
	}).CreateInBatches(movies, 100).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert movies: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取影片
func (r *MovieRepository) GetByID(ctx context.Context, id int64) (*entity.Movie, error) {
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var movie entity.Movie
	if err := db.First(&movie, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return &movie, nil
}

// GetByIDs 批量获取影片，不保证顺序
func (r *MovieRepository) GetByIDs(ctx context.Context, ids []int64) ([]*entity.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.GetByIDs")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var movies []*entity.Movie
	if err := db.Where("id IN ?", ids).Find(&movies).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get movies: %w", err)
	}
	return movies, nil
}

// CountByMood 按主情绪统计
func (r *MovieRepository) CountByMood(ctx context.Context) (map[string]int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.CountByMood")
	defer span.End()

	var rows []struct {
		Mood  string
		Count int64
	}
	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Movie{}).Select("mood, COUNT(*) AS count").Group("mood").Scan(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count movies by mood: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Mood] = row.Count
	}
	return out, nil
}

// ListAll 按 ID 顺序分页遍历
func (r *MovieRepository) ListAll(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Movie], error) {
	ctx, span := tracer.Start(ctx, "postgres.MovieRepository.ListAll")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var total int64
	if err := db.Model(&entity.Movie{}).Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}

	var movies []*entity.Movie
	if err := db.Order("id ASC").Offset(pagination.Offset()).Limit(pagination.Limit()).Find(&movies).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return repository.NewPagedResult(movies, total, pagination), nil
}
