package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/repository"
)

// SavedMovieRepository 收藏仓储实现
type SavedMovieRepository struct {
	client *Client
}

var _ repository.SavedMovieRepository = (*SavedMovieRepository)(nil)

// NewSavedMovieRepository 创建收藏仓储
func NewSavedMovieRepository(client *Client) *SavedMovieRepository {
	return &SavedMovieRepository{client: client}
}

// Save 收藏影片，(user_id, movie_id) 已存在时保持原记录
func (r *SavedMovieRepository) Save(ctx context.Context, saved *entity.SavedMovie) error {
	ctx, span := tracer.Start(ctx, "postgres.SavedMovieRepository.Save")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoNothing: true,
	}).Create(saved).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save movie: %w", err)
	}
	return nil
}

// Delete 取消收藏，不存在时不报错
func (r *SavedMovieRepository) Delete(ctx context.Context, userID string, movieID int64) error {
	ctx, span := tracer.Start(ctx, "postgres.SavedMovieRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&entity.SavedMovie{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete saved movie: %w", err)
	}
	return nil
}

// ListByUser 按收藏时间倒序分页
func (r *SavedMovieRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.SavedMovie], error) {
	ctx, span := tracer.Start(ctx, "postgres.SavedMovieRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.SavedMovie{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count saved movies: %w", err)
	}

	var items []*entity.SavedMovie
	if err := db.Order("created_at DESC").Offset(pagination.Offset()).Limit(pagination.Limit()).Find(&items).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list saved movies: %w", err)
	}
	return repository.NewPagedResult(items, total, pagination), nil
}
