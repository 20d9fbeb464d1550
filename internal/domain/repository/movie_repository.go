// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"mudi-match-api/internal/domain/entity"
)

// MovieRepository 片库仓储接口
type MovieRepository interface {
	// Upsert 按 ID 插入或更新影片
	Upsert(ctx context.Context, movies []*entity.Movie) error

	// GetByID 根据 ID 获取影片，不存在返回 nil
	GetByID(ctx context.Context, id int64) (*entity.Movie, error)

	// GetByIDs 批量获取影片
	GetByIDs(ctx context.Context, ids []int64) ([]*entity.Movie, error)

	// CountByMood 按主情绪统计影片数量
	CountByMood(ctx context.Context) (map[string]int64, error)

	// ListAll 分页遍历片库，用于重建索引
	ListAll(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Movie], error)
}

// SavedMovieRepository 收藏仓储接口
type SavedMovieRepository interface {
	// Save 收藏影片，重复收藏不报错
	Save(ctx context.Context, saved *entity.SavedMovie) error

	// Delete 取消收藏
	Delete(ctx context.Context, userID string, movieID int64) error

	// ListByUser 获取用户收藏列表（按收藏时间倒序）
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.SavedMovie], error)
}

// MoodEntryRepository 情绪记录仓储接口
type MoodEntryRepository interface {
	Create(ctx context.Context, entry *entity.MoodEntry) error
}

// FeedEventRepository 推荐流事件仓储接口
type FeedEventRepository interface {
	Create(ctx context.Context, event *entity.FeedEvent) error
}
