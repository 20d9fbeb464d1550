package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/repository"
)

// 事件按主键幂等写入，消费端重复投递时不会产生重复行

// MoodEntryRepository 情绪记录仓储实现
type MoodEntryRepository struct {
	client *Client
}

var _ repository.MoodEntryRepository = (*MoodEntryRepository)(nil)

// NewMoodEntryRepository 创建情绪记录仓储
func NewMoodEntryRepository(client *Client) *MoodEntryRepository {
	return &MoodEntryRepository{client: client}
}

// Create 写入情绪记录
func (r *MoodEntryRepository) Create(ctx context.Context, entry *entity.MoodEntry) error {
	ctx, span := tracer.Start(ctx, "postgres.MoodEntryRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create mood entry: %w", err)
	}
	return nil
}

// FeedEventRepository 推荐流事件仓储实现
type FeedEventRepository struct {
	client *Client
}

var _ repository.FeedEventRepository = (*FeedEventRepository)(nil)

// NewFeedEventRepository 创建推荐流事件仓储
func NewFeedEventRepository(client *Client) *FeedEventRepository {
	return &FeedEventRepository{client: client}
}

// Create 写入推荐流事件
func (r *FeedEventRepository) Create(ctx context.Context, event *entity.FeedEvent) error {
	ctx, span := tracer.Start(ctx, "postgres.FeedEventRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(event).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create feed event: %w", err)
	}
	return nil
}
