package messaging

import (
	"context"
	"errors"
	"fmt"

	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/internal/domain/repository"
)

// Recorder 把流中的事件写入 Postgres，写入按主键幂等
type Recorder struct {
	moods repository.MoodEntryRepository
	feeds repository.FeedEventRepository
}

// NewRecorder 创建事件落库处理器
func NewRecorder(moods repository.MoodEntryRepository, feeds repository.FeedEventRepository) *Recorder {
	return &Recorder{moods: moods, feeds: feeds}
}

// Register 在消费者上注册本处理器支持的消息类型
func (r *Recorder) Register(c *Consumer) {
	c.RegisterHandler(TypeMoodEntry, r.HandleMoodEntry)
	c.RegisterHandler(TypeFeedEvent, r.HandleFeedEvent)
}

// HandleMoodEntry 情绪记录落库
func (r *Recorder) HandleMoodEntry(ctx context.Context, msg *Message) error {
	var entry entity.MoodEntry
	if err := msg.UnmarshalPayload(&entry); err != nil {
		return Permanent(fmt.Errorf("decode mood entry: %w", err))
	}
	if entry.ID == "" || entry.Mood == "" {
		return Permanent(errors.New("mood entry missing id or mood"))
	}
	return r.moods.Create(ctx, &entry)
}

// HandleFeedEvent 推荐流事件落库
func (r *Recorder) HandleFeedEvent(ctx context.Context, msg *Message) error {
	var ev entity.FeedEvent
	if err := msg.UnmarshalPayload(&ev); err != nil {
		return Permanent(fmt.Errorf("decode feed event: %w", err))
	}
	if ev.ID == "" || ev.FeedID == "" || ev.Action == "" {
		return Permanent(errors.New("feed event missing id, feed_id or action"))
	}
	return r.feeds.Create(ctx, &ev)
}
