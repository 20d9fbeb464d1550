package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mudi-match-api/internal/application/feed"
	"mudi-match-api/internal/application/recommend"
	"mudi-match-api/internal/domain/entity"
	"mudi-match-api/pkg/logger"
)

var tracer = otel.Tracer("messaging")

// Producer 事件生产者，实现 recommend.MoodEntryPublisher 与 feed.EventPublisher
type Producer struct {
	client *redis.Client
	maxLen int64
}

var (
	_ recommend.MoodEntryPublisher = (*Producer)(nil)
	_ feed.EventPublisher          = (*Producer)(nil)
)

// NewProducer 创建生产者，maxLen 为流的近似上限
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{client: client, maxLen: maxLen}
}

// Publish 写入指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	msg.SetMetadata("request_id", contextString(ctx, logger.RequestIDKey))
	if sc := span.SpanContext(); sc.HasTraceID() {
		msg.SetMetadata("trace_id", sc.TraceID().String())
	}

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{"data": string(data)},
	}).Result()
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", id))
	return id, nil
}

// PublishMoodEntry 发布情绪记录
func (p *Producer) PublishMoodEntry(ctx context.Context, entry *entity.MoodEntry) error {
	msg, err := NewMessage(entry.ID, TypeMoodEntry, entry.UserID, entry)
	if err != nil {
		return err
	}
	msg.SetMetadata("mood", entry.Mood)
	_, err = p.Publish(ctx, StreamMoodEntries, msg)
	return err
}

// PublishFeedEvent 发布推荐流反馈事件
func (p *Producer) PublishFeedEvent(ctx context.Context, event *entity.FeedEvent) error {
	msg, err := NewMessage(event.ID, TypeFeedEvent, event.UserID, event)
	if err != nil {
		return err
	}
	msg.SetMetadata("feed_id", event.FeedID)
	msg.SetMetadata("action", string(event.Action))
	_, err = p.Publish(ctx, StreamFeedEvents, msg)
	return err
}

func contextString(ctx context.Context, key logger.ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
