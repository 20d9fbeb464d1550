package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestFromContext(t *testing.T) {
	t.Run("注入上下文字段", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "debug", "json")

		ctx := WithContext(context.Background(), RequestIDKey, "req-1")
		ctx = WithContext(ctx, FeedIDKey, "feed-9")
		Info(ctx, "feed started", "count", 3)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "feed started", line["msg"])
		assert.Equal(t, "req-1", line["request_id"])
		assert.Equal(t, "feed-9", line["feed_id"])
		assert.EqualValues(t, 3, line["count"])
	})

	t.Run("错误字段", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "info", "json")

		Error(context.Background(), "search failed", assert.AnError)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, assert.AnError.Error(), line["error"])
		assert.Equal(t, "ERROR", line["level"])
	})

	t.Run("级别过滤", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "warn", "text")

		Debug(context.Background(), "hidden")
		Info(context.Background(), "hidden too")
		assert.Empty(t, buf.String())
	})
	t.Run("从当前 span 取追踪 ID", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "info", "json")

		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)
		Info(ctx, "traced")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", line["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", line["span_id"])
	})
}
