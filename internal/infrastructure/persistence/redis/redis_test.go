package redis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mudi-match-api/internal/application/feed"
	"mudi-match-api/internal/config"
)

func TestKey(t *testing.T) {
	t.Run("带前缀", func(t *testing.T) {
		c := &Client{config: &config.RedisConfig{KeyPrefix: "mudi"}}
		assert.Equal(t, "mudi:watched:u1", c.Key("watched", "u1"))
	})

	t.Run("无前缀", func(t *testing.T) {
		c := &Client{config: &config.RedisConfig{}}
		assert.Equal(t, "feed:f1", c.Key("feed", "f1"))
	})

	t.Run("空客户端", func(t *testing.T) {
		var c *Client
		assert.Equal(t, "a:b", c.Key("a", "b"))
	})
}

func TestParseIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 10, 42}, parseIDs([]string{"42", "3", "bogus", "10"}))
	assert.Empty(t, parseIDs(nil))
}

func TestDecodeVersion(t *testing.T) {
	t.Run("读取会话版本", func(t *testing.T) {
		data, err := json.Marshal(&feed.State{FeedID: "f1", Version: 7})
		require.NoError(t, err)
		v, err := decodeVersion(data)
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
	})

	t.Run("旧数据没有版本字段", func(t *testing.T) {
		v, err := decodeVersion([]byte(`{"feed_id":"f1"}`))
		require.NoError(t, err)
		assert.Zero(t, v)
	})

	t.Run("损坏的数据", func(t *testing.T) {
		_, err := decodeVersion([]byte("{"))
		assert.Error(t, err)
	})
}
