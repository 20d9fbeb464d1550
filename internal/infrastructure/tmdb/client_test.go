package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mudi-match-api/internal/application/catalog"
	"mudi-match-api/internal/config"
	"mudi-match-api/internal/domain/entity"
)

const detailsBody = `{
  "id": 550,
  "title": "Fight Club",
  "overview": "An insomniac office worker...",
  "release_date": "1999-10-15",
  "poster_path": "/fc.jpg",
  "runtime": 139,
  "genres": [{"id": 18, "name": "Drama"}],
  "vote_average": 8.4,
  "vote_count": 26000,
  "watch/providers": {"results": {
    "US": {"link": "https://tmdb.example/550/us", "flatrate": [{"provider_id": 8, "provider_name": "Netflix", "display_priority": 1}]},
    "GB": {"link": "https://tmdb.example/550/gb", "rent": [{"provider_id": 2, "provider_name": "Apple TV"}]}
  }}
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(&config.TMDBConfig{BaseURL: srv.URL, Token: "read-token", Language: "en-US", Timeout: 2 * time.Second})
}

func TestClient_Details(t *testing.T) {
	t.Run("只保留请求地区的观看渠道", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/movie/550", r.URL.Path)
			assert.Equal(t, "watch/providers", r.URL.Query().Get("append_to_response"))
			assert.Equal(t, "en-US", r.URL.Query().Get("language"))
			assert.Equal(t, "Bearer read-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(detailsBody))
		})

		e, err := c.Details(context.Background(), 550, "US")
		require.NoError(t, err)
		assert.Equal(t, "Fight Club", e.Title)
		assert.Equal(t, 139, e.Runtime)
		assert.Equal(t, []string{"Drama"}, e.Genres)
		require.NotNil(t, e.WatchProviders)
		assert.Equal(t, "https://tmdb.example/550/us", e.WatchProviders.Link)
		require.Len(t, e.WatchProviders.Flatrate, 1)
		assert.Equal(t, "Netflix", e.WatchProviders.Flatrate[0].Name)
		assert.Empty(t, e.WatchProviders.Rent)
	})

	t.Run("地区无渠道", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(detailsBody))
		})
		e, err := c.Details(context.Background(), 550, "FR")
		require.NoError(t, err)
		assert.Nil(t, e.WatchProviders)
	})

	t.Run("404 映射为 ErrNotFound", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := c.Details(context.Background(), 1, "US")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("5xx 返回 StatusError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := c.Details(context.Background(), 1, "US")
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadGateway, se.StatusCode)
		assert.Equal(t, "details", se.Endpoint)
	})
}

func TestClient_Discover(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "GB", q.Get("watch_region"))
		assert.Equal(t, "8|337", q.Get("with_watch_providers"))
		assert.Equal(t, "flatrate", q.Get("with_watch_monetization_types"))
		assert.Equal(t, "6.5", q.Get("vote_average.gte"))
		assert.Equal(t, "100", q.Get("vote_count.gte"))
		assert.Equal(t, "popularity.desc", q.Get("sort_by"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page":        2,
			"total_pages": 9,
			"results": []map[string]any{
				{"id": 7, "title": "Seven", "poster_path": "/s.jpg", "genre_ids": []int{80, 53}, "vote_average": 8.3},
			},
		})
	})

	page, err := c.Discover(context.Background(), catalog.DiscoverQuery{
		Page: 2, Region: "GB", Providers: []int{8, 337}, MinVoteAverage: 6.5, MinVoteCount: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 9, page.TotalPages)
	require.Len(t, page.Results, 1)
	assert.Equal(t, int64(7), page.Results[0].ID)
	assert.Equal(t, []int{80, 53}, page.Results[0].GenreIDs)
}

func TestClient_Keywords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/7/keywords", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":7,"keywords":[{"id":1,"name":"Serial Killer"},{"id":2,"name":"Detective"}]}`))
	})
	kws, err := c.Keywords(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"serial killer", "detective"}, kws)
}

type stubProvider struct {
	calls atomic.Int32
	err   error
}

func (s *stubProvider) Details(_ context.Context, movieID int64, _ string) (*entity.Enrichment, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Enrichment{Title: "movie", Runtime: int(movieID)}, nil
}

func TestBreakerProvider(t *testing.T) {
	t.Run("连续失败后熔断", func(t *testing.T) {
		stub := &stubProvider{err: errors.New("connection refused")}
		p := NewBreakerProvider(stub, config.BreakerConfig{FailureThreshold: 3, Timeout: time.Minute})

		for i := 0; i < 3; i++ {
			_, err := p.Details(context.Background(), 1, "US")
			require.Error(t, err)
		}
		assert.Equal(t, gobreaker.StateOpen, p.State())

		_, err := p.Details(context.Background(), 1, "US")
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, int32(3), stub.calls.Load())
	})

	t.Run("影片不存在不计入失败", func(t *testing.T) {
		stub := &stubProvider{err: ErrNotFound}
		p := NewBreakerProvider(stub, config.BreakerConfig{FailureThreshold: 2})

		for i := 0; i < 5; i++ {
			_, err := p.Details(context.Background(), 1, "US")
			assert.ErrorIs(t, err, ErrNotFound)
		}
		assert.Equal(t, gobreaker.StateClosed, p.State())
	})
}

// mapCache 进程内 JSONCache，按 JSON 往返模拟 redis 行为
type mapCache struct {
	data map[string][]byte
}

func (m *mapCache) GetOrLoad(ctx context.Context, key string, _ time.Duration, dest any, loader func(ctx context.Context) (any, error)) error {
	if raw, ok := m.data[key]; ok {
		return json.Unmarshal(raw, dest)
	}
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return json.Unmarshal(raw, dest)
}

func TestCachedProvider(t *testing.T) {
	stub := &stubProvider{}
	cache := &mapCache{data: map[string][]byte{}}
	p := NewCachedProvider(stub, cache, time.Hour)

	first, err := p.Details(context.Background(), 42, "US")
	require.NoError(t, err)
	second, err := p.Details(context.Background(), 42, "US")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), stub.calls.Load())

	_, err = p.Details(context.Background(), 42, "GB")
	require.NoError(t, err)
	assert.Equal(t, int32(2), stub.calls.Load())
	assert.Contains(t, cache.data, "tmdb:details:42:US")
}
