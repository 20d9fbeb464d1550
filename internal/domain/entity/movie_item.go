package entity

// WatchProvider 流媒体平台
type WatchProvider struct {
	ID              int    `json:"provider_id"`
	Name            string `json:"provider_name"`
	LogoPath        string `json:"logo_path,omitempty"`
	DisplayPriority int    `json:"display_priority"`
}

// WatchProviders 某一地区的观看渠道
type WatchProviders struct {
	Link     string          `json:"link,omitempty"`
	Flatrate []WatchProvider `json:"flatrate,omitempty"`
	Rent     []WatchProvider `json:"rent,omitempty"`
	Buy      []WatchProvider `json:"buy,omitempty"`
}

// Enrichment 元数据服务返回的扩展字段
type Enrichment struct {
	Title          string          `json:"title,omitempty"`
	Overview       string          `json:"overview,omitempty"`
	ReleaseDate    string          `json:"release_date,omitempty"`
	PosterPath     string          `json:"poster_path,omitempty"`
	BackdropPath   string          `json:"backdrop_path,omitempty"`
	Tagline        string          `json:"tagline,omitempty"`
	Runtime        int             `json:"runtime,omitempty"`
	Genres         []string        `json:"genres,omitempty"`
	VoteAverage    float64         `json:"vote_average,omitempty"`
	VoteCount      int             `json:"vote_count,omitempty"`
	WatchProviders *WatchProviders `json:"watch_providers,omitempty"`
}

// MovieItem 返回给调用方的影片，Enriched 为 false 表示只有基础字段
type MovieItem struct {
	ID             int64           `json:"id"`
	Similarity     float64         `json:"similarity"`
	Title          string          `json:"title"`
	Overview       string          `json:"overview,omitempty"`
	ReleaseDate    string          `json:"release_date,omitempty"`
	PosterPath     string          `json:"poster_path,omitempty"`
	BackdropPath   string          `json:"backdrop_path,omitempty"`
	Tagline        string          `json:"tagline,omitempty"`
	Runtime        int             `json:"runtime,omitempty"`
	Genres         []string        `json:"genres,omitempty"`
	VoteAverage    float64         `json:"vote_average"`
	VoteCount      int             `json:"vote_count"`
	Popularity     float64         `json:"popularity"`
	WatchProviders *WatchProviders `json:"watch_providers,omitempty"`
	Enriched       bool            `json:"enriched"`
}

// NewBaselineItem 仅用基础字段构造
func NewBaselineItem(c Candidate) MovieItem {
	return MovieItem{
		ID:          c.MovieID,
		Similarity:  c.Score,
		Title:       c.Base.Title,
		Overview:    c.Base.Overview,
		ReleaseDate: c.Base.ReleaseDate,
		PosterPath:  c.Base.PosterPath,
		VoteAverage: c.Base.VoteAverage,
		VoteCount:   c.Base.VoteCount,
		Popularity:  c.Base.Popularity,
	}
}

// Merge 用扩展字段覆盖基础字段，空值保留基础字段
func (it MovieItem) Merge(e *Enrichment) MovieItem {
	if e == nil {
		return it
	}
	it.Title = firstNonEmpty(e.Title, it.Title)
	it.Overview = firstNonEmpty(e.Overview, it.Overview)
	it.ReleaseDate = firstNonEmpty(e.ReleaseDate, it.ReleaseDate)
	it.PosterPath = firstNonEmpty(e.PosterPath, it.PosterPath)
	it.BackdropPath = e.BackdropPath
	it.Tagline = e.Tagline
	it.Runtime = e.Runtime
	it.Genres = e.Genres
	if e.VoteCount > 0 {
		it.VoteAverage = e.VoteAverage
		it.VoteCount = e.VoteCount
	}
	it.WatchProviders = e.WatchProviders
	it.Enriched = true
	return it
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
