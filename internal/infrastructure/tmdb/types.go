package tmdb

import "mudi-match-api/internal/domain/entity"

type genreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type providerDTO struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

type regionProvidersDTO struct {
	Link     string        `json:"link"`
	Flatrate []providerDTO `json:"flatrate"`
	Rent     []providerDTO `json:"rent"`
	Buy      []providerDTO `json:"buy"`
}

type detailsDTO struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Overview       string     `json:"overview"`
	ReleaseDate    string     `json:"release_date"`
	PosterPath     string     `json:"poster_path"`
	BackdropPath   string     `json:"backdrop_path"`
	Tagline        string     `json:"tagline"`
	Runtime        int        `json:"runtime"`
	Genres         []genreDTO `json:"genres"`
	VoteAverage    float64    `json:"vote_average"`
	VoteCount      int        `json:"vote_count"`
	WatchProviders struct {
		Results map[string]regionProvidersDTO `json:"results"`
	} `json:"watch/providers"`
}

type discoverDTO struct {
	Page         int `json:"page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
	Results      []struct {
		ID          int64   `json:"id"`
		Title       string  `json:"title"`
		Overview    string  `json:"overview"`
		ReleaseDate string  `json:"release_date"`
		PosterPath  string  `json:"poster_path"`
		GenreIDs    []int   `json:"genre_ids"`
		VoteAverage float64 `json:"vote_average"`
		VoteCount   int     `json:"vote_count"`
		Popularity  float64 `json:"popularity"`
	} `json:"results"`
}

type keywordsDTO struct {
	ID       int64 `json:"id"`
	Keywords []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"keywords"`
}

func toProviders(in []providerDTO) []entity.WatchProvider {
	if len(in) == 0 {
		return nil
	}
	out := make([]entity.WatchProvider, len(in))
	for i, p := range in {
		out[i] = entity.WatchProvider{
			ID:              p.ProviderID,
			Name:            p.ProviderName,
			LogoPath:        p.LogoPath,
			DisplayPriority: p.DisplayPriority,
		}
	}
	return out
}

// toEnrichment 只保留调用方地区的观看渠道
func (d *detailsDTO) toEnrichment(region string) *entity.Enrichment {
	e := &entity.Enrichment{
		Title:        d.Title,
		Overview:     d.Overview,
		ReleaseDate:  d.ReleaseDate,
		PosterPath:   d.PosterPath,
		BackdropPath: d.BackdropPath,
		Tagline:      d.Tagline,
		Runtime:      d.Runtime,
		VoteAverage:  d.VoteAverage,
		VoteCount:    d.VoteCount,
	}
	for _, g := range d.Genres {
		e.Genres = append(e.Genres, g.Name)
	}
	if rp, ok := d.WatchProviders.Results[region]; ok {
		e.WatchProviders = &entity.WatchProviders{
			Link:     rp.Link,
			Flatrate: toProviders(rp.Flatrate),
			Rent:     toProviders(rp.Rent),
			Buy:      toProviders(rp.Buy),
		}
	}
	return e
}
