package tmdb

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/AnasZiaf26/Zapit/internal/domain"
)

// Endpoint names one upstream query shape
type Endpoint string

const (
	EndpointTrending       Endpoint = "trending"
	EndpointDiscover       Endpoint = "discover"
	EndpointSearchMulti    Endpoint = "search_multi"
	EndpointNowPlaying     Endpoint = "now_playing"
	EndpointWatchProviders Endpoint = "watch_providers"
	EndpointGenres         Endpoint = "genres"
)

// Params are the inputs of a query. Zero values are omitted from the request.
type Params struct {
	Kind         domain.MediaKind
	Window       domain.Window
	Language     string
	SortBy       string
	WatchRegion  domain.Region
	Monetization domain.Monetization
	ProviderID   int
	GenreID      int
	Page         int
	Query        string
	Region       domain.Region
	TitleID      int
}

// path returns the request path for the endpoint
func (e Endpoint) path(p Params) (string, error) {
	kind := p.Kind.UpstreamPath()

	switch e {
	case EndpointTrending:
		window := p.Window
		if window == "" {
			window = domain.WindowDay
		}
		return fmt.Sprintf("/trending/%s/%s", kind, window), nil
	case EndpointDiscover:
		return "/discover/" + kind, nil
	case EndpointSearchMulti:
		return "/search/multi", nil
	case EndpointNowPlaying:
		return "/movie/now_playing", nil
	case EndpointWatchProviders:
		if p.TitleID <= 0 {
			return "", fmt.Errorf("title id is required")
		}
		return fmt.Sprintf("/%s/%d/watch/providers", kind, p.TitleID), nil
	case EndpointGenres:
		return fmt.Sprintf("/genre/%s/list", kind), nil
	default:
		return "", fmt.Errorf("unknown endpoint %q", string(e))
	}
}

// values returns the query string for the endpoint, without credentials
func (e Endpoint) values(p Params) url.Values {
	q := url.Values{}
	setString := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}
	setInt := func(key string, v int) {
		if v > 0 {
			q.Set(key, strconv.Itoa(v))
		}
	}

	setString("language", p.Language)

	switch e {
	case EndpointDiscover:
		setString("sort_by", p.SortBy)
		setString("watch_region", string(p.WatchRegion))
		setString("with_watch_monetization_types", string(p.Monetization))
		setInt("with_watch_providers", p.ProviderID)
		setInt("with_genres", p.GenreID)
		setInt("page", p.Page)
	case EndpointSearchMulti:
		setString("query", p.Query)
		setInt("page", p.Page)
	case EndpointNowPlaying:
		setString("region", string(p.Region))
		setInt("page", p.Page)
	case EndpointTrending:
		setInt("page", p.Page)
	case EndpointWatchProviders:
		q.Del("language")
	}
	return q
}
