package tmdb

import (
	"context"
	"encoding/json"

	"github.com/AnasZiaf26/Zapit/internal/domain"
)

var (
	_ domain.CatalogRepository      = (*Client)(nil)
	_ domain.SearchRepository       = (*Client)(nil)
	_ domain.GenreRepository        = (*Client)(nil)
	_ domain.AvailabilityRepository = (*Client)(nil)
)

// Trending returns the trending titles of a kind for a window
func (c *Client) Trending(ctx context.Context, kind domain.MediaKind, window domain.Window, language string) (domain.Page, error) {
	return c.listing(ctx, EndpointTrending, Params{Kind: kind, Window: window, Language: language}, kind)
}

// Discover returns a filtered, sorted catalog page
func (c *Client) Discover(ctx context.Context, kind domain.MediaKind, filter domain.DiscoverFilter, language string) (domain.Page, error) {
	return c.listing(ctx, EndpointDiscover, Params{
		Kind:         kind,
		Language:     language,
		SortBy:       filter.SortBy,
		WatchRegion:  filter.WatchRegion,
		Monetization: filter.Monetization,
		ProviderID:   filter.ProviderID,
		GenreID:      filter.GenreID,
		Page:         filter.Page,
	}, kind)
}

// NowPlaying returns theatrical releases, which only exist for movies
func (c *Client) NowPlaying(ctx context.Context, language string, region domain.Region) (domain.Page, error) {
	return c.listing(ctx, EndpointNowPlaying, Params{Kind: domain.KindMovie, Language: language, Region: region}, domain.KindMovie)
}

// SearchMulti searches movies and series; people are dropped
func (c *Client) SearchMulti(ctx context.Context, query, language string, page int) (domain.Page, error) {
	return c.listing(ctx, EndpointSearchMulti, Params{Query: query, Language: language, Page: page}, "")
}

// Genres lists the genres of a kind
func (c *Client) Genres(ctx context.Context, kind domain.MediaKind, language string) ([]domain.Genre, error) {
	payload, err := c.Query(ctx, EndpointGenres, Params{Kind: kind, Language: language})
	if err != nil {
		return nil, err
	}
	return MapGenres(payload.Genres), nil
}

// WatchProviders returns per-region availability for a title
func (c *Client) WatchProviders(ctx context.Context, kind domain.MediaKind, id int) (map[domain.Region]domain.RegionProviders, error) {
	payload, err := c.Query(ctx, EndpointWatchProviders, Params{Kind: kind, TitleID: id})
	if err != nil {
		return nil, err
	}
	if !payload.HasResults() {
		return map[domain.Region]domain.RegionProviders{}, nil
	}

	var regions map[string]RegionDTO
	if err := json.Unmarshal(payload.Results, &regions); err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchParse, Endpoint: string(EndpointWatchProviders), Err: err}
	}
	return MapRegions(regions), nil
}

// listing runs a paged catalog query and maps its results
func (c *Client) listing(ctx context.Context, endpoint Endpoint, params Params, kind domain.MediaKind) (domain.Page, error) {
	payload, err := c.Query(ctx, endpoint, params)
	if err != nil {
		return domain.Page{}, err
	}

	page := domain.Page{Page: payload.Page, TotalPages: payload.TotalPages}
	if !payload.HasResults() {
		return page, nil
	}

	var results []ResultDTO
	if err := json.Unmarshal(payload.Results, &results); err != nil {
		return domain.Page{}, &domain.FetchError{Kind: domain.FetchParse, Endpoint: string(endpoint), Err: err}
	}
	page.Items = MapItems(results, kind)
	return page, nil
}
