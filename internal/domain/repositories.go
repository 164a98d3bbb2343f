package domain

import (
	"context"
)

// DiscoverFilter narrows a discover query
type DiscoverFilter struct {
	SortBy       string       // e.g. "popularity.desc"
	WatchRegion  Region       // Availability region filter
	Monetization Monetization // e.g. flatrate
	ProviderID   int          // Watch provider filter (0 = any)
	GenreID      int          // Genre filter (0 = any)
	Page         int
}

// CatalogRepository provides the catalog listings used by the home shelves,
// search and genre browsing
type CatalogRepository interface {
	// Trending returns the trending titles of a kind for a window
	Trending(ctx context.Context, kind MediaKind, window Window, language string) (Page, error)

	// Discover returns a filtered, sorted catalog page
	Discover(ctx context.Context, kind MediaKind, filter DiscoverFilter, language string) (Page, error)

	// NowPlaying returns theatrical releases (movies only)
	NowPlaying(ctx context.Context, language string, region Region) (Page, error)
}

// SearchRepository provides free-text search across kinds
type SearchRepository interface {
	SearchMulti(ctx context.Context, query, language string, page int) (Page, error)
}

// GenreRepository lists catalog genres
type GenreRepository interface {
	Genres(ctx context.Context, kind MediaKind, language string) ([]Genre, error)
}

// AvailabilityRepository returns per-region provider data for a title,
// keyed by region code
type AvailabilityRepository interface {
	WatchProviders(ctx context.Context, kind MediaKind, id int) (map[Region]RegionProviders, error)
}
