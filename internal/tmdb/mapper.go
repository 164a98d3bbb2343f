package tmdb

import (
	"strconv"
	"strings"

	"github.com/AnasZiaf26/Zapit/internal/domain"
)

// MapItems converts catalog results to domain items.
// fallback is used when a result carries no media_type; results of other
// media types (people) are dropped.
func MapItems(results []ResultDTO, fallback domain.MediaKind) []domain.MediaItem {
	items := make([]domain.MediaItem, 0, len(results))
	for _, r := range results {
		kind, ok := resultKind(r, fallback)
		if !ok {
			continue
		}
		items = append(items, mapItem(r, kind))
	}
	return items
}

func resultKind(r ResultDTO, fallback domain.MediaKind) (domain.MediaKind, bool) {
	if r.MediaType != "" {
		return domain.ParseMediaKind(r.MediaType)
	}
	if fallback != "" {
		return fallback, true
	}
	// Untyped result outside a kind-scoped listing
	switch {
	case r.Title != "":
		return domain.KindMovie, true
	case r.Name != "":
		return domain.KindSeries, true
	default:
		return "", false
	}
}

func mapItem(r ResultDTO, kind domain.MediaKind) domain.MediaItem {
	item := domain.MediaItem{
		ID:           r.ID,
		Kind:         kind,
		Title:        r.Title,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		Popularity:   r.Popularity,
		Rating:       r.VoteAverage,
		GenreIDs:     r.GenreIDs,
	}

	date := r.ReleaseDate
	if kind == domain.KindSeries {
		date = r.FirstAirDate
		if r.Name != "" {
			item.Title = r.Name
		}
	}
	if item.Title == "" {
		item.Title = r.Name
	}
	item.Year = parseYear(date)

	return item
}

// parseYear extracts the year from an upstream "YYYY-MM-DD" date
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// MapGenres converts genre list entries
func MapGenres(dtos []GenreDTO) []domain.Genre {
	genres := make([]domain.Genre, 0, len(dtos))
	for _, g := range dtos {
		genres = append(genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	return genres
}

// MapRegions converts the watch-provider map keyed by region code
func MapRegions(regions map[string]RegionDTO) map[domain.Region]domain.RegionProviders {
	out := make(map[domain.Region]domain.RegionProviders, len(regions))
	for code, r := range regions {
		out[domain.Region(strings.ToUpper(code))] = mapRegion(r)
	}
	return out
}

func mapRegion(r RegionDTO) domain.RegionProviders {
	rp := domain.RegionProviders{Link: r.Link}

	groups := []struct {
		m    domain.Monetization
		list []ProviderDTO
	}{
		{domain.MonetizationFlatrate, r.Flatrate},
		{domain.MonetizationFree, r.Free},
		{domain.MonetizationAds, r.Ads},
		{domain.MonetizationRent, r.Rent},
		{domain.MonetizationBuy, r.Buy},
		{domain.MonetizationTheatrical, r.Theatrical},
	}
	for _, g := range groups {
		for _, p := range g.list {
			rp.Providers = append(rp.Providers, domain.Provider{
				ID:              p.ProviderID,
				Name:            p.ProviderName,
				LogoPath:        p.LogoPath,
				Monetization:    g.m,
				DisplayPriority: p.DisplayPriority,
			})
		}
	}
	return rp
}
