package domain

import (
	"fmt"
	"strconv"
)

// MediaKind distinguishes content types
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "series"
)

// ParseMediaKind accepts both the upstream spelling ("tv") and ours ("series")
func ParseMediaKind(s string) (MediaKind, bool) {
	switch s {
	case "movie":
		return KindMovie, true
	case "tv", "series", "show":
		return KindSeries, true
	default:
		return "", false
	}
}

// UpstreamPath returns the path segment the metadata service uses for this kind
func (k MediaKind) UpstreamPath() string {
	if k == KindSeries {
		return "tv"
	}
	return "movie"
}

// Toggle returns the other kind (used by the kind switch)
func (k MediaKind) Toggle() MediaKind {
	if k == KindSeries {
		return KindMovie
	}
	return KindSeries
}

// MediaItem is a catalog entry as returned by the metadata service.
// Values are never mutated after mapping; a refresh replaces them.
type MediaItem struct {
	ID           int       `json:"id"`
	Kind         MediaKind `json:"kind"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview,omitempty"`
	PosterPath   string    `json:"posterPath,omitempty"`   // Artwork reference (relative image path)
	BackdropPath string    `json:"backdropPath,omitempty"` // Background art reference
	Year         int       `json:"year,omitempty"`
	Popularity   float64   `json:"popularity,omitempty"`
	Rating       float64   `json:"rating,omitempty"` // 0-10 community vote average
	GenreIDs     []int     `json:"genreIds,omitempty"`
}

// Key identifies an item across kinds; upstream ids collide between movies and series
func (m MediaItem) Key() string {
	return string(m.Kind) + ":" + strconv.Itoa(m.ID)
}

// HasArtwork reports whether the item carries a displayable poster
func (m MediaItem) HasArtwork() bool {
	return m.PosterPath != ""
}

// Description returns secondary info for display
func (m MediaItem) Description() string {
	switch {
	case m.Year > 0 && m.Rating > 0:
		return fmt.Sprintf("%d · %.1f", m.Year, m.Rating)
	case m.Year > 0:
		return strconv.Itoa(m.Year)
	case m.Rating > 0:
		return fmt.Sprintf("%.1f", m.Rating)
	default:
		return ""
	}
}

// Genre is a catalog genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Locale is the effective content language of a session
type Locale struct {
	Language string // Supported base language, e.g. "fr"
	Fallback string // Language used when content is missing, e.g. "en"
	Tag      string // Upstream language parameter, e.g. "fr-FR"
}

// Region is an ISO-3166 availability region code, e.g. "QA"
type Region string

// Window is the trending time window
type Window string

const (
	WindowDay  Window = "day"
	WindowWeek Window = "week"
)
