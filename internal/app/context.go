package app

import (
	"github.com/AnasZiaf26/Zapit/internal/domain"
	"github.com/AnasZiaf26/Zapit/internal/genre"
	"github.com/AnasZiaf26/Zapit/internal/home"
	"github.com/AnasZiaf26/Zapit/internal/search"
)

// Mode is the active main view. Modes are mutually exclusive.
type Mode int

const (
	ModeHome Mode = iota
	ModeGenre
	ModeSearch
)

// String returns a human-readable representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeHome:
		return "home"
	case ModeGenre:
		return "genre"
	case ModeSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Context is the per-session state every component is scoped by
type Context struct {
	Locale domain.Locale
	Region domain.Region
	Kind   domain.MediaKind
	Mode   Mode
	Query  string
	Genre  domain.Genre
}

// homeRequest is the home refresh scope for the context
func (c Context) homeRequest() home.Request {
	return home.Request{Kind: c.Kind, Locale: c.Locale, Region: c.Region}
}

// Detail is the title detail overlay
type Detail struct {
	Item     domain.MediaItem
	Loading  bool
	Record   *domain.AvailabilityRecord // nil when no region has the title
	Links    []domain.WatchLink
	Err      domain.FetchErrorKind
	Favorite bool
}

// View is an immutable snapshot of everything presentation renders
type View struct {
	Context   Context
	Home      home.View
	Search    search.State
	Genre     genre.State
	Detail    *Detail
	User      *domain.UserSession
	Languages []string
}

// Items returns the list shown by the current non-home mode
func (v View) Items() []domain.MediaItem {
	switch v.Context.Mode {
	case ModeSearch:
		return v.Search.Items
	case ModeGenre:
		return v.Genre.Items
	default:
		return nil
	}
}
