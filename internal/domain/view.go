package domain

// SectionStatus is the load state of a ViewSection
type SectionStatus int

const (
	StatusLoading SectionStatus = iota
	StatusReady
	StatusError
)

// String returns a human-readable representation of the status
func (s SectionStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ViewSection is one named, ordered shelf of items
type ViewSection struct {
	ID     string
	Title  string
	Items  []MediaItem
	Status SectionStatus
	Err    FetchErrorKind // Set only when Status is StatusError
}

// Loading returns a fresh loading section for the given shelf
func Loading(id, title string) ViewSection {
	return ViewSection{ID: id, Title: title, Status: StatusLoading}
}

// Resolve moves a loading section to ready with the given items.
// Sections that already settled are returned unchanged.
func (s ViewSection) Resolve(items []MediaItem) ViewSection {
	if s.Status != StatusLoading {
		return s
	}
	s.Items = items
	s.Status = StatusReady
	return s
}

// Fail moves a loading section to error with an empty list.
// Sections that already settled are returned unchanged.
func (s ViewSection) Fail(kind FetchErrorKind) ViewSection {
	if s.Status != StatusLoading {
		return s
	}
	s.Items = nil
	s.Status = StatusError
	s.Err = kind
	return s
}

// Page is one page of catalog results
type Page struct {
	Items      []MediaItem
	Page       int
	TotalPages int
}

// HasMore reports whether a following page exists
func (p Page) HasMore() bool {
	return p.Page < p.TotalPages
}
