package tui

import "github.com/AnasZiaf26/Zapit/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ViewChangedMsg signals that a new controller snapshot is available
type ViewChangedMsg struct{}

// StatusMsg shows a transient footer message
type StatusMsg struct {
	Text string
}

// GenresLoadedMsg carries the genre list for the picker
type GenresLoadedMsg struct {
	Genres []domain.Genre
}

// DetailResolvedMsg signals that an availability lookup finished
type DetailResolvedMsg struct {
	Item domain.MediaItem
	Err  error
}

// SignedInMsg signals that a sign in attempt finished
type SignedInMsg struct {
	Err error
}
