package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AnasZiaf26/Zapit/internal/domain"
)

// Command factories for async operations

// WaitForChangeCmd blocks until the controller signals a change
func WaitForChangeCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ViewChangedMsg{}
	}
}

// LoadGenresCmd loads the genre list for the current kind and language
func LoadGenresCmd(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		genres, err := ctrl.Genres(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading genres"}
		}
		return GenresLoadedMsg{Genres: genres}
	}
}

// BrowseGenreCmd enters genre mode
func BrowseGenreCmd(ctx context.Context, ctrl Controller, name string) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.BrowseGenre(ctx, name); err != nil {
			return ErrMsg{Err: err, Context: "browsing genre"}
		}
		return nil
	}
}

// SelectTitleCmd resolves availability for the detail overlay
func SelectTitleCmd(ctx context.Context, ctrl Controller, item domain.MediaItem) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.SelectTitle(ctx, item)
		return DetailResolvedMsg{Item: item, Err: err}
	}
}

// SetKindCmd switches between movies and series
func SetKindCmd(ctx context.Context, ctrl Controller, kind domain.MediaKind) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.SetKind(ctx, kind); err != nil {
			return ErrMsg{Err: err, Context: "switching kind"}
		}
		return nil
	}
}

// SetLanguageCmd switches the content language
func SetLanguageCmd(ctx context.Context, ctrl Controller, lang string) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.SetLanguage(ctx, lang); err != nil {
			return ErrMsg{Err: err, Context: "switching language"}
		}
		return nil
	}
}

// ToggleFavoriteCmd adds or removes a favorite
func ToggleFavoriteCmd(ctrl Controller, item domain.MediaItem) tea.Cmd {
	return func() tea.Msg {
		added, err := ctrl.ToggleFavorite(item)
		switch {
		case errors.Is(err, domain.ErrNotSignedIn):
			return StatusMsg{Text: "Sign in (u) to save favorites"}
		case err != nil:
			return ErrMsg{Err: err, Context: "saving favorite"}
		case added:
			return StatusMsg{Text: fmt.Sprintf("Added %q to favorites", item.Title)}
		default:
			return StatusMsg{Text: fmt.Sprintf("Removed %q from favorites", item.Title)}
		}
	}
}

// SignInCmd starts a local session
func SignInCmd(ctrl Controller, credential string) tea.Cmd {
	return func() tea.Msg {
		return SignedInMsg{Err: ctrl.SignIn(credential)}
	}
}

// SignOutCmd ends the local session
func SignOutCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.SignOut(); err != nil {
			return ErrMsg{Err: err, Context: "signing out"}
		}
		return StatusMsg{Text: "Signed out"}
	}
}

// OpenLinkCmd opens a watch link in the browser
func OpenLinkCmd(opener LinkOpener, link domain.WatchLink) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(link.URL); err != nil {
			return ErrMsg{Err: err, Context: "opening " + link.Provider.Name}
		}
		return StatusMsg{Text: "Opened " + link.Provider.Name}
	}
}
