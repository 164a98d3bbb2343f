package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AnasZiaf26/Zapit/internal/app"
	"github.com/AnasZiaf26/Zapit/internal/domain"
	"github.com/AnasZiaf26/Zapit/internal/locale"
	"github.com/AnasZiaf26/Zapit/internal/tui/components"
)

// handleKeyMsg routes key presses by what currently has focus
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.InputModal.IsVisible():
		return m.handleInputModalKeys(msg)
	case m.Picker.IsVisible():
		return m.handlePickerKeys(msg)
	case m.State == StateConfirmSignOut:
		return m.handleConfirmSignOutKeys(msg)
	case m.State == StateSearching:
		return m.handleSearchKeys(msg)
	case m.snap.Detail != nil:
		return m.handleDetailKeys(msg)
	default:
		return m.handleBrowseKeys(msg)
	}
}

func (m Model) handleInputModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var submitted bool
	m.InputModal, cmd, submitted = m.InputModal.Update(msg)
	if submitted {
		return m, SignInCmd(m.ctrl, m.InputModal.Value())
	}
	return m, cmd
}

func (m Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var result components.PickerResult
	m.Picker, cmd, result = m.Picker.Update(msg)

	switch result {
	case components.PickerClosed:
		m.purpose = pickNone

	case components.PickerQueryChanged:
		if m.purpose == pickFavorite {
			m.favorites = m.ctrl.Favorites(m.Picker.Query())
			m.Picker.SetItems(favoriteItems(m.favorites))
		}

	case components.PickerSelected:
		idx := m.Picker.Selected()
		purpose := m.purpose
		m.Picker.Hide()
		m.purpose = pickNone

		switch purpose {
		case pickGenre:
			return m, BrowseGenreCmd(m.ctx, m.ctrl, m.genres[idx].Name)
		case pickFavorite:
			f := m.favorites[idx]
			item := domain.MediaItem{ID: f.ID, Kind: f.Kind, Title: f.Title, PosterPath: f.PosterRef}
			return m, SelectTitleCmd(m.ctx, m.ctrl, item)
		case pickLanguage:
			return m, SetLanguageCmd(m.ctx, m.ctrl, m.snap.Languages[idx])
		}
	}
	return m, cmd
}

func (m Model) handleConfirmSignOutKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Confirm):
		m.State = StateBrowsing
		return m, SignOutCmd(m.ctrl)
	case key.Matches(msg, Keys.Deny):
		m.State = StateBrowsing
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.ctrl.SubmitQuery()
		m.SearchBox.Blur()
		m.State = StateBrowsing
		return m, nil
	case "esc":
		m.SearchBox.Blur()
		m.State = StateBrowsing
		return m, nil
	}

	before := m.SearchBox.Value()
	var cmd tea.Cmd
	m.SearchBox, cmd = m.SearchBox.Update(msg)
	if value := m.SearchBox.Value(); value != before {
		m.ctrl.SetQuery(m.ctx, value)
	}
	return m, cmd
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	detail := m.snap.Detail

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Escape), key.Matches(msg, Keys.Left):
		m.ctrl.CloseTitle()
		return m, nil
	case key.Matches(msg, Keys.Up):
		m.link = clamp(m.link-1, len(detail.Links))
		return m, nil
	case key.Matches(msg, Keys.Down):
		m.link = clamp(m.link+1, len(detail.Links))
		return m, nil
	case key.Matches(msg, Keys.Enter):
		if m.link < len(detail.Links) && m.opener != nil {
			return m, OpenLinkCmd(m.opener, detail.Links[m.link])
		}
		return m, nil
	case key.Matches(msg, Keys.Favorite):
		return m, ToggleFavoriteCmd(m.ctrl, detail.Item)
	case key.Matches(msg, Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.snap.Context.Mode

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.State = StateSearching
		m.StatusMsg = ""
		return m, m.SearchBox.Focus()

	case key.Matches(msg, Keys.Escape):
		switch mode {
		case app.ModeSearch:
			m.SearchBox.SetValue("")
			m.ctrl.SetQuery(m.ctx, "")
		case app.ModeGenre:
			m.ctrl.ClearGenre(m.ctx)
		}
		m.StatusMsg = ""
		return m, nil

	case key.Matches(msg, Keys.Genre):
		return m, LoadGenresCmd(m.ctx, m.ctrl)

	case key.Matches(msg, Keys.Kind):
		return m, SetKindCmd(m.ctx, m.ctrl, m.snap.Context.Kind.Toggle())

	case key.Matches(msg, Keys.Language):
		items := make([]components.PickerItem, len(m.snap.Languages))
		for i, lang := range m.snap.Languages {
			items[i] = components.PickerItem{Label: locale.DisplayName(lang), Detail: lang}
		}
		m.purpose = pickLanguage
		return m, m.Picker.Show("Content language", items, false)

	case key.Matches(msg, Keys.LoadMore):
		if !m.ctrl.LoadMore() {
			m.setStatus("No more results")
		}
		return m, nil

	case key.Matches(msg, Keys.Favorite):
		if item, ok := m.selectedItem(); ok {
			return m, ToggleFavoriteCmd(m.ctrl, item)
		}
		return m, nil

	case key.Matches(msg, Keys.Favorites):
		if m.snap.User == nil {
			m.setStatus("Sign in (u) to see favorites")
			return m, nil
		}
		m.favorites = m.ctrl.Favorites("")
		m.purpose = pickFavorite
		return m, m.Picker.Show("Favorites", favoriteItems(m.favorites), true)

	case key.Matches(msg, Keys.Account):
		if m.snap.User != nil {
			m.State = StateConfirmSignOut
			return m, nil
		}
		return m, m.InputModal.Show("Sign in", "email or name")

	case key.Matches(msg, Keys.Enter):
		if item, ok := m.selectedItem(); ok {
			return m, SelectTitleCmd(m.ctx, m.ctrl, item)
		}
		return m, nil
	}

	if mode == app.ModeHome {
		m.navigateShelves(msg)
		return m, nil
	}
	m.navigateList(msg)
	return m, nil
}

// navigateShelves moves between shelves vertically and within a shelf
// horizontally
func (m *Model) navigateShelves(msg tea.KeyMsg) {
	sections := m.snap.Home.Sections
	if len(sections) == 0 {
		return
	}

	switch {
	case key.Matches(msg, Keys.Up):
		m.shelf = clamp(m.shelf-1, len(sections))
	case key.Matches(msg, Keys.Down):
		m.shelf = clamp(m.shelf+1, len(sections))
	case key.Matches(msg, Keys.Home):
		m.shelf = 0
	case key.Matches(msg, Keys.End):
		m.shelf = len(sections) - 1
	case key.Matches(msg, Keys.Left):
		sec := sections[m.shelf]
		m.columns[sec.ID] = clamp(m.columns[sec.ID]-1, len(sec.Items))
	case key.Matches(msg, Keys.Right):
		sec := sections[m.shelf]
		m.columns[sec.ID] = clamp(m.columns[sec.ID]+1, len(sec.Items))
	}
}

// navigateList moves the cursor in search and genre results, fetching the
// next page as the end comes into view
func (m *Model) navigateList(msg tea.KeyMsg) {
	items := m.snap.Items()

	switch {
	case key.Matches(msg, Keys.Up):
		m.cursor = clamp(m.cursor-1, len(items))
	case key.Matches(msg, Keys.Down):
		m.cursor = clamp(m.cursor+1, len(items))
	case key.Matches(msg, Keys.Home):
		m.cursor = 0
	case key.Matches(msg, Keys.End):
		m.cursor = clamp(len(items)-1, len(items))
	default:
		return
	}

	if len(items) > 0 && m.cursor >= len(items)-loadMoreThreshold && m.listHasMore() {
		m.ctrl.LoadMore()
	}
}

// listHasMore reports whether the active list can be extended
func (m Model) listHasMore() bool {
	switch m.snap.Context.Mode {
	case app.ModeSearch:
		return m.snap.Search.HasMore() && !m.snap.Search.Loading
	case app.ModeGenre:
		return m.snap.Genre.HasMore() && !m.snap.Genre.Loading
	default:
		return false
	}
}

func favoriteItems(favorites []domain.Favorite) []components.PickerItem {
	items := make([]components.PickerItem, len(favorites))
	for i, f := range favorites {
		label := "Movie"
		if f.Kind == domain.KindSeries {
			label = "Series"
		}
		items[i] = components.PickerItem{Label: f.Title, Detail: label}
	}
	return items
}
