package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AnasZiaf26/Zapit/internal/app"
	"github.com/AnasZiaf26/Zapit/internal/domain"
	"github.com/AnasZiaf26/Zapit/internal/locale"
	"github.com/AnasZiaf26/Zapit/internal/tui/styles"
)

// shelfHeight is the lines one home shelf takes (title, cards, gap)
const shelfHeight = 3

// cardWidth is the width of one title card on a shelf
const cardWidth = 24

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := max(1, m.Height-lipgloss.Height(header)-lipgloss.Height(footer))

	var body string
	switch {
	case m.snap.Detail != nil:
		body = m.renderDetail(*m.snap.Detail, bodyHeight)
	case m.snap.Context.Mode == app.ModeHome:
		body = m.renderHome(bodyHeight)
	default:
		body = m.renderList(bodyHeight)
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)

	switch {
	case m.InputModal.IsVisible():
		return m.overlay(m.InputModal.View())
	case m.Picker.IsVisible():
		return m.overlay(m.Picker.View())
	case m.State == StateConfirmSignOut:
		return m.overlay(styles.ModalStyle.Render(
			styles.ModalTitleStyle.Render("Sign out?") + "\n" +
				styles.DimStyle.Render("Favorites stay on this device until you sign in again.") + "\n\n" +
				styles.HelpKeyStyle.Render("y") + styles.HelpDescStyle.Render(" confirm  ") +
				styles.HelpKeyStyle.Render("n") + styles.HelpDescStyle.Render(" cancel"),
		))
	}
	return screen
}

// overlay centers a modal on the screen
func (m Model) overlay(modal string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "))
}

func (m Model) renderHeader() string {
	sc := m.snap.Context

	parts := []string{
		styles.TitleStyle.Render("Zapit"),
		styles.RenderBadge("Movies", sc.Kind == domain.KindMovie),
		styles.RenderBadge("Series", sc.Kind == domain.KindSeries),
		styles.SubtitleStyle.Render(locale.DisplayName(sc.Locale.Language)),
		styles.DimStyle.Render(string(sc.Region)),
	}
	if m.snap.User != nil {
		parts = append(parts, styles.AccentStyle.Render(m.snap.User.Name))
	} else {
		parts = append(parts, styles.DimStyle.Render("Guest"))
	}

	top := strings.Join(parts, "  ")
	return lipgloss.JoinVertical(lipgloss.Left, top, m.SearchBox.View(), "")
}

func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return styles.ErrorStyle.Render(styles.Truncate(m.StatusMsg, m.Width))
		}
		return styles.SuccessStyle.Render(styles.Truncate(m.StatusMsg, m.Width))
	}
	return m.Help.View(Keys)
}

// renderHome renders the home shelves, scrolled so the focused shelf is visible
func (m Model) renderHome(height int) string {
	sections := m.snap.Home.Sections
	if len(sections) == 0 {
		return styles.DimStyle.Render(m.Spinner.View() + " Loading...")
	}

	visible := max(1, height/shelfHeight)
	start := 0
	if m.shelf >= visible {
		start = m.shelf - visible + 1
	}
	end := min(start+visible, len(sections))

	var rows []string
	for i := start; i < end; i++ {
		rows = append(rows, m.renderShelf(sections[i], i == m.shelf), "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderShelf(sec domain.ViewSection, focused bool) string {
	title := styles.ShelfTitleStyle.Render(sec.Title)
	if focused {
		title = styles.ShelfFocusedTitleStyle.Render(sec.Title)
	}

	var line string
	switch sec.Status {
	case domain.StatusLoading:
		line = styles.DimStyle.Render(m.Spinner.View() + " Loading...")
	case domain.StatusError:
		line = styles.ErrorStyle.Render(errorText(sec.Err))
	default:
		line = m.renderCards(sec, focused)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, line)
}

// renderCards renders the window of cards around the shelf cursor
func (m Model) renderCards(sec domain.ViewSection, focused bool) string {
	if len(sec.Items) == 0 {
		return styles.DimStyle.Render("Nothing here right now")
	}

	col := m.columns[sec.ID]
	visible := max(1, m.Width/(cardWidth+2))
	start := 0
	if col >= visible {
		start = col - visible + 1
	}
	end := min(start+visible, len(sec.Items))

	cards := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		label := styles.Pad(styles.Truncate(sec.Items[i].Title, cardWidth), cardWidth)
		if focused && i == col {
			cards = append(cards, styles.CardSelectedStyle.Render(label))
		} else {
			cards = append(cards, styles.CardStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderList renders search or genre results
func (m Model) renderList(height int) string {
	var title string
	var loading bool
	var errKind domain.FetchErrorKind
	var page, total int

	switch m.snap.Context.Mode {
	case app.ModeSearch:
		s := m.snap.Search
		title = fmt.Sprintf("Results for %q", m.snap.Context.Query)
		loading, errKind, page, total = s.Loading, s.Err, s.Page, s.TotalPages
	case app.ModeGenre:
		g := m.snap.Genre
		title = g.Genre.Name
		loading, errKind, page, total = g.Loading, g.Err, g.Page, g.TotalPages
	}

	rows := []string{styles.ShelfTitleStyle.Render(title)}
	items := m.snap.Items()

	visible := max(1, height-3)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(items))

	for i := start; i < end; i++ {
		rows = append(rows, m.renderListItem(items[i], i == m.cursor))
	}

	switch {
	case loading:
		rows = append(rows, styles.DimStyle.Render(m.Spinner.View()+" Loading..."))
	case errKind != "":
		rows = append(rows, styles.ErrorStyle.Render(errorText(errKind)))
	case len(items) == 0:
		rows = append(rows, styles.DimStyle.Render("No results"))
	case page < total:
		rows = append(rows, styles.DimStyle.Render(fmt.Sprintf("Page %d of %d · m for more", page, total)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderListItem(item domain.MediaItem, selected bool) string {
	fav := m.snap.User.HasFavorite(item.Key())
	width := max(20, m.Width-4)

	desc := item.Description()
	titleWidth := max(10, width-lipgloss.Width(desc)-6)
	line := styles.RenderFavorite(fav) + " " + styles.Pad(styles.Truncate(item.Title, titleWidth), titleWidth) + " " + desc

	if selected {
		return styles.SelectedItemStyle.Render(line)
	}
	return styles.NormalItemStyle.Render(line)
}

// renderDetail renders the title overlay with its watch options
func (m Model) renderDetail(d app.Detail, height int) string {
	width := max(20, m.Width-4)
	item := d.Item

	heading := styles.TitleStyle.Render(item.Title) + " " + styles.RenderFavorite(d.Favorite)
	rows := []string{heading}
	if desc := item.Description(); desc != "" {
		rows = append(rows, styles.SubtitleStyle.Render(desc))
	}
	if item.Overview != "" {
		rows = append(rows, "", lipgloss.NewStyle().Width(width).Render(item.Overview))
	}
	rows = append(rows, "")

	switch {
	case d.Loading:
		rows = append(rows, styles.DimStyle.Render(m.Spinner.View()+" Finding where to watch..."))
	case d.Err != "":
		rows = append(rows, styles.ErrorStyle.Render(errorText(d.Err)))
	case d.Record == nil:
		rows = append(rows, styles.DimStyle.Render("Not available to stream in any region we checked"))
	default:
		rows = append(rows, m.renderAvailability(d)...)
	}

	return lipgloss.NewStyle().MaxHeight(height).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderAvailability(d app.Detail) []string {
	var rows []string
	if d.Record.Region != m.snap.Context.Region {
		rows = append(rows, styles.DimStyle.Render(fmt.Sprintf(
			"Not available in %s, showing %s", m.snap.Context.Region, d.Record.Region)))
	}

	if len(d.Links) == 0 {
		rows = append(rows, styles.DimStyle.Render("No subscription service carries this title"))
	} else {
		rows = append(rows, styles.ShelfTitleStyle.Render("Stream"))
		for i, link := range d.Links {
			label := styles.Pad(link.Provider.Name, 24) + " " + styles.LinkStyle.Render(link.URL)
			if i == m.link {
				rows = append(rows, styles.SelectedItemStyle.Render(label))
			} else {
				rows = append(rows, styles.NormalItemStyle.Render(label))
			}
		}
	}

	for _, mon := range []domain.Monetization{domain.MonetizationFree, domain.MonetizationAds, domain.MonetizationRent, domain.MonetizationBuy} {
		providers := d.Record.ByMonetization(mon)
		if len(providers) == 0 {
			continue
		}
		names := make([]string, len(providers))
		for i, p := range providers {
			names[i] = p.Name
		}
		rows = append(rows, styles.DimStyle.Render(monetizationLabel(mon)+": "+strings.Join(names, ", ")))
	}
	return rows
}

func monetizationLabel(m domain.Monetization) string {
	switch m {
	case domain.MonetizationFree:
		return "Free"
	case domain.MonetizationAds:
		return "With ads"
	case domain.MonetizationRent:
		return "Rent"
	case domain.MonetizationBuy:
		return "Buy"
	default:
		return string(m)
	}
}

// errorText is the user-facing message for a fetch failure
func errorText(kind domain.FetchErrorKind) string {
	switch kind {
	case domain.FetchNetwork:
		return "Couldn't reach the catalog. Check your connection."
	case domain.FetchUpstreamRejected:
		return "The catalog refused the request."
	case domain.FetchParse:
		return "The catalog sent something we couldn't read."
	default:
		return "Something went wrong."
	}
}
