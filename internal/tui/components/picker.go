package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/AnasZiaf26/Zapit/internal/tui/styles"
)

// PickerItem is one selectable row
type PickerItem struct {
	Label  string
	Detail string
}

// PickerKeyMap defines key bindings for the picker
type PickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Escape key.Binding
}

// DefaultPickerKeyMap returns the default picker key bindings
func DefaultPickerKeyMap() PickerKeyMap {
	return PickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+k", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+j", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// PickerResult reports what an update did
type PickerResult int

const (
	PickerNone     PickerResult = iota
	PickerSelected              // Selected() is valid
	PickerClosed
	PickerQueryChanged
)

// Picker is a filterable list modal
type Picker struct {
	visible  bool
	title    string
	items    []PickerItem
	matches  []int // Indices into items, in display order
	cursor   int
	offset   int
	external bool // Caller filters; the picker only reports query changes
	input    textinput.Model
	keys     PickerKeyMap
	height   int
}

// NewPicker creates a new picker
func NewPicker() Picker {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 80
	ti.Width = 40
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return Picker{
		input:  ti,
		keys:   DefaultPickerKeyMap(),
		height: 10,
	}
}

// Show opens the picker. With external set, the caller filters by
// reacting to PickerQueryChanged and calling SetItems.
func (p *Picker) Show(title string, items []PickerItem, external bool) tea.Cmd {
	p.visible = true
	p.title = title
	p.external = external
	p.input.SetValue("")
	p.SetItems(items)
	return p.input.Focus()
}

// Hide dismisses the picker
func (p *Picker) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible returns whether the picker is shown
func (p Picker) IsVisible() bool {
	return p.visible
}

// Title returns the picker title
func (p Picker) Title() string {
	return p.title
}

// Query returns the filter text
func (p Picker) Query() string {
	return p.input.Value()
}

// SetHeight sets the number of visible rows
func (p *Picker) SetHeight(h int) {
	if h < 3 {
		h = 3
	}
	p.height = h
}

// SetItems replaces the rows and reapplies the filter
func (p *Picker) SetItems(items []PickerItem) {
	p.items = items
	p.refilter()
}

// Selected returns the index of the highlighted item in the last SetItems
// slice, or -1 when nothing matches
func (p Picker) Selected() int {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return -1
	}
	return p.matches[p.cursor]
}

// Update handles input events
func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd, PickerResult) {
	if !p.visible {
		return p, nil, PickerNone
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, p.keys.Escape):
			p.Hide()
			return p, nil, PickerClosed
		case key.Matches(keyMsg, p.keys.Enter):
			if p.Selected() < 0 {
				return p, nil, PickerNone
			}
			return p, nil, PickerSelected
		case key.Matches(keyMsg, p.keys.Up):
			p.move(-1)
			return p, nil, PickerNone
		case key.Matches(keyMsg, p.keys.Down):
			p.move(1)
			return p, nil, PickerNone
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() == before {
		return p, cmd, PickerNone
	}
	p.refilter()
	return p, cmd, PickerQueryChanged
}

func (p *Picker) move(delta int) {
	if len(p.matches) == 0 {
		return
	}
	p.cursor = max(0, min(p.cursor+delta, len(p.matches)-1))
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.height {
		p.offset = p.cursor - p.height + 1
	}
}

func (p *Picker) refilter() {
	p.cursor, p.offset = 0, 0
	query := strings.TrimSpace(p.input.Value())
	p.matches = p.matches[:0]
	if p.external || query == "" {
		for i := range p.items {
			p.matches = append(p.matches, i)
		}
		return
	}
	for _, m := range fuzzy.FindFrom(query, pickerLabels(p.items)) {
		p.matches = append(p.matches, m.Index)
	}
}

// pickerLabels adapts the rows to fuzzy.Source
type pickerLabels []PickerItem

func (l pickerLabels) String(i int) string { return l[i].Label }
func (l pickerLabels) Len() int            { return len(l) }

// View renders the picker
func (p Picker) View() string {
	if !p.visible {
		return ""
	}

	const width = 44
	rows := []string{
		styles.ModalTitleStyle.Render(p.title),
		p.input.View(),
		"",
	}

	if len(p.matches) == 0 {
		rows = append(rows, styles.DimStyle.Render("No matches"))
	}
	end := min(p.offset+p.height, len(p.matches))
	for i := p.offset; i < end; i++ {
		item := p.items[p.matches[i]]
		line := styles.Truncate(item.Label, width-12)
		if item.Detail != "" {
			line = styles.Pad(line, width-12) + " " + styles.DimStyle.Render(item.Detail)
		}
		if i == p.cursor {
			rows = append(rows, styles.SelectedItemStyle.Width(width).Render(line))
		} else {
			rows = append(rows, styles.NormalItemStyle.Width(width).Render(line))
		}
	}

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
