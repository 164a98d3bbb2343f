package tui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AnasZiaf26/Zapit/internal/app"
	"github.com/AnasZiaf26/Zapit/internal/domain"
	"github.com/AnasZiaf26/Zapit/internal/tui/components"
	"github.com/AnasZiaf26/Zapit/internal/tui/styles"
)

// Controller is the application surface the UI drives
type Controller interface {
	Snapshot() app.View
	SetKind(ctx context.Context, kind domain.MediaKind) error
	SetLanguage(ctx context.Context, lang string) error
	SetQuery(ctx context.Context, text string)
	SubmitQuery()
	LoadMore() bool
	BrowseGenre(ctx context.Context, name string) error
	Genres(ctx context.Context) ([]domain.Genre, error)
	ClearGenre(ctx context.Context)
	SelectTitle(ctx context.Context, item domain.MediaItem) error
	CloseTitle()
	ToggleFavorite(item domain.MediaItem) (bool, error)
	Favorites(query string) []domain.Favorite
	SignIn(credential string) error
	SignOut() error
}

// LinkOpener opens watch links outside the terminal
type LinkOpener interface {
	Open(url string) error
}

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateSearching
	StateConfirmSignOut
)

// pickerPurpose is what the shared picker modal is choosing
type pickerPurpose int

const (
	pickNone pickerPurpose = iota
	pickGenre
	pickFavorite
	pickLanguage
)

// loadMoreThreshold is how close to the end of a list the cursor gets
// before the next page is requested
const loadMoreThreshold = 3

// ChromeHeight is the header and footer lines around the body
const ChromeHeight = 4

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	ctx     context.Context
	ctrl    Controller
	opener  LinkOpener
	changes <-chan struct{}
	logger  *slog.Logger

	// Latest controller snapshot
	snap app.View

	// UI Components
	SearchBox  textinput.Model
	InputModal components.InputModal
	Picker     components.Picker
	Help       help.Model
	Spinner    spinner.Model

	purpose   pickerPurpose
	genres    []domain.Genre
	favorites []domain.Favorite

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool

	// Cursors
	shelf   int            // Focused home shelf
	columns map[string]int // Item cursor per home shelf
	cursor  int            // Cursor in search and genre lists
	link    int            // Cursor in the detail watch links
	homeGen uint64
}

// NewModel creates a new application model. changes must be the channel
// the controller's observer signals on.
func NewModel(ctx context.Context, ctrl Controller, opener LinkOpener, changes <-chan struct{}, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "Search movies and series..."
	ti.CharLimit = 120
	ti.Width = 40
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.SpinnerStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	return Model{
		State:      StateBrowsing,
		ctx:        ctx,
		ctrl:       ctrl,
		opener:     opener,
		changes:    changes,
		logger:     logger,
		snap:       ctrl.Snapshot(),
		SearchBox:  ti,
		InputModal: components.NewInputModal(),
		Picker:     components.NewPicker(),
		Help:       h,
		Spinner:    sp,
		columns:    make(map[string]int),
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForChangeCmd(m.changes),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Help.Width = msg.Width
		m.SearchBox.Width = max(20, msg.Width/3)
		m.Picker.SetHeight(msg.Height - 12)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ViewChangedMsg:
		m.applySnapshot(m.ctrl.Snapshot())
		return m, WaitForChangeCmd(m.changes)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case GenresLoadedMsg:
		m.genres = msg.Genres
		items := make([]components.PickerItem, len(msg.Genres))
		for i, g := range msg.Genres {
			items[i] = components.PickerItem{Label: g.Name}
		}
		m.purpose = pickGenre
		return m, m.Picker.Show("Browse by genre", items, false)

	case DetailResolvedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, domain.ErrSelectionSuperseded) && !errors.Is(msg.Err, context.Canceled) {
			m.logger.Warn("availability lookup failed", "title", msg.Item.Title, "error", msg.Err)
		}
		return m, nil

	case SignedInMsg:
		if errors.Is(msg.Err, domain.ErrEmptyCredential) {
			m.InputModal.SetHint("Enter an email or a name")
			return m, nil
		}
		m.InputModal.Hide()
		if msg.Err != nil {
			m.setError(ErrMsg{Err: msg.Err, Context: "signed in, but the session was not saved"})
			return m, nil
		}
		m.setStatus("Signed in")
		return m, nil

	case StatusMsg:
		m.setStatus(msg.Text)
		return m, nil

	case ErrMsg:
		m.logger.Error("command failed", "context", msg.Context, "error", msg.Err)
		m.setError(msg)
		return m, nil
	}

	// Cursor blink and other widget messages go to whatever has focus
	var cmd tea.Cmd
	switch {
	case m.InputModal.IsVisible():
		m.InputModal, cmd, _ = m.InputModal.Update(msg)
	case m.Picker.IsVisible():
		m.Picker, cmd, _ = m.Picker.Update(msg)
	case m.State == StateSearching:
		m.SearchBox, cmd = m.SearchBox.Update(msg)
	}
	return m, cmd
}

func (m *Model) setStatus(text string) {
	m.StatusMsg = text
	m.StatusIsErr = false
}

func (m *Model) setError(err error) {
	m.StatusMsg = err.Error()
	m.StatusIsErr = true
}

// applySnapshot installs a new controller view and keeps cursors in range
func (m *Model) applySnapshot(v app.View) {
	prev := m.snap
	m.snap = v

	if v.Home.Generation != m.homeGen {
		m.homeGen = v.Home.Generation
		m.shelf = 0
		m.columns = make(map[string]int)
	}
	if v.Context.Mode != prev.Context.Mode || v.Context.Query != prev.Context.Query || v.Context.Genre != prev.Context.Genre {
		m.cursor = 0
	}
	m.cursor = clamp(m.cursor, len(v.Items()))
	m.shelf = clamp(m.shelf, len(v.Home.Sections))

	if v.Detail == nil || (prev.Detail != nil && prev.Detail.Item.Key() != v.Detail.Item.Key()) {
		m.link = 0
	}
	if v.Detail != nil {
		m.link = clamp(m.link, len(v.Detail.Links))
	}

	// The controller leaves search mode on its own (genre browse, blank text)
	if v.Context.Mode != app.ModeSearch && m.State != StateSearching && m.SearchBox.Value() != "" {
		m.SearchBox.SetValue("")
	}
}

// clamp keeps a cursor within a list of n items
func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// selectedItem returns the highlighted title in the current mode
func (m Model) selectedItem() (domain.MediaItem, bool) {
	if m.snap.Context.Mode == app.ModeHome {
		sections := m.snap.Home.Sections
		if m.shelf >= len(sections) {
			return domain.MediaItem{}, false
		}
		sec := sections[m.shelf]
		col := m.columns[sec.ID]
		if col >= len(sec.Items) {
			return domain.MediaItem{}, false
		}
		return sec.Items[col], true
	}

	items := m.snap.Items()
	if m.cursor >= len(items) {
		return domain.MediaItem{}, false
	}
	return items[m.cursor], true
}
