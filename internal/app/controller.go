// Package app routes user events to the catalog components and publishes
// combined view snapshots.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/AnasZiaf26/Zapit/internal/availability"
	"github.com/AnasZiaf26/Zapit/internal/domain"
	"github.com/AnasZiaf26/Zapit/internal/genre"
	"github.com/AnasZiaf26/Zapit/internal/home"
	"github.com/AnasZiaf26/Zapit/internal/locale"
	"github.com/AnasZiaf26/Zapit/internal/search"
	"github.com/AnasZiaf26/Zapit/internal/session"
	"github.com/AnasZiaf26/Zapit/internal/store"
)

// ErrUnsupportedLanguage indicates a language outside the configured set
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Preferences remembers UI choices across runs
type Preferences interface {
	Preference(key string) (string, bool)
	SetPreference(key, value string) error
}

// Deps are the components the controller drives
type Deps struct {
	Home         *home.Orchestrator
	Search       *search.Coordinator
	Genres       *genre.Browser
	Availability *availability.Resolver
	Session      *session.Service
	Prefs        Preferences // Optional
}

// Controller owns the session context. Notifications are signals only;
// the observer should call Snapshot and must not block.
type Controller struct {
	home    *home.Orchestrator
	search  *search.Coordinator
	genres  *genre.Browser
	avail   *availability.Resolver
	session *session.Service
	prefs   Preferences
	policy  locale.Policy
	logger  *slog.Logger

	mu       sync.Mutex
	ctx      Context
	detail   *Detail
	observer func()
}

// NewController wires the components and subscribes to their updates
func NewController(deps Deps, policy locale.Policy, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		home:    deps.Home,
		search:  deps.Search,
		genres:  deps.Genres,
		avail:   deps.Availability,
		session: deps.Session,
		prefs:   deps.Prefs,
		policy:  policy,
		logger:  logger,
		ctx:     Context{Kind: domain.KindMovie},
	}

	c.home.SetObserver(func(home.View) { c.notify() })
	c.search.SetObserver(func(search.State) { c.notify() })
	c.genres.SetObserver(func(genre.State) { c.notify() })
	return c
}

// SetObserver registers the change signal
func (c *Controller) SetObserver(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.observer
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Context returns the current session context
func (c *Controller) Context() Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// Snapshot assembles the current view
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	v := View{Context: c.ctx, Languages: c.policy.Supported}
	if c.detail != nil {
		d := *c.detail
		v.Detail = &d
	}
	c.mu.Unlock()

	v.Home = c.home.Snapshot()
	v.Search = c.search.Snapshot()
	v.Genre = c.genres.Snapshot()
	v.User = c.session.Current()
	if v.Detail != nil {
		v.Detail.Favorite = c.session.IsFavorite(v.Detail.Item)
	}
	return v
}

// Start derives the locale and region from the environment hints, restores
// the session and starts the first home refresh
func (c *Controller) Start(ctx context.Context, langHint, tzHint string) {
	if err := c.session.Restore(); err != nil {
		c.logger.Warn("continuing without a session", "error", err)
	}

	loc := c.policy.Locale(langHint)
	kind := domain.KindMovie
	if c.prefs != nil {
		if lang, ok := c.prefs.Preference(store.PrefLanguage); ok && slices.Contains(c.policy.Supported, lang) {
			loc = c.policy.Locale(lang)
		}
		if k, ok := c.prefs.Preference(store.PrefKind); ok {
			if parsed, ok := domain.ParseMediaKind(k); ok {
				kind = parsed
			}
		}
	}

	c.mu.Lock()
	c.ctx = Context{Locale: loc, Region: c.policy.Region(tzHint), Kind: kind, Mode: ModeHome}
	sc := c.ctx
	c.mu.Unlock()

	c.logger.Info("session started", "language", sc.Locale.Language, "region", sc.Region, "kind", sc.Kind)
	c.search.SetLanguage(sc.Locale.Tag)
	c.home.Refresh(ctx, sc.homeRequest())
}

// SetKind switches between movies and series
func (c *Controller) SetKind(ctx context.Context, kind domain.MediaKind) error {
	c.mu.Lock()
	if c.ctx.Kind == kind {
		c.mu.Unlock()
		return nil
	}
	c.ctx.Kind = kind
	c.mu.Unlock()

	c.remember(store.PrefKind, string(kind))
	return c.rescope(ctx)
}

// SetLanguage switches the content language
func (c *Controller) SetLanguage(ctx context.Context, lang string) error {
	if !slices.Contains(c.policy.Supported, lang) {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	loc := c.policy.Locale(lang)

	c.mu.Lock()
	if c.ctx.Locale == loc {
		c.mu.Unlock()
		return nil
	}
	c.ctx.Locale = loc
	c.mu.Unlock()

	c.remember(store.PrefLanguage, lang)
	c.search.SetLanguage(loc.Tag)
	return c.rescope(ctx)
}

// rescope reloads the active mode after a kind or language change
func (c *Controller) rescope(ctx context.Context) error {
	sc := c.Context()
	switch sc.Mode {
	case ModeSearch:
		c.search.Redispatch()
	case ModeGenre:
		return c.rebrowse(ctx, sc)
	default:
		c.home.Refresh(ctx, sc.homeRequest())
	}
	c.notify()
	return nil
}

// SetQuery forwards a search box change. Non-empty text enters search
// mode; blank text returns to home.
func (c *Controller) SetQuery(ctx context.Context, text string) {
	active := c.search.OnQueryChange(text)

	c.mu.Lock()
	prev := c.ctx.Mode
	if active {
		c.ctx.Mode = ModeSearch
		c.ctx.Query = text
		c.ctx.Genre = domain.Genre{}
	} else {
		c.ctx.Query = ""
		if c.ctx.Mode == ModeSearch {
			c.ctx.Mode = ModeHome
		}
	}
	sc := c.ctx
	c.mu.Unlock()

	switch {
	case active && prev == ModeHome:
		c.home.Stop()
	case active && prev == ModeGenre:
		c.genres.Clear()
	}
	if sc.Mode == ModeHome {
		c.refreshHomeIfStale(ctx, sc)
	}
	c.notify()
}

// SubmitQuery dispatches the typed query without waiting for the debounce
func (c *Controller) SubmitQuery() {
	c.search.Flush()
}

// LoadMore requests the next page of the active list
func (c *Controller) LoadMore() bool {
	switch c.Context().Mode {
	case ModeSearch:
		return c.search.LoadMore()
	case ModeGenre:
		return c.genres.LoadMore()
	default:
		return false
	}
}

// BrowseGenre resolves a typed genre name and enters genre mode
func (c *Controller) BrowseGenre(ctx context.Context, name string) error {
	sc := c.Context()
	g, err := c.genres.Resolve(ctx, name, sc.Kind, sc.Locale)
	if err != nil {
		return err
	}

	c.mu.Lock()
	prev := c.ctx.Mode
	c.ctx.Mode = ModeGenre
	c.ctx.Genre = g
	c.ctx.Query = ""
	sc = c.ctx
	c.mu.Unlock()

	switch prev {
	case ModeHome:
		c.home.Stop()
	case ModeSearch:
		c.search.Clear()
	}
	c.genres.Browse(genre.Request{Genre: g, Kind: sc.Kind, Locale: sc.Locale})
	c.notify()
	return nil
}

// rebrowse keeps genre mode across a scope change. The genre is matched by
// id first since names are localized; an unknown genre returns to home.
func (c *Controller) rebrowse(ctx context.Context, sc Context) error {
	list, err := c.genres.Genres(ctx, sc.Kind, sc.Locale)
	if err != nil {
		return err
	}

	g, ok := domain.Genre{}, false
	for _, candidate := range list {
		if candidate.ID == sc.Genre.ID {
			g, ok = candidate, true
			break
		}
	}
	if !ok {
		g, ok = genre.Match(sc.Genre.Name, list)
	}
	if !ok {
		c.ClearGenre(ctx)
		return fmt.Errorf("%w: %s", domain.ErrUnknownGenre, sc.Genre.Name)
	}

	c.mu.Lock()
	c.ctx.Genre = g
	c.mu.Unlock()

	c.genres.Browse(genre.Request{Genre: g, Kind: sc.Kind, Locale: sc.Locale})
	c.notify()
	return nil
}

// Genres lists the genres for the current kind and language
func (c *Controller) Genres(ctx context.Context) ([]domain.Genre, error) {
	sc := c.Context()
	return c.genres.Genres(ctx, sc.Kind, sc.Locale)
}

// ClearGenre leaves genre mode
func (c *Controller) ClearGenre(ctx context.Context) {
	c.mu.Lock()
	if c.ctx.Mode != ModeGenre {
		c.mu.Unlock()
		return
	}
	c.ctx.Mode = ModeHome
	c.ctx.Genre = domain.Genre{}
	sc := c.ctx
	c.mu.Unlock()

	c.genres.Clear()
	c.refreshHomeIfStale(ctx, sc)
	c.notify()
}

// refreshHomeIfStale refreshes home when it was built for another scope or
// its last refresh was stopped before every shelf settled
func (c *Controller) refreshHomeIfStale(ctx context.Context, sc Context) {
	hv := c.home.Snapshot()
	if hv.Generation == 0 || hv.Request != sc.homeRequest() || c.home.Interrupted() {
		c.home.Refresh(ctx, sc.homeRequest())
	}
}

// SelectTitle opens the detail overlay and resolves availability. It
// blocks until the lookup finishes or a newer selection supersedes it.
func (c *Controller) SelectTitle(ctx context.Context, item domain.MediaItem) error {
	c.mu.Lock()
	c.detail = &Detail{Item: item, Loading: true}
	region := c.ctx.Region
	c.mu.Unlock()
	c.notify()

	rec, err := c.avail.Select(ctx, item, region)
	if errors.Is(err, domain.ErrSelectionSuperseded) {
		return err
	}

	c.mu.Lock()
	if c.detail == nil || c.detail.Item.Key() != item.Key() {
		c.mu.Unlock()
		return domain.ErrSelectionSuperseded
	}
	d := &Detail{Item: item, Record: rec}
	if err != nil {
		d.Err = domain.FetchErrorKindOf(err)
	} else {
		d.Links = availability.Links(rec, item.Title)
	}
	c.detail = d
	c.mu.Unlock()

	c.notify()
	return err
}

// CloseTitle dismisses the detail overlay
func (c *Controller) CloseTitle() {
	c.avail.Cancel()
	c.mu.Lock()
	c.detail = nil
	c.mu.Unlock()
	c.notify()
}

// ToggleFavorite adds or removes a title from the favorites
func (c *Controller) ToggleFavorite(item domain.MediaItem) (bool, error) {
	added, err := c.session.ToggleFavorite(item)
	c.notify()
	return added, err
}

// Favorites returns the favorites matching query
func (c *Controller) Favorites(query string) []domain.Favorite {
	return c.session.FilterFavorites(query)
}

// SignIn starts a client-local session
func (c *Controller) SignIn(credential string) error {
	_, err := c.session.SignIn(credential)
	c.notify()
	return err
}

// SignOut ends the session
func (c *Controller) SignOut() error {
	err := c.session.SignOut()
	c.notify()
	return err
}

// Close stops every in-flight operation
func (c *Controller) Close() {
	c.avail.Cancel()
	c.home.Stop()
	c.search.Close()
	c.genres.Close()
}

func (c *Controller) remember(key, value string) {
	if c.prefs == nil {
		return
	}
	if err := c.prefs.SetPreference(key, value); err != nil {
		c.logger.Warn("failed to save preference", "key", key, "error", err)
	}
}
