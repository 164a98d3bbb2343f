// Package genre lists catalog genres and browses the catalog by genre.
package genre

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/AnasZiaf26/Zapit/internal/domain"
)

const sortByPopularity = "popularity.desc"

// Request scopes a genre browse
type Request struct {
	Genre  domain.Genre
	Kind   domain.MediaKind
	Locale domain.Locale
}

// State is an immutable snapshot of the genre browse session
type State struct {
	Genre      domain.Genre
	Kind       domain.MediaKind
	Items      []domain.MediaItem
	Page       int
	TotalPages int
	Loading    bool
	Err        domain.FetchErrorKind
	Generation uint64
}

// Active reports whether a genre is being browsed
func (s State) Active() bool {
	return s.Genre.ID != 0
}

// HasMore reports whether another page can be requested
func (s State) HasMore() bool {
	return s.Page < s.TotalPages
}

// Observer receives every published state, with the browser lock held
type Observer func(State)

// Match resolves a typed genre name. Exact (case-insensitive) names win;
// otherwise the closest fuzzy match, ignoring case and diacritics.
func Match(name string, genres []domain.Genre) (domain.Genre, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Genre{}, false
	}

	names := make([]string, len(genres))
	for i, g := range genres {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
		names[i] = g.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) == 0 {
		return domain.Genre{}, false
	}
	sort.Stable(ranks)
	return genres[ranks[0].OriginalIndex], true
}

type listKey struct {
	kind domain.MediaKind
	tag  string
}

// Browser owns the genre list cache and one browse session
type Browser struct {
	genres  domain.GenreRepository
	catalog domain.CatalogRepository
	logger  *slog.Logger

	listMu sync.Mutex
	lists  map[listKey][]domain.Genre

	mu       sync.Mutex
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	req      Request
	state    State
	observer Observer
	inflight sync.WaitGroup
}

// NewBrowser creates a genre browser
func NewBrowser(genres domain.GenreRepository, catalog domain.CatalogRepository, logger *slog.Logger) *Browser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Browser{
		genres:  genres,
		catalog: catalog,
		logger:  logger,
		lists:   make(map[listKey][]domain.Genre),
	}
}

// SetObserver registers the state callback
func (b *Browser) SetObserver(fn Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observer = fn
}

// Genres returns the genre list for a kind and locale. Lists are kept for
// the lifetime of the browser; failures are not.
func (b *Browser) Genres(ctx context.Context, kind domain.MediaKind, locale domain.Locale) ([]domain.Genre, error) {
	key := listKey{kind: kind, tag: locale.Tag}

	b.listMu.Lock()
	list, ok := b.lists[key]
	b.listMu.Unlock()
	if ok {
		return list, nil
	}

	list, err := b.genres.Genres(ctx, kind, locale.Tag)
	if err != nil {
		return nil, err
	}

	b.listMu.Lock()
	b.lists[key] = list
	b.listMu.Unlock()
	return list, nil
}

// Resolve finds a genre by typed name for the kind and locale
func (b *Browser) Resolve(ctx context.Context, name string, kind domain.MediaKind, locale domain.Locale) (domain.Genre, error) {
	list, err := b.Genres(ctx, kind, locale)
	if err != nil {
		return domain.Genre{}, err
	}
	g, ok := Match(name, list)
	if !ok {
		return domain.Genre{}, domain.ErrUnknownGenre
	}
	return g, nil
}

// Snapshot returns the current state
func (b *Browser) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Browse starts a new browse session at page one
func (b *Browser) Browse(req Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}
	b.gen++
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.req = req
	b.state = State{Genre: req.Genre, Kind: req.Kind, Loading: true, Generation: b.gen}
	b.publishLocked()

	b.logger.Debug("browsing genre", "genre", req.Genre.Name, "generation", b.gen)
	b.startLocked(1)
}

// LoadMore requests the next page; ignored while loading or after the last page
func (b *Browser) LoadMore() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.state
	if !s.Active() || s.Loading || !s.HasMore() || b.ctx == nil {
		return false
	}
	b.state.Loading = true
	b.state.Err = ""
	b.publishLocked()
	b.startLocked(s.Page + 1)
	return true
}

// Clear ends genre mode and cancels any in-flight page
func (b *Browser) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
		b.ctx, b.cancel = nil, nil
	}
	b.gen++
	b.req = Request{}
	b.state = State{Generation: b.gen}
	b.publishLocked()
}

// Wait blocks until no page is in flight
func (b *Browser) Wait() {
	b.inflight.Wait()
}

// Close cancels any in-flight page and waits for it
func (b *Browser) Close() {
	b.mu.Lock()
	b.gen++
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()
	b.inflight.Wait()
}

func (b *Browser) startLocked(page int) {
	ctx, gen, req := b.ctx, b.gen, b.req
	filter := domain.DiscoverFilter{SortBy: sortByPopularity, GenreID: req.Genre.ID, Page: page}

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		result, err := b.catalog.Discover(ctx, req.Kind, filter, req.Locale.Tag)
		b.apply(gen, page, result, err)
	}()
}

func (b *Browser) apply(gen uint64, page int, result domain.Page, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen {
		return
	}

	b.state.Loading = false
	if err != nil {
		b.logger.Warn("genre page failed", "genre", b.state.Genre.Name, "page", page, "error", err)
		b.state.Err = domain.FetchErrorKindOf(err)
		b.publishLocked()
		return
	}

	items := append([]domain.MediaItem(nil), b.state.Items...)
	seen := make(map[string]bool, len(items)+len(result.Items))
	for _, it := range items {
		seen[it.Key()] = true
	}
	for _, it := range result.Items {
		if seen[it.Key()] {
			continue
		}
		seen[it.Key()] = true
		items = append(items, it)
	}

	b.state.Items = items
	b.state.Page = max(result.Page, page)
	b.state.TotalPages = result.TotalPages
	b.state.Err = ""
	b.publishLocked()
}

func (b *Browser) publishLocked() {
	if b.observer != nil {
		b.observer(b.state)
	}
}
