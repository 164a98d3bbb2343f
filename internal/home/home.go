// Package home assembles the home view from independent catalog shelves.
package home

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/AnasZiaf26/Zapit/internal/config"
	"github.com/AnasZiaf26/Zapit/internal/domain"
)

const defaultDisplayCap = 20

// Shelf sources
const (
	SourceTrending   = "trending"
	SourceDiscover   = "discover"
	SourceNowPlaying = "now_playing"
)

// Request scopes a refresh
type Request struct {
	Kind   domain.MediaKind
	Locale domain.Locale
	Region domain.Region
}

// View is an immutable snapshot of the home shelves
type View struct {
	Request    Request
	Sections   []domain.ViewSection
	Generation uint64
}

// Loading reports whether any shelf is still in flight
func (v View) Loading() bool {
	for _, s := range v.Sections {
		if s.Status == domain.StatusLoading {
			return true
		}
	}
	return false
}

// Section returns the shelf with the given id
func (v View) Section(id string) (domain.ViewSection, bool) {
	for _, s := range v.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return domain.ViewSection{}, false
}

// Observer receives every published snapshot. It is called with the
// orchestrator lock held and must not call back into the Orchestrator.
type Observer func(View)

// Orchestrator fans out one query per shelf and publishes each shelf as soon
// as it settles
type Orchestrator struct {
	catalog    domain.CatalogRepository
	shelves    []config.ShelfConfig
	displayCap int
	logger     *slog.Logger

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	view     View
	observer Observer
}

// NewOrchestrator creates a home orchestrator for the configured shelves
func NewOrchestrator(catalog domain.CatalogRepository, cfg config.HomeConfig, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	shelves := cfg.Shelves
	if len(shelves) == 0 {
		shelves = config.DefaultShelves()
	}
	displayCap := cfg.DisplayCap
	if displayCap <= 0 {
		displayCap = defaultDisplayCap
	}
	done := make(chan struct{})
	close(done)
	return &Orchestrator{
		catalog:    catalog,
		shelves:    shelves,
		displayCap: displayCap,
		logger:     logger,
		done:       done,
	}
}

// SetObserver registers the snapshot callback
func (o *Orchestrator) SetObserver(fn Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observer = fn
}

// Snapshot returns the current view
func (o *Orchestrator) Snapshot() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// Refresh cancels any in-flight refresh and starts a new one. The returned
// view has every shelf loading; it is also published to the observer.
func (o *Orchestrator) Refresh(ctx context.Context, req Request) View {
	shelves := o.shelvesFor(req.Kind)

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.gen++
	gen := o.gen
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	done := make(chan struct{})
	o.done = done

	sections := make([]domain.ViewSection, len(shelves))
	for i, s := range shelves {
		sections[i] = domain.Loading(s.ID, s.Title)
	}
	o.view = View{Request: req, Sections: sections, Generation: gen}
	o.publishLocked()
	initial := o.view
	o.mu.Unlock()

	o.logger.Info("refreshing home", "generation", gen, "kind", req.Kind,
		"language", req.Locale.Language, "region", req.Region, "shelves", len(shelves))

	p := pool.New().WithMaxGoroutines(max(len(shelves), 1))
	for i, shelf := range shelves {
		i, shelf := i, shelf
		p.Go(func() {
			items, err := o.fetch(ctx, shelf, req)
			o.apply(ctx, gen, i, shelf, items, err)
		})
	}
	go func() {
		p.Wait()
		cancel()
		close(done)
	}()

	return initial
}

// Wait blocks until the current refresh has settled or ctx is done
func (o *Orchestrator) Wait(ctx context.Context) error {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels the in-flight refresh, if any
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.gen++
}

// Interrupted reports whether the published view still has loading shelves
// that no running refresh will settle
func (o *Orchestrator) Interrupted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.view.Loading() {
		return false
	}
	if o.view.Generation != o.gen {
		return true
	}
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// shelvesFor drops shelves that have no meaning for the kind
func (o *Orchestrator) shelvesFor(kind domain.MediaKind) []config.ShelfConfig {
	out := make([]config.ShelfConfig, 0, len(o.shelves))
	for _, s := range o.shelves {
		if s.Source == SourceNowPlaying && kind == domain.KindSeries {
			continue
		}
		out = append(out, s)
	}
	return out
}

// fetch runs the catalog query for one shelf
func (o *Orchestrator) fetch(ctx context.Context, shelf config.ShelfConfig, req Request) ([]domain.MediaItem, error) {
	var (
		page domain.Page
		err  error
	)

	switch shelf.Source {
	case SourceTrending:
		window := domain.Window(shelf.Window)
		if window == "" {
			window = domain.WindowDay
		}
		page, err = o.catalog.Trending(ctx, req.Kind, window, req.Locale.Tag)
	case SourceNowPlaying:
		page, err = o.catalog.NowPlaying(ctx, req.Locale.Tag, req.Region)
	default:
		filter := domain.DiscoverFilter{
			SortBy:       shelf.SortBy,
			Monetization: domain.Monetization(shelf.Monetization),
			ProviderID:   shelf.ProviderID,
		}
		if shelf.Regional {
			filter.WatchRegion = req.Region
		}
		page, err = o.catalog.Discover(ctx, req.Kind, filter, req.Locale.Tag)
	}
	if err != nil {
		return nil, err
	}

	limit := shelf.Limit
	if limit <= 0 {
		limit = o.displayCap
	}
	return capUnique(page.Items, limit), nil
}

// apply settles one shelf if its refresh is still current
func (o *Orchestrator) apply(ctx context.Context, gen uint64, idx int, shelf config.ShelfConfig, items []domain.MediaItem, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.gen || ctx.Err() != nil {
		o.logger.Debug("dropping superseded shelf", "shelf", shelf.ID, "generation", gen)
		return
	}

	sections := append([]domain.ViewSection(nil), o.view.Sections...)
	if err != nil {
		o.logger.Warn("shelf failed", "shelf", shelf.ID, "generation", gen, "error", err)
		sections[idx] = sections[idx].Fail(domain.FetchErrorKindOf(err))
	} else {
		sections[idx] = sections[idx].Resolve(items)
	}
	o.view.Sections = sections
	o.publishLocked()
}

func (o *Orchestrator) publishLocked() {
	if o.observer != nil {
		o.observer(o.view)
	}
}

// capUnique keeps the first occurrence of each item, up to limit, in upstream order
func capUnique(items []domain.MediaItem, limit int) []domain.MediaItem {
	out := make([]domain.MediaItem, 0, min(len(items), limit))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if len(out) == limit {
			break
		}
		if seen[it.Key()] {
			continue
		}
		seen[it.Key()] = true
		out = append(out, it)
	}
	return out
}
