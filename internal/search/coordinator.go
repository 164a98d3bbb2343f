// Package search runs free-text catalog search: debounced dispatch,
// per-query generations, and paginated accumulation.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AnasZiaf26/Zapit/internal/config"
	"github.com/AnasZiaf26/Zapit/internal/domain"
)

const defaultDebounce = 600 * time.Millisecond

// State is an immutable snapshot of the search session
type State struct {
	Query      string
	Items      []domain.MediaItem
	Page       int
	TotalPages int
	Loading    bool
	Err        domain.FetchErrorKind // Set when the last fetch failed
	Generation uint64
}

// Active reports whether a query is in effect (search mode)
func (s State) Active() bool {
	return s.Query != ""
}

// HasMore reports whether another page can be requested
func (s State) HasMore() bool {
	return s.Page < s.TotalPages
}

// Observer receives every published state. It is called with the
// coordinator lock held and must not call back into the Coordinator.
type Observer func(State)

// Coordinator owns one search session
type Coordinator struct {
	repo     domain.SearchRepository
	debounce time.Duration
	clock    Clock
	logger   *slog.Logger

	mu       sync.Mutex
	language string
	typed    string // Latest non-empty text, dispatched when the timer fires
	seq      uint64 // Keystroke counter; a timer only dispatches its own keystroke
	timer    Timer
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	state    State
	observer Observer
	inflight sync.WaitGroup
}

// NewCoordinator creates a search coordinator. clock may be nil.
func NewCoordinator(repo domain.SearchRepository, cfg config.SearchConfig, clock Clock, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = RealClock{}
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Coordinator{
		repo:     repo,
		debounce: debounce,
		clock:    clock,
		logger:   logger,
	}
}

// SetObserver registers the state callback
func (c *Coordinator) SetObserver(fn Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// SetLanguage sets the upstream language tag used by later dispatches
func (c *Coordinator) SetLanguage(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = tag
}

// Snapshot returns the current state
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnQueryChange handles one keystroke. It reports whether search mode is
// active afterwards; blank text clears the session and returns false.
func (c *Coordinator) OnQueryChange(text string) bool {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.stopTimerLocked()

	if text == "" {
		c.typed = ""
		c.resetLocked()
		return false
	}

	// Whitespace edits of the dispatched query keep its results and fetch.
	if text == c.state.Query && c.state.Err == "" {
		c.typed = text
		return true
	}

	c.typed = text
	seq := c.seq
	c.timer = c.clock.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.seq {
			return
		}
		c.timer = nil
		c.dispatchLocked(text)
	})
	return true
}

// Flush dispatches a pending query without waiting for the debounce window
func (c *Coordinator) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer == nil || c.typed == "" {
		return
	}
	c.seq++
	c.stopTimerLocked()
	c.dispatchLocked(c.typed)
}

// Redispatch re-issues the current query, e.g. after a language change
func (c *Coordinator) Redispatch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Query == "" {
		return
	}
	c.dispatchLocked(c.state.Query)
}

// LoadMore requests the next page of the current query. It is ignored
// while a page is loading or after the last page.
func (c *Coordinator) LoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Query == "" || s.Loading || !s.HasMore() || c.ctx == nil {
		return false
	}

	c.state.Loading = true
	c.state.Err = ""
	c.publishLocked()
	c.startLocked(c.ctx, c.gen, s.Query, s.Page+1)
	return true
}

// Clear ends search mode
func (c *Coordinator) Clear() {
	c.OnQueryChange("")
}

// Wait blocks until no fetch is in flight
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

// Close cancels everything and waits for in-flight fetches
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.seq++
	c.stopTimerLocked()
	c.gen++
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	c.inflight.Wait()
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// resetLocked cancels any in-flight request and empties the session
func (c *Coordinator) resetLocked() {
	if c.cancel != nil {
		c.cancel()
		c.ctx, c.cancel = nil, nil
	}
	c.gen++
	if c.state.Query == "" && !c.state.Loading {
		c.state.Generation = c.gen
		return
	}
	c.state = State{Generation: c.gen}
	c.publishLocked()
}

// dispatchLocked starts a new generation for the query
func (c *Coordinator) dispatchLocked(query string) {
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.state = State{Query: query, Loading: true, Generation: c.gen}
	c.publishLocked()

	c.logger.Debug("dispatching search", "generation", c.gen, "query", query)
	c.startLocked(c.ctx, c.gen, query, 1)
}

func (c *Coordinator) startLocked(ctx context.Context, gen uint64, query string, page int) {
	language := c.language
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		result, err := c.repo.SearchMulti(ctx, query, language, page)
		c.apply(gen, page, result, err)
	}()
}

// apply merges a response if its generation is still current
func (c *Coordinator) apply(gen uint64, page int, result domain.Page, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Debug("discarding stale search response", "generation", gen, "current", c.gen)
		return
	}

	c.state.Loading = false
	if err != nil {
		c.logger.Warn("search failed", "generation", gen, "page", page, "error", err)
		c.state.Err = domain.FetchErrorKindOf(err)
		c.publishLocked()
		return
	}

	merged := make([]domain.MediaItem, 0, len(c.state.Items)+len(result.Items))
	merged = append(merged, c.state.Items...)
	seen := make(map[string]bool, cap(merged))
	for _, it := range merged {
		seen[it.Key()] = true
	}
	for _, it := range result.Items {
		if !it.HasArtwork() || seen[it.Key()] {
			continue
		}
		seen[it.Key()] = true
		merged = append(merged, it)
	}

	c.state.Items = merged
	c.state.Page = max(result.Page, page)
	c.state.TotalPages = result.TotalPages
	c.state.Err = ""
	c.publishLocked()
}

func (c *Coordinator) publishLocked() {
	if c.observer != nil {
		c.observer(c.state)
	}
}
