package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/AnasZiaf26/Zapit/internal/config"
	"github.com/AnasZiaf26/Zapit/internal/domain"
	zlog "github.com/AnasZiaf26/Zapit/internal/log"
)

// fakeClock fires timers only when advanced
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

type searchCall struct {
	query    string
	language string
	page     int
}

type fakeSearch struct {
	mu      sync.Mutex
	calls   []searchCall
	respond func(ctx context.Context, c searchCall) (domain.Page, error)
}

func (f *fakeSearch) SearchMulti(ctx context.Context, query, language string, page int) (domain.Page, error) {
	c := searchCall{query: query, language: language, page: page}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	return f.respond(ctx, c)
}

func (f *fakeSearch) snapshot() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchCall(nil), f.calls...)
}

func item(id int, poster string) domain.MediaItem {
	return domain.MediaItem{ID: id, Kind: domain.KindMovie, Title: "t", PosterPath: poster}
}

func ids(items []domain.MediaItem) []int {
	var out []int
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func newCoordinator(repo *fakeSearch) (*Coordinator, *fakeClock) {
	clock := &fakeClock{}
	c := NewCoordinator(repo, config.SearchConfig{Debounce: 600 * time.Millisecond}, clock, zlog.NullLogger())
	c.SetLanguage("fr-FR")
	return c, clock
}

func TestBurstIssuesOneRequest(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := &fakeSearch{respond: func(ctx context.Context, c searchCall) (domain.Page, error) {
		return domain.Page{Items: []domain.MediaItem{item(268, "/b.jpg")}, Page: 1, TotalPages: 1}, nil
	}}
	c, clock := newCoordinator(repo)
	defer c.Close()

	for _, text := range []string{"b", "ba", "bat", "batm", "batma", "batman"} {
		assert.True(t, c.OnQueryChange(text))
		clock.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, repo.snapshot())

	clock.Advance(600 * time.Millisecond)
	c.Wait()

	calls := repo.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, searchCall{query: "batman", language: "fr-FR", page: 1}, calls[0])

	state := c.Snapshot()
	assert.Equal(t, "batman", state.Query)
	assert.Equal(t, []int{268}, ids(state.Items))
	assert.False(t, state.Loading)
}

func TestSameQueryKeepsInFlightFetch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	started := make(chan context.Context, 1)
	repo := &fakeSearch{respond: func(ctx context.Context, c searchCall) (domain.Page, error) {
		started <- ctx
		<-release
		return domain.Page{Items: []domain.MediaItem{item(438631, "/d.jpg")}, Page: 1, TotalPages: 1}, nil
	}}
	c, clock := newCoordinator(repo)
	defer c.Close()

	c.OnQueryChange("dune")
	clock.Advance(600 * time.Millisecond)
	first := <-started
	gen := c.Snapshot().Generation

	assert.True(t, c.OnQueryChange("dune "))
	assert.True(t, c.OnQueryChange("  dune"))
	clock.Advance(time.Second)

	c.mu.Lock()
	assert.NoError(t, c.ctx.Err())
	c.mu.Unlock()
	assert.NoError(t, first.Err())

	close(release)
	c.Wait()

	assert.Len(t, repo.snapshot(), 1)
	state := c.Snapshot()
	assert.Equal(t, gen, state.Generation)
	assert.Equal(t, []int{438631}, ids(state.Items))
}

func TestSameQueryAfterResultsIsNoop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := &fakeSearch{respond: func(ctx context.Context, c searchCall) (domain.Page, error) {
		return domain.Page{Items: []domain.MediaItem{item(438631, "/d.jpg")}, Page: 1, TotalPages: 3}, nil
	}}
	c, clock := newCoordinator(repo)
	defer c.Close()

	c.OnQueryChange("dune")
	clock.Advance(600 * time.Millisecond)
	c.Wait()
	before := c.Snapshot()

	c.OnQueryChange("dune ")
	clock.Advance(time.Second)
	c.Wait()

	assert.Len(t, repo.snapshot(), 1)
	assert.Equal(t, before, c.Snapshot())

	c.OnQueryChange("dunes")
	clock.Advance(600 * time.Millisecond)
	c.Wait()
	assert.Len(t, repo.snapshot(), 2)
}

func TestClearInsideWindowNeverRequests(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := &fakeSearch{respond: func(ctx context.Context, c searchCall) (domain.Page, error) {
		return domain.Page{}, nil
	}}
	c, clock := newCoordinator(repo)
	defer c.Close()

	c.OnQueryChange("batman")
	clock.Advance(300 * time.Millisecond)
	assert.False(t, c.OnQueryChange("   "))
	clock.Advance(time.Second)
	c.Wait()

	assert.Empty(t, repo.snapshot())
	assert.False(t, c.Snapshot().Active())
}

func TestStaleGenerationDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	repo := &fakeSearch{respond: func(ctx context.Context, c searchCall) (domain.Page, error) {
		if c.query == "dune" {
			// Ignores cancellation to model a response already on the wire
			<-release
			return domain.Page{Items: []domain.MediaItem{item(1, "/old.jpg")}, Page: 1, TotalPages: 1}, nil
		}
		return domain.Page{Items: []domain.MediaItem{item(2, "/new.jpg")}, Page: 1, TotalPages: 1}, nil
	}}
	c, clock := newCoordinator(repo)
	defer c.Close()

	c.OnQueryChange("dune")
	clock.Advance(600 * time.Millisecond)
	g1 := c.Snapshot().Generation

	c.OnQueryChange("dune part two")
	clock.Advance(600 * time.Millisecond)
	require.Eventually(t, func() bool { return !c.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	g2 := c.Snapshot().Generation
	assert.Greater(t, g2, g1)

	close(release)
	c.Wait()

	state := c.Snapshot()
	assert.Equal(t, "dune part two", state.Query)
	assert.Equal(t, []int{2}, ids(state.Items))
	assert.Equal(t, g2, state.Generation)
}

func TestNewQueryCancelsPrevious(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	canceled := make(chan struct{})
	repo := &fakeSearch{respond: func(ctx context.Context, c searchCall) (domain.Page, error) {
		if c.query == "alien" {
			<-ctx.Done()
			close(canceled)
			return domain.Page{}, &domain.FetchError{Kind: domain.FetchNetwork, Err: ctx.Err()}
		}
		return domain.Page{}, nil
	}}
	c, clock := newCoordinator(repo)
	defer c.Close()

	c.OnQueryChange("alien")
	clock.Advance(600 * time.Millisecond)
	c.OnQueryChange("aliens")
	clock.Advance(600 * time.Millisecond)

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("superseded request was not canceled")
	}
	c.Wait()
	assert.Equal(t, "aliens", c.Snapshot().Query)
	assert.Empty(t, c.Snapshot().Err)
}

func TestClearCancelsInFlight(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := &fakeSearch{respond: func(ctx context.Context, c searchCall) (domain.Page, error) {
		<-ctx.Done()
		return domain.Page{}, ctx.Err()
	}}
	c, clock := newCoordinator(repo)
	defer c.Close()

	var mu sync.Mutex
	var states []State
	c.SetObserver(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	c.OnQueryChange("matrix")
	clock.Advance(600 * time.Millisecond)
	assert.True(t, c.Snapshot().Loading)

	c.Clear()
	c.Wait()

	state := c.Snapshot()
	assert.False(t, state.Active())
	assert.Empty(t, state.Items)
	assert.False(t, state.Loading)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Active())
}

func TestLoadMoreAppendsDeduplicated(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gate := make(chan struct{}, 1)
	repo := &fakeSearch{respond: func(ctx context.Context, c searchCall) (domain.Page, error) {
		switch c.page {
		case 1:
			return domain.Page{Items: []domain.MediaItem{item(1, "/1.jpg"), item(2, ""), item(3, "/3.jpg")}, Page: 1, TotalPages: 2}, nil
		default:
			<-gate
			return domain.Page{Items: []domain.MediaItem{item(3, "/3.jpg"), item(4, "/4.jpg")}, Page: 2, TotalPages: 2}, nil
		}
	}}
	c, clock := newCoordinator(repo)
	defer c.Close()

	assert.False(t, c.LoadMore())

	c.OnQueryChange("star")
	clock.Advance(600 * time.Millisecond)
	c.Wait()
	assert.Equal(t, []int{1, 3}, ids(c.Snapshot().Items))
	assert.True(t, c.Snapshot().HasMore())

	require.True(t, c.LoadMore())
	assert.False(t, c.LoadMore(), "ignored while a page is loading")
	gate <- struct{}{}
	c.Wait()

	state := c.Snapshot()
	assert.Equal(t, []int{1, 3, 4}, ids(state.Items))
	assert.Equal(t, 2, state.Page)
	assert.False(t, c.LoadMore(), "ignored after the last page")

	calls := repo.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, 2, calls[1].page)
	assert.Equal(t, "star", calls[1].query)
}

func TestFailureLeavesErrorState(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := &fakeSearch{respond: func(ctx context.Context, c searchCall) (domain.Page, error) {
		return domain.Page{}, &domain.FetchError{Kind: domain.FetchUpstreamRejected, Status: 429}
	}}
	c, clock := newCoordinator(repo)
	defer c.Close()

	c.OnQueryChange("heat")
	clock.Advance(600 * time.Millisecond)
	c.Wait()

	state := c.Snapshot()
	assert.True(t, state.Active())
	assert.Empty(t, state.Items)
	assert.Equal(t, domain.FetchUpstreamRejected, state.Err)
	assert.Len(t, repo.snapshot(), 1)
}

func TestFlushAndRedispatch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := &fakeSearch{respond: func(ctx context.Context, c searchCall) (domain.Page, error) {
		return domain.Page{Page: 1, TotalPages: 1}, nil
	}}
	c, _ := newCoordinator(repo)
	defer c.Close()

	c.OnQueryChange("amelie")
	c.Flush()
	c.Wait()
	require.Len(t, repo.snapshot(), 1)

	c.SetLanguage("ar-SA")
	c.Redispatch()
	c.Wait()

	calls := repo.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, searchCall{query: "amelie", language: "ar-SA", page: 1}, calls[1])
}
