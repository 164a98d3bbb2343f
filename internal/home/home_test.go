package home

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

type call struct {
	source string
	kind   domain.MediaKind
	filter domain.DiscoverFilter
	lang   string
	region domain.Region
}

// fakeCatalog answers every query through respond
type fakeCatalog struct {
	mu      sync.Mutex
	calls   []call
	respond func(ctx context.Context, c call) (domain.Page, error)
}

func (f *fakeCatalog) record(ctx context.Context, c call) (domain.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	return f.respond(ctx, c)
}

func (f *fakeCatalog) Trending(ctx context.Context, kind domain.MediaKind, window domain.Window, lang string) (domain.Page, error) {
	return f.record(ctx, call{source: SourceTrending + "/" + string(window), kind: kind, lang: lang})
}

func (f *fakeCatalog) Discover(ctx context.Context, kind domain.MediaKind, filter domain.DiscoverFilter, lang string) (domain.Page, error) {
	return f.record(ctx, call{source: SourceDiscover, kind: kind, filter: filter, lang: lang})
}

func (f *fakeCatalog) NowPlaying(ctx context.Context, lang string, region domain.Region) (domain.Page, error) {
	return f.record(ctx, call{source: SourceNowPlaying, kind: domain.KindMovie, lang: lang, region: region})
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func items(kind domain.MediaKind, ids ...int) []domain.MediaItem {
	out := make([]domain.MediaItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.MediaItem{ID: id, Kind: kind, Title: "t", PosterPath: "/p.jpg"})
	}
	return out
}

func waitSettled(t *testing.T, o *Orchestrator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, o.Wait(ctx))
}

var movieEN = Request{
	Kind:   domain.KindMovie,
	Locale: domain.Locale{Language: "en", Tag: "en-US"},
	Region: "QA",
}

func TestRefresh_ConcurrentShelvesWithOneFailure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	shelves := config.DefaultShelves()
	var arrived sync.WaitGroup
	arrived.Add(len(shelves))

	catalog := &fakeCatalog{respond: func(ctx context.Context, c call) (domain.Page, error) {
		// Every shelf query must be in flight at once
		arrived.Done()
		arrived.Wait()
		if c.filter.ProviderID == 8 {
			return domain.Page{}, &domain.FetchError{Kind: domain.FetchUpstreamRejected, Status: 500}
		}
		return domain.Page{Items: items(c.kind, 1, 2, 3), Page: 1, TotalPages: 1}, nil
	}}

	o := NewOrchestrator(catalog, config.HomeConfig{Shelves: shelves}, zlog.NullLogger())

	var mu sync.Mutex
	var published []View
	o.SetObserver(func(v View) {
		mu.Lock()
		published = append(published, v)
		mu.Unlock()
	})

	initial := o.Refresh(context.Background(), movieEN)
	require.Len(t, initial.Sections, len(shelves))
	for _, s := range initial.Sections {
		assert.Equal(t, domain.StatusLoading, s.Status)
	}

	waitSettled(t, o)
	assert.Equal(t, len(shelves), catalog.callCount())

	view := o.Snapshot()
	assert.False(t, view.Loading())
	for _, s := range view.Sections {
		if s.ID == "netflix" {
			assert.Equal(t, domain.StatusError, s.Status)
			assert.Equal(t, domain.FetchUpstreamRejected, s.Err)
			assert.Empty(t, s.Items)
			continue
		}
		assert.Equal(t, domain.StatusReady, s.Status, s.ID)
		assert.Len(t, s.Items, 3, s.ID)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, published, len(shelves)+1)
	assert.True(t, published[0].Loading())
}

func TestRefresh_QueryScope(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	catalog := &fakeCatalog{respond: func(ctx context.Context, c call) (domain.Page, error) {
		return domain.Page{}, nil
	}}
	o := NewOrchestrator(catalog, config.HomeConfig{}, zlog.NullLogger())
	o.Refresh(context.Background(), movieEN)
	waitSettled(t, o)

	byShelf := map[string]call{}
	for _, c := range catalog.calls {
		switch {
		case c.source == SourceDiscover && c.filter.ProviderID == 0:
			byShelf["local"] = c
		case c.source == SourceDiscover && c.filter.ProviderID == 337:
			byShelf["disney"] = c
		default:
			byShelf[c.source] = c
		}
	}

	local := byShelf["local"]
	assert.Equal(t, domain.Region("QA"), local.filter.WatchRegion)
	assert.Equal(t, domain.MonetizationFlatrate, local.filter.Monetization)
	assert.Equal(t, "popularity.desc", local.filter.SortBy)
	assert.Equal(t, "en-US", local.lang)

	assert.Equal(t, domain.Region("QA"), byShelf["disney"].filter.WatchRegion)
	assert.Contains(t, byShelf, SourceTrending+"/week")
	assert.Equal(t, domain.Region("QA"), byShelf[SourceNowPlaying].region)
}

func TestRefresh_SeriesSkipsNowPlaying(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	catalog := &fakeCatalog{respond: func(ctx context.Context, c call) (domain.Page, error) {
		return domain.Page{Items: items(c.kind, 1)}, nil
	}}
	o := NewOrchestrator(catalog, config.HomeConfig{}, zlog.NullLogger())

	req := movieEN
	req.Kind = domain.KindSeries
	view := o.Refresh(context.Background(), req)
	waitSettled(t, o)

	_, ok := view.Section("now_playing")
	assert.False(t, ok)
	assert.Len(t, view.Sections, len(config.DefaultShelves())-1)
	for _, c := range catalog.calls {
		assert.NotEqual(t, SourceNowPlaying, c.source)
		assert.Equal(t, domain.KindSeries, c.kind)
	}
}

func TestRefresh_CapAndDedupe(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	catalog := &fakeCatalog{respond: func(ctx context.Context, c call) (domain.Page, error) {
		return domain.Page{Items: items(c.kind, 5, 4, 5, 3, 2, 1, 0)}, nil
	}}
	cfg := config.HomeConfig{
		DisplayCap: 4,
		Shelves: []config.ShelfConfig{
			{ID: "global", Title: "Trending", Source: SourceTrending},
			{ID: "short", Title: "Short", Source: SourceTrending, Limit: 2},
		},
	}
	o := NewOrchestrator(catalog, cfg, zlog.NullLogger())
	o.Refresh(context.Background(), movieEN)
	waitSettled(t, o)

	view := o.Snapshot()
	global, _ := view.Section("global")
	var ids []int
	for _, it := range global.Items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int{5, 4, 3, 2}, ids)

	short, _ := view.Section("short")
	assert.Len(t, short.Items, 2)
}

func TestRefresh_SupersededRefreshNeverPublishes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	catalog := &fakeCatalog{respond: func(ctx context.Context, c call) (domain.Page, error) {
		if c.lang == "ar-SA" {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return domain.Page{Items: items(c.kind, 99)}, nil
		}
		return domain.Page{Items: items(c.kind, 1)}, nil
	}}
	cfg := config.HomeConfig{Shelves: []config.ShelfConfig{{ID: "global", Title: "Trending", Source: SourceTrending}}}
	o := NewOrchestrator(catalog, cfg, zlog.NullLogger())

	first := movieEN
	first.Locale = domain.Locale{Language: "ar", Tag: "ar-SA"}
	o.Refresh(context.Background(), first)

	second := o.Refresh(context.Background(), movieEN)
	assert.Equal(t, uint64(2), second.Generation)
	waitSettled(t, o)
	close(release)

	// Let the superseded shelf return and be dropped
	require.Eventually(t, func() bool { return catalog.callCount() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	view := o.Snapshot()
	global, _ := view.Section("global")
	require.Equal(t, domain.StatusReady, global.Status)
	require.Len(t, global.Items, 1)
	assert.Equal(t, 1, global.Items[0].ID)
	assert.Equal(t, "en-US", view.Request.Locale.Tag)
}

func TestRefresh_CanceledContextLeavesShelvesLoading(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	catalog := &fakeCatalog{respond: func(ctx context.Context, c call) (domain.Page, error) {
		<-ctx.Done()
		return domain.Page{}, &domain.FetchError{Kind: domain.FetchNetwork, Err: ctx.Err()}
	}}
	cfg := config.HomeConfig{Shelves: []config.ShelfConfig{{ID: "global", Source: SourceTrending}}}
	o := NewOrchestrator(catalog, cfg, zlog.NullLogger())

	o.Refresh(context.Background(), movieEN)
	assert.False(t, o.Interrupted())
	o.Stop()
	assert.True(t, o.Interrupted())
	waitSettled(t, o)

	global, _ := o.Snapshot().Section("global")
	assert.Equal(t, domain.StatusLoading, global.Status)
	assert.True(t, o.Interrupted())
}

func TestInterrupted_CallerContextCanceled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	catalog := &fakeCatalog{respond: func(ctx context.Context, c call) (domain.Page, error) {
		if c.lang == "ar-SA" {
			<-ctx.Done()
			return domain.Page{}, &domain.FetchError{Kind: domain.FetchNetwork, Err: ctx.Err()}
		}
		return domain.Page{Items: items(c.kind, 1)}, nil
	}}
	cfg := config.HomeConfig{Shelves: []config.ShelfConfig{{ID: "global", Source: SourceTrending}}}
	o := NewOrchestrator(catalog, cfg, zlog.NullLogger())
	assert.False(t, o.Interrupted())

	arabic := movieEN
	arabic.Locale = domain.Locale{Language: "ar", Tag: "ar-SA"}
	ctx, cancel := context.WithCancel(context.Background())
	o.Refresh(ctx, arabic)
	cancel()
	waitSettled(t, o)
	assert.True(t, o.Interrupted())

	o.Refresh(context.Background(), movieEN)
	waitSettled(t, o)
	assert.False(t, o.Interrupted())
	global, _ := o.Snapshot().Section("global")
	assert.Equal(t, domain.StatusReady, global.Status)
}

func TestCapUnique(t *testing.T) {
	in := append(items(domain.KindMovie, 1, 2), items(domain.KindSeries, 1)...)
	out := capUnique(in, 10)
	assert.Len(t, out, 3)
	assert.Empty(t, capUnique(nil, 3))
}
