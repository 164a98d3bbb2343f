package genre

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/AnasZiaf26/Zapit/internal/domain"
	zlog "github.com/AnasZiaf26/Zapit/internal/log"
)

var movieGenres = []domain.Genre{
	{ID: 28, Name: "Action"},
	{ID: 12, Name: "Aventure"},
	{ID: 35, Name: "Comédie"},
	{ID: 878, Name: "Science-Fiction"},
	{ID: 10752, Name: "Guerre"},
}

type fakeGenres struct {
	calls atomic.Int32
	err   error
}

func (f *fakeGenres) Genres(ctx context.Context, kind domain.MediaKind, language string) ([]domain.Genre, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return movieGenres, nil
}

type fakeCatalog struct {
	mu      sync.Mutex
	filters []domain.DiscoverFilter
	respond func(ctx context.Context, f domain.DiscoverFilter) (domain.Page, error)
}

func (f *fakeCatalog) Trending(context.Context, domain.MediaKind, domain.Window, string) (domain.Page, error) {
	return domain.Page{}, errors.New("unexpected")
}

func (f *fakeCatalog) NowPlaying(context.Context, string, domain.Region) (domain.Page, error) {
	return domain.Page{}, errors.New("unexpected")
}

func (f *fakeCatalog) Discover(ctx context.Context, kind domain.MediaKind, filter domain.DiscoverFilter, lang string) (domain.Page, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	return f.respond(ctx, filter)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"action", 28, true},
		{"ACTION", 28, true},
		{"comedie", 35, true},
		{"scifi", 878, true},
		{"guer", 10752, true},
		{"western", 0, false},
		{"  ", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := Match(tt.name, movieGenres)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, g.ID)
		})
	}
}

func TestGenres_Memoized(t *testing.T) {
	repo := &fakeGenres{}
	b := NewBrowser(repo, nil, zlog.NullLogger())
	fr := domain.Locale{Language: "fr", Tag: "fr-FR"}

	for i := 0; i < 3; i++ {
		list, err := b.Genres(context.Background(), domain.KindMovie, fr)
		require.NoError(t, err)
		assert.Len(t, list, len(movieGenres))
	}
	assert.Equal(t, int32(1), repo.calls.Load())

	_, err := b.Genres(context.Background(), domain.KindSeries, fr)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.calls.Load())
}

func TestResolve(t *testing.T) {
	b := NewBrowser(&fakeGenres{}, nil, zlog.NullLogger())
	fr := domain.Locale{Language: "fr", Tag: "fr-FR"}

	g, err := b.Resolve(context.Background(), "aventure", domain.KindMovie, fr)
	require.NoError(t, err)
	assert.Equal(t, 12, g.ID)

	_, err = b.Resolve(context.Background(), "western", domain.KindMovie, fr)
	assert.ErrorIs(t, err, domain.ErrUnknownGenre)

	failing := NewBrowser(&fakeGenres{err: &domain.FetchError{Kind: domain.FetchNetwork}}, nil, zlog.NullLogger())
	_, err = failing.Resolve(context.Background(), "action", domain.KindMovie, fr)
	assert.Equal(t, domain.FetchNetwork, domain.FetchErrorKindOf(err))
}

func TestBrowseAndLoadMore(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	catalog := &fakeCatalog{respond: func(ctx context.Context, f domain.DiscoverFilter) (domain.Page, error) {
		if f.Page == 1 {
			return domain.Page{Items: []domain.MediaItem{{ID: 1, Kind: domain.KindMovie}, {ID: 2, Kind: domain.KindMovie}}, Page: 1, TotalPages: 2}, nil
		}
		return domain.Page{Items: []domain.MediaItem{{ID: 2, Kind: domain.KindMovie}, {ID: 3, Kind: domain.KindMovie}}, Page: 2, TotalPages: 2}, nil
	}}
	b := NewBrowser(&fakeGenres{}, catalog, zlog.NullLogger())
	defer b.Close()

	b.Browse(Request{Genre: movieGenres[0], Kind: domain.KindMovie, Locale: domain.Locale{Tag: "en-US"}})
	b.Wait()
	require.True(t, b.LoadMore())
	b.Wait()

	state := b.Snapshot()
	assert.True(t, state.Active())
	require.Len(t, state.Items, 3)
	assert.Equal(t, 3, state.Items[2].ID)
	assert.False(t, b.LoadMore())

	require.Len(t, catalog.filters, 2)
	assert.Equal(t, 28, catalog.filters[0].GenreID)
	assert.Equal(t, "popularity.desc", catalog.filters[0].SortBy)
	assert.Equal(t, 2, catalog.filters[1].Page)
}

func TestBrowse_SupersededAndClear(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	catalog := &fakeCatalog{respond: func(ctx context.Context, f domain.DiscoverFilter) (domain.Page, error) {
		if f.GenreID == 28 {
			<-release
		}
		return domain.Page{Items: []domain.MediaItem{{ID: f.GenreID, Kind: domain.KindMovie}}, Page: 1, TotalPages: 1}, nil
	}}
	b := NewBrowser(&fakeGenres{}, catalog, zlog.NullLogger())
	defer b.Close()

	b.Browse(Request{Genre: movieGenres[0], Kind: domain.KindMovie})
	b.Browse(Request{Genre: movieGenres[2], Kind: domain.KindMovie})
	require.Eventually(t, func() bool { return !b.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	close(release)
	b.Wait()

	state := b.Snapshot()
	assert.Equal(t, 35, state.Genre.ID)
	require.Len(t, state.Items, 1)
	assert.Equal(t, 35, state.Items[0].ID)

	b.Clear()
	assert.False(t, b.Snapshot().Active())
	assert.False(t, b.LoadMore())
}

func TestBrowse_Failure(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	catalog := &fakeCatalog{respond: func(ctx context.Context, f domain.DiscoverFilter) (domain.Page, error) {
		return domain.Page{}, &domain.FetchError{Kind: domain.FetchParse}
	}}
	b := NewBrowser(&fakeGenres{}, catalog, zlog.NullLogger())
	defer b.Close()

	b.Browse(Request{Genre: movieGenres[1], Kind: domain.KindMovie})
	b.Wait()

	state := b.Snapshot()
	assert.Equal(t, domain.FetchParse, state.Err)
	assert.Empty(t, state.Items)
}
