package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewSection_SettlesOnce(t *testing.T) {
	items := []MediaItem{{ID: 1, Kind: KindMovie, Title: "Dune"}}

	ready := Loading("global", "Trending").Resolve(items)
	assert.Equal(t, StatusReady, ready.Status)
	assert.Equal(t, items, ready.Items)

	// A settled section ignores later transitions
	assert.Equal(t, ready, ready.Fail(FetchNetwork))
	assert.Equal(t, ready, ready.Resolve(nil))

	failed := Loading("netflix", "On Netflix").Fail(FetchUpstreamRejected)
	assert.Equal(t, StatusError, failed.Status)
	assert.Empty(t, failed.Items)
	assert.Equal(t, FetchUpstreamRejected, failed.Err)
	assert.Equal(t, failed, failed.Resolve(items))
}

func TestFetchErrorKindOf(t *testing.T) {
	fe := &FetchError{Kind: FetchParse, Endpoint: "trending", Err: errors.New("unexpected EOF")}
	wrapped := fmt.Errorf("home shelf: %w", fe)

	assert.Equal(t, FetchParse, FetchErrorKindOf(wrapped))
	assert.Equal(t, FetchNetwork, FetchErrorKindOf(errors.New("boom")))

	canceled := &FetchError{Kind: FetchNetwork, Endpoint: "search_multi", Err: context.Canceled}
	assert.ErrorIs(t, canceled, context.Canceled)
	assert.Equal(t, "search_multi upstream_rejected (status 401)", (&FetchError{Kind: FetchUpstreamRejected, Endpoint: "search_multi", Status: 401}).Error())
}

func TestMediaItem_KeySeparatesKinds(t *testing.T) {
	movie := MediaItem{ID: 1399, Kind: KindMovie}
	series := MediaItem{ID: 1399, Kind: KindSeries}
	assert.NotEqual(t, movie.Key(), series.Key())
	assert.Equal(t, series.Key(), FavoriteFrom(series).Key())
}

func TestParseMediaKind(t *testing.T) {
	for in, want := range map[string]MediaKind{"movie": KindMovie, "tv": KindSeries, "series": KindSeries} {
		got, ok := ParseMediaKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseMediaKind("person")
	assert.False(t, ok)
	assert.Equal(t, "tv", KindSeries.UpstreamPath())
	assert.Equal(t, KindMovie, KindSeries.Toggle())
}

func TestUserSession_CloneIsIndependent(t *testing.T) {
	u := &UserSession{Email: "a@b.c", Favorites: []Favorite{{ID: 1, Kind: KindMovie}}}
	c := u.Clone()
	c.Favorites[0].Title = "changed"
	assert.Empty(t, u.Favorites[0].Title)
	assert.True(t, u.HasFavorite("movie:1"))

	var none *UserSession
	assert.Nil(t, none.Clone())
	assert.False(t, none.HasFavorite("movie:1"))
}

func TestAvailabilityRecord_Flatrate(t *testing.T) {
	rec := &AvailabilityRecord{Providers: []Provider{
		{ID: 8, Name: "Netflix", Monetization: MonetizationFlatrate},
		{ID: 2, Name: "Apple TV", Monetization: MonetizationRent},
		{ID: 337, Name: "Disney Plus", Monetization: MonetizationFlatrate},
	}}
	flat := rec.Flatrate()
	assert.Len(t, flat, 2)
	assert.Equal(t, "Disney Plus", flat[1].Name)

	var none *AvailabilityRecord
	assert.Nil(t, none.Flatrate())
}
