package domain

import "time"

// Favorite is a denormalized favorite entry, enough to render the list offline
type Favorite struct {
	ID        int       `json:"id"`
	Kind      MediaKind `json:"kind"`
	Title     string    `json:"title"`
	PosterRef string    `json:"posterRef"`
}

// Key matches MediaItem.Key
func (f Favorite) Key() string {
	return MediaItem{ID: f.ID, Kind: f.Kind}.Key()
}

// FavoriteFrom snapshots the display fields of an item
func FavoriteFrom(item MediaItem) Favorite {
	return Favorite{ID: item.ID, Kind: item.Kind, Title: item.Title, PosterRef: item.PosterPath}
}

// UserSession is the client-local identity. It is not an authentication record.
type UserSession struct {
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Favorites []Favorite `json:"favorites"`
	Joined    time.Time  `json:"joined"`
}

// Clone returns a deep copy safe to hand to presentation
func (u *UserSession) Clone() *UserSession {
	if u == nil {
		return nil
	}
	c := *u
	if u.Favorites != nil {
		c.Favorites = make([]Favorite, len(u.Favorites))
		copy(c.Favorites, u.Favorites)
	}
	return &c
}

// HasFavorite reports whether the item key is in the favorites set
func (u *UserSession) HasFavorite(key string) bool {
	if u == nil {
		return false
	}
	for _, f := range u.Favorites {
		if f.Key() == key {
			return true
		}
	}
	return false
}
