// Package session manages the client-local user session and favorites.
package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/AnasZiaf26/Zapit/internal/domain"
)

// Service is the single owner of the current session
type Service struct {
	store  domain.SessionStore
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *domain.UserSession
}

// NewService creates a session service backed by store
func NewService(store domain.SessionStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Restore loads a persisted session, if any. A corrupt blob leaves the
// service anonymous.
func (s *Service) Restore() error {
	session, ok, err := s.store.LoadSession()
	if err != nil {
		s.logger.Warn("failed to restore session", "error", err)
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = session
	s.logger.Info("restored session", "name", session.Name, "favorites", len(session.Favorites))
	return nil
}

// Current returns a copy of the session, nil when anonymous
func (s *Service) Current() *domain.UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// SignedIn reports whether a session exists
func (s *Service) SignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// SignIn starts a new session for the credential, replacing any current
// one. The session is kept even if it cannot be persisted.
func (s *Service) SignIn(credential string) (*domain.UserSession, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, domain.ErrEmptyCredential
	}

	session := &domain.UserSession{
		Email:     credential,
		Name:      DisplayName(credential),
		Favorites: []domain.Favorite{},
		Joined:    s.now().UTC().Truncate(time.Second),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = session

	if err := s.store.SaveSession(session); err != nil {
		s.logger.Warn("failed to persist session", "error", err)
		return session.Clone(), fmt.Errorf("failed to persist session: %w", err)
	}
	return session.Clone(), nil
}

// SignOut ends the session and removes the persisted copy
func (s *Service) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.store.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// IsFavorite reports whether the item is in the favorites
func (s *Service) IsFavorite(item domain.MediaItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.HasFavorite(item.Key())
}

// ToggleFavorite adds or removes the item and persists the whole session.
// It reports whether the item is now a favorite. On a persist failure the
// change is rolled back.
func (s *Service) ToggleFavorite(item domain.MediaItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false, domain.ErrNotSignedIn
	}

	previous := s.current.Favorites
	key := item.Key()

	next := make([]domain.Favorite, 0, len(previous)+1)
	added := true
	for _, f := range previous {
		if f.Key() == key {
			added = false
			continue
		}
		next = append(next, f)
	}
	if added {
		next = append(next, domain.FavoriteFrom(item))
	}

	s.current.Favorites = next
	if err := s.store.SaveSession(s.current); err != nil {
		s.current.Favorites = previous
		s.logger.Warn("failed to persist favorites", "item", key, "error", err)
		return !added, fmt.Errorf("failed to persist favorites: %w", err)
	}
	return added, nil
}

// FilterFavorites returns favorites whose title fuzzily matches query,
// best match first. An empty query returns every favorite.
func (s *Service) FilterFavorites(query string) []domain.Favorite {
	s.mu.Lock()
	var favs []domain.Favorite
	if s.current != nil {
		favs = append(favs, s.current.Favorites...)
	}
	s.mu.Unlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return favs
	}

	matches := fuzzy.FindFrom(query, favoriteTitles(favs))
	out := make([]domain.Favorite, 0, len(matches))
	for _, m := range matches {
		out = append(out, favs[m.Index])
	}
	return out
}

// favoriteTitles adapts favorites to fuzzy.Source
type favoriteTitles []domain.Favorite

func (f favoriteTitles) String(i int) string { return f[i].Title }
func (f favoriteTitles) Len() int            { return len(f) }

// DisplayName derives a display name from a credential: the local part of
// an e-mail address, else the credential itself
func DisplayName(credential string) string {
	if local, _, ok := strings.Cut(credential, "@"); ok && local != "" {
		return local
	}
	return credential
}
