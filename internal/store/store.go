package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/AnasZiaf26/Zapit/internal/domain"
)

// Bucket names
var (
	bucketSession     = []byte("session")
	bucketPreferences = []byte("preferences")
)

// SessionKey is the fixed key of the persisted user session
const SessionKey = "zapit_user"

// Preference keys
const (
	PrefLanguage = "language"
	PrefKind     = "kind"
)

// SessionStore implements domain.SessionStore using BoltDB.
type SessionStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory copy of every value read or written
	cache map[string][]byte
}

// NewSessionStore opens the store at path. An empty path keeps
// everything in memory.
func NewSessionStore(path string) (*SessionStore, error) {
	if path == "" {
		return &SessionStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketPreferences} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SessionStore) get(bucket []byte, key string, dest any) (bool, error) {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	data, ok := s.cache[cacheKey]
	s.mu.RUnlock()

	if !ok && s.db != nil {
		err := s.db.View(func(tx *bolt.Tx) error {
			if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if err != nil {
			return false, err
		}
		if data != nil {
			s.mu.Lock()
			s.cache[cacheKey] = data
			s.mu.Unlock()
		}
	}

	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("corrupt %s entry: %w", key, err)
	}
	return true, nil
}

func (s *SessionStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucket).Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(key))
	})
}

// === Session ===

func (s *SessionStore) LoadSession() (*domain.UserSession, bool, error) {
	var session domain.UserSession
	ok, err := s.get(bucketSession, SessionKey, &session)
	if err != nil || !ok {
		return nil, false, err
	}
	return &session, true, nil
}

func (s *SessionStore) SaveSession(session *domain.UserSession) error {
	if session == nil {
		return s.ClearSession()
	}
	return s.set(bucketSession, SessionKey, session)
}

func (s *SessionStore) ClearSession() error {
	return s.delete(bucketSession, SessionKey)
}

// === Preferences ===

// Preference returns a remembered UI preference
func (s *SessionStore) Preference(key string) (string, bool) {
	var v string
	ok, err := s.get(bucketPreferences, key, &v)
	return v, ok && err == nil
}

// SetPreference remembers a UI preference
func (s *SessionStore) SetPreference(key, value string) error {
	return s.set(bucketPreferences, key, value)
}
