package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketResponses = []byte("responses")

type boltEntry struct {
	Expires time.Time       `json:"expires"`
	Data    json.RawMessage `json:"data"`
}

// BoltCache keeps payloads in a bbolt file so they survive a restart
// within the revalidation window
type BoltCache struct {
	db  *bolt.DB
	now func() time.Time
}

// NewBoltCache opens (or creates) the cache file at path
func NewBoltCache(path string) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketResponses)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	c := &BoltCache{db: db, now: time.Now}
	c.purgeExpired()
	return c, nil
}

func (c *BoltCache) Get(_ context.Context, key string) ([]byte, bool) {
	var raw []byte
	c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketResponses).Get([]byte(key)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if raw == nil {
		return nil, false
	}

	var e boltEntry
	if err := json.Unmarshal(raw, &e); err != nil || c.now().After(e.Expires) {
		return nil, false
	}
	return e.Data, true
}

func (c *BoltCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 || !json.Valid(value) {
		return
	}
	data, err := json.Marshal(boltEntry{Expires: c.now().Add(ttl), Data: value})
	if err != nil {
		return
	}
	c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResponses).Put([]byte(key), data)
	})
}

// purgeExpired drops entries left over from previous runs
func (c *BoltCache) purgeExpired() {
	now := c.now()
	c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResponses)
		var stale [][]byte
		b.ForEach(func(k, v []byte) error {
			var e boltEntry
			if json.Unmarshal(v, &e) != nil || now.After(e.Expires) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
