package session

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Package session persists login cookies between command invocations.

const (
	sessionBucket    = "sessions"
	expiryValueBytes = 8

	defaultTTL = 24 * time.Hour
)

// Store keeps one session cookie per profile.
type Store interface {
	Close() error
	Save(profile, cookie string) error
	Get(profile string) (string, bool, error)
	Delete(profile string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TTL time.Duration
}

// NewStore creates the session store. An empty path disables persistence.
func NewStore(path string, opts Options) (Store, error) {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if strings.TrimSpace(path) == "" {
		return noopStore{}, nil
	}
	return openBolt(path, opts)
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) Save(string, string) error        { return nil }
func (noopStore) Get(string) (string, bool, error) { return "", false, nil }
func (noopStore) Delete(string) error              { return nil }

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db  *bolt.DB
	ttl time.Duration
}

// openBolt initializes a BoltDB-backed Store and sweeps out sessions that
// expired since the last run.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		if err != nil {
			return err
		}

		now := time.Now()
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, _, ok := decodeSession(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db, ttl: opts.TTL}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Save stores the cookie for a profile with a fresh expiry.
func (b *boltStore) Save(profile, cookie string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		return bucket.Put([]byte(profile), encodeSession(cookie, time.Now().Add(b.ttl)))
	})
}

// Get returns the stored cookie for a profile. Expired entries are deleted
// on read.
func (b *boltStore) Get(profile string) (string, bool, error) {
	var (
		cookie string
		found  bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}

		key := []byte(profile)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		expiry, stored, ok := decodeSession(value)
		if !ok || !expiry.After(time.Now()) {
			return bucket.Delete(key)
		}

		cookie = stored
		found = true
		return nil
	})
	return cookie, found, err
}

// Delete removes the stored cookie for a profile.
func (b *boltStore) Delete(profile string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		return bucket.Delete([]byte(profile))
	})
}

// encodeSession prefixes the cookie with its big-endian expiry.
func encodeSession(cookie string, expiry time.Time) []byte {
	buf := make([]byte, expiryValueBytes+len(cookie))
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	copy(buf[expiryValueBytes:], cookie)
	return buf
}

// decodeSession splits a stored value into expiry and cookie.
func decodeSession(value []byte) (time.Time, string, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, "", false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, "", false
	}
	return time.Unix(unix, 0), string(value[expiryValueBytes:]), true
}
