// Package querycache holds successful GET responses per user so repeated reads
// skip the database. Mutating routes evict entries by path prefix.
package querycache

import (
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const keySeparator = "|"

// Entry is one cached HTTP response
type Entry struct {
	Status int
	Header http.Header
	Body   []byte
}

// QueryCache is an in-memory response cache keyed by user and request URI
type QueryCache struct {
	store *cache.Cache
	ttl   time.Duration
}

// New creates a cache whose entries live for ttl
func New(ttl time.Duration) *QueryCache {
	cleanup := 2 * ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &QueryCache{
		store: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Key builds the cache key for a user's request
func Key(userID, requestURI string) string {
	return userID + keySeparator + requestURI
}

// Get returns the cached entry for key
func (q *QueryCache) Get(key string) (*Entry, bool) {
	v, found := q.store.Get(key)
	if !found {
		return nil, false
	}
	entry, ok := v.(*Entry)
	return entry, ok
}

// Set stores an entry under key for the configured ttl
func (q *QueryCache) Set(key string, entry *Entry) {
	q.store.Set(key, entry, q.ttl)
}

// InvalidatePrefix drops every entry, for any user, whose request URI starts
// with prefix. It returns the number of entries removed.
func (q *QueryCache) InvalidatePrefix(prefix string) int {
	removed := 0
	for key := range q.store.Items() {
		idx := strings.Index(key, keySeparator)
		if idx < 0 {
			continue
		}
		if strings.HasPrefix(key[idx+len(keySeparator):], prefix) {
			q.store.Delete(key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including expired ones not yet swept
func (q *QueryCache) Len() int {
	return q.store.ItemCount()
}

// Flush empties the cache
func (q *QueryCache) Flush() {
	q.store.Flush()
}
