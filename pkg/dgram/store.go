package dgram

import (
	cache "github.com/patrickmn/go-cache"
)

// Store is the single server-wide key/value state. Every extension's OnStart
// and every Context see the same Store for the lifetime of the server; it is
// never nil and it is never reset between packets.
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Delete(key string)
	Flush()
}

// cacheStore backs the default Store with an in-memory cache that never
// expires entries.
type cacheStore struct {
	c *cache.Cache
}

// NewStore returns the default in-memory Store.
func NewStore() Store {
	return &cacheStore{c: cache.New(cache.NoExpiration, 0)}
}

func (s *cacheStore) Get(key string) (interface{}, bool) {
	return s.c.Get(key)
}

func (s *cacheStore) Set(key string, value interface{}) {
	s.c.Set(key, value, cache.NoExpiration)
}

func (s *cacheStore) Delete(key string) {
	s.c.Delete(key)
}

func (s *cacheStore) Flush() {
	s.c.Flush()
}
