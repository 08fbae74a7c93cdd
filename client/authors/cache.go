package authors

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is large enough that a normal session never evicts.
const DefaultCacheSize = 4096

// Cache maps author ids to display names. It lives as long as the client
// session and evicts least recently used names only past its size.
type Cache struct {
	names *lru.Cache[int64, string]
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	names, err := lru.New[int64, string](size)
	if err != nil {
		// only returned for non-positive sizes
		panic(err)
	}
	return &Cache{names: names}
}

func (c *Cache) Get(id int64) (string, bool) {
	return c.names.Get(id)
}

func (c *Cache) Put(id int64, name string) {
	c.names.Add(id, name)
}

func (c *Cache) Len() int {
	return c.names.Len()
}

// Purge forgets every name, used when the session ends.
func (c *Cache) Purge() {
	c.names.Purge()
}
