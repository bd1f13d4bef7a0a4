package static

import (
	"sync/atomic"
	"time"

	expirable "github.com/hashicorp/golang-lru/v2/expirable"
)

// File 是一次静态文件读取结果，缓存中按只读共享。
type File struct {
	Name        string
	ContentType string
	Body        []byte
	ModTime     time.Time
}

// Cache 是按文件系统路径缓存内容的 LRU，条目过期后重新读盘。
type Cache struct {
	lru       *expirable.LRU[string, *File]
	maxBytes  int
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewCache size<=0 时默认 256；maxBytes 为单文件可缓存上限，<=0 时默认 1MiB。
func NewCache(size int, ttl time.Duration, maxBytes int) *Cache {
	if size <= 0 {
		size = 256
	}
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	c := &Cache{maxBytes: maxBytes}
	c.lru = expirable.NewLRU[string, *File](size, func(string, *File) {
		c.evictions.Add(1)
	}, ttl)
	return c
}

func (c *Cache) Get(key string) (*File, bool) {
	if c == nil {
		return nil, false
	}
	f, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return f, ok
}

// Set 超过单文件上限的内容不缓存。
func (c *Cache) Set(key string, f *File) {
	if c == nil || len(f.Body) > c.maxBytes {
		return
	}
	c.lru.Add(key, f)
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *Cache) Purge() {
	if c != nil {
		c.lru.Purge()
	}
}

// CacheStats 命中计数快照。
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Len       int
}

func (c *Cache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.lru.Len(),
	}
}
