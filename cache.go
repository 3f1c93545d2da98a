package main

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/paulmach/orb/maptile"
)

// TileCache 瓦片读取结果缓存, 无数据的坐标同样缓存
type TileCache interface {
	Get(name string, t maptile.Tile) (data []byte, found bool, ok bool)
	Add(name string, t maptile.Tile, data []byte, found bool)
}

type cachedTile struct {
	data  []byte
	found bool
}

// LRUCache 基于 golang-lru 的内存缓存
type LRUCache struct {
	cache *lru.Cache
}

// NewTileCache size<=0 时不缓存
func NewTileCache(size int) (TileCache, error) {
	if size <= 0 {
		return noopCache{}, nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{cache: c}, nil
}

func cacheKey(name string, t maptile.Tile) string {
	return fmt.Sprintf("%s/%d/%d/%d", name, t.Z, t.X, t.Y)
}

func (c *LRUCache) Get(name string, t maptile.Tile) ([]byte, bool, bool) {
	v, ok := c.cache.Get(cacheKey(name, t))
	if !ok {
		return nil, false, false
	}
	ct := v.(cachedTile)
	return ct.data, ct.found, true
}

func (c *LRUCache) Add(name string, t maptile.Tile, data []byte, found bool) {
	c.cache.Add(cacheKey(name, t), cachedTile{data: data, found: found})
}

// Len 缓存条目数
func (c *LRUCache) Len() int {
	return c.cache.Len()
}

type noopCache struct{}

func (noopCache) Get(string, maptile.Tile) ([]byte, bool, bool) { return nil, false, false }
func (noopCache) Add(string, maptile.Tile, []byte, bool)        {}
