package main

import (
	"context"

	"github.com/pkg/errors"
)

// DefaultCapacity 默认瓦片集上限
const DefaultCapacity = 20

// Registry 瓦片集注册表.
// 启动时注册并打开, 之后只读, 请求期间无需加锁
type Registry struct {
	capacity int
	tilesets []*Tileset
	sealed   bool
}

// NewRegistry 创建注册表
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		capacity: capacity,
		tilesets: make([]*Tileset, 0, capacity),
	}
}

// Register 注册瓦片集. 同名已存在时返回 ErrTilesetExists 且不做任何修改
func (r *Registry) Register(name, path string) error {
	if r.sealed {
		return ErrRegistrySealed
	}
	if err := validateName(name); err != nil {
		return err
	}
	if err := validatePath(path); err != nil {
		return err
	}
	if _, ok := r.Lookup(name); ok {
		return errors.Wrap(ErrTilesetExists, name)
	}
	if len(r.tilesets) >= r.capacity {
		return errors.Wrapf(ErrRegistryFull, "capacity %d", r.capacity)
	}
	r.tilesets = append(r.tilesets, &Tileset{Name: name, Path: path})
	return nil
}

// OpenAll 逐个打开瓦片集, 单个失败不影响其余
func (r *Registry) OpenAll(ctx context.Context, opts StoreOptions) []error {
	r.sealed = true

	var errs []error
	for _, ts := range r.tilesets {
		if ts.Opened {
			continue
		}
		if err := ts.open(ctx, opts); err != nil {
			log.Errorf("open tileset %s error, details: %s", ts.Name, err)
			errs = append(errs, errors.Wrap(err, ts.Name))
			continue
		}
		if ts.IsVector {
			log.Infof("Successfully opened vector mbtiles %s (%s)", ts.Name, ts.Path)
		} else {
			log.Infof("Successfully opened raster mbtiles %s (%s), format: %s", ts.Name, ts.Path, ts.Format)
		}
	}
	return errs
}

// Lookup 按名称查找, 区分大小写
func (r *Registry) Lookup(name string) (*Tileset, bool) {
	for _, ts := range r.tilesets {
		if ts.Name == name {
			return ts, true
		}
	}
	return nil, false
}

// Len 已注册数量
func (r *Registry) Len() int {
	return len(r.tilesets)
}

// Tilesets 按注册顺序返回全部瓦片集
func (r *Registry) Tilesets() []*Tileset {
	out := make([]*Tileset, len(r.tilesets))
	copy(out, r.tilesets)
	return out
}

// CloseAll 关闭全部已打开的瓦片集, 可重复调用
func (r *Registry) CloseAll() error {
	var first error
	for _, ts := range r.tilesets {
		if err := ts.close(); err != nil {
			log.Warnf("close tileset %s error, details: %s", ts.Name, err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
