package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

const (
	// MaxNameLen 瓦片集名称最大长度
	MaxNameLen = 39
	// MaxPathLen 文件路径最大长度
	MaxPathLen = 254
)

// Tileset 瓦片集, 对应一个 mbtiles 文件
type Tileset struct {
	Name     string
	Path     string
	Format   string
	IsVector bool
	Opened   bool

	store *TileStore
}

// Store 底层存储, 未打开时为 nil
func (ts *Tileset) Store() *TileStore {
	return ts.store
}

func (ts *Tileset) open(ctx context.Context, opts StoreOptions) error {
	store, err := OpenTileStore(ts.Path, opts)
	if err != nil {
		return err
	}
	format, err := store.ReadFormat(ctx)
	if err != nil {
		store.Close()
		return err
	}
	ts.store = store
	ts.Format = format
	ts.IsVector = format == PBF
	ts.Opened = true
	return nil
}

func (ts *Tileset) close() error {
	if ts.store == nil {
		return nil
	}
	err := ts.store.Close()
	ts.store = nil
	ts.Opened = false
	return err
}

func validateName(name string) error {
	if name == "" || len(name) > MaxNameLen || strings.Contains(name, "/") {
		return errors.Wrapf(ErrNameInvalid, "%q", name)
	}
	return nil
}

func validatePath(path string) error {
	if path == "" || len(path) > MaxPathLen {
		return errors.Wrapf(ErrPathInvalid, "%q", path)
	}
	return nil
}
