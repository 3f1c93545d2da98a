package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterUnique(t *testing.T) {
	r := NewRegistry(DefaultCapacity)
	require.NoError(t, r.Register("world", "/data/first.mbtiles"))

	err := r.Register("world", "/data/second.mbtiles")
	require.True(t, errors.Is(err, ErrTilesetExists))
	require.Equal(t, 1, r.Len())

	ts, ok := r.Lookup("world")
	require.True(t, ok)
	require.Equal(t, "/data/first.mbtiles", ts.Path)
}

func TestRegistryCapacity(t *testing.T) {
	r := NewRegistry(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Register(fmt.Sprintf("ts%d", i), "/data/x.mbtiles"))
	}

	err := r.Register("overflow", "/data/x.mbtiles")
	require.True(t, errors.Is(err, ErrRegistryFull))
	require.Equal(t, 3, r.Len())
	_, ok := r.Lookup("overflow")
	require.False(t, ok)

	// 已存在的名称在满时仍然是 no-op
	err = r.Register("ts0", "/data/y.mbtiles")
	require.True(t, errors.Is(err, ErrTilesetExists))
}

func TestRegistryDefaultCapacity(t *testing.T) {
	r := NewRegistry(0)
	for i := 0; i < DefaultCapacity; i++ {
		require.NoError(t, r.Register(fmt.Sprintf("ts%d", i), "/data/x.mbtiles"))
	}
	require.True(t, errors.Is(r.Register("one-more", "/data/x.mbtiles"), ErrRegistryFull))
}

func TestRegistryValidation(t *testing.T) {
	r := NewRegistry(DefaultCapacity)

	require.True(t, errors.Is(r.Register("", "/data/x.mbtiles"), ErrNameInvalid))
	require.True(t, errors.Is(r.Register("a/b", "/data/x.mbtiles"), ErrNameInvalid))
	require.True(t, errors.Is(r.Register(strings.Repeat("n", MaxNameLen+1), "/data/x.mbtiles"), ErrNameInvalid))
	require.True(t, errors.Is(r.Register("world", ""), ErrPathInvalid))
	require.True(t, errors.Is(r.Register("world", "/"+strings.Repeat("p", MaxPathLen)), ErrPathInvalid))
	require.Equal(t, 0, r.Len())

	require.NoError(t, r.Register(strings.Repeat("n", MaxNameLen), "/"+strings.Repeat("p", MaxPathLen-1)))
}

func TestRegistryLookupCaseSensitive(t *testing.T) {
	r := NewRegistry(DefaultCapacity)
	require.NoError(t, r.Register("World", "/data/x.mbtiles"))

	_, ok := r.Lookup("world")
	require.False(t, ok)
	_, ok = r.Lookup("World")
	require.True(t, ok)
}

func TestRegistryOpenAll(t *testing.T) {
	vector := newTestMBTiles(t, "pbf")
	raster := newTestMBTiles(t, "png")
	noFormat := newTestMBTiles(t, "")

	r := NewRegistry(DefaultCapacity)
	require.NoError(t, r.Register("missing", filepath.Join(t.TempDir(), "nope.mbtiles")))
	require.NoError(t, r.Register("noformat", noFormat))
	require.NoError(t, r.Register("vt", vector))
	require.NoError(t, r.Register("dem", raster))
	defer r.CloseAll()

	errs := r.OpenAll(context.Background(), DefaultStoreOptions())
	require.Len(t, errs, 2)
	require.True(t, errors.Is(errs[0], ErrOpen))
	require.True(t, errors.Is(errs[1], ErrMetadataMissing))

	// 失败的瓦片集不影响后续
	ts, _ := r.Lookup("missing")
	require.False(t, ts.Opened)
	require.Nil(t, ts.Store())

	ts, _ = r.Lookup("noformat")
	require.False(t, ts.Opened)

	ts, _ = r.Lookup("vt")
	require.True(t, ts.Opened)
	require.True(t, ts.IsVector)
	require.Equal(t, "pbf", ts.Format)

	ts, _ = r.Lookup("dem")
	require.True(t, ts.Opened)
	require.False(t, ts.IsVector)
	require.Equal(t, "png", ts.Format)
}

func TestRegistrySealed(t *testing.T) {
	r := NewRegistry(DefaultCapacity)
	r.OpenAll(context.Background(), DefaultStoreOptions())

	require.Equal(t, ErrRegistrySealed, r.Register("late", "/data/x.mbtiles"))
	require.Equal(t, 0, r.Len())
}

func TestRegistryCloseAllIdempotent(t *testing.T) {
	r := newTestRegistry(t, TilesetConf{Name: "vt", Path: newTestMBTiles(t, "pbf")})

	require.NoError(t, r.CloseAll())
	require.NoError(t, r.CloseAll())

	ts, _ := r.Lookup("vt")
	require.False(t, ts.Opened)
}
