package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConf(t *testing.T) {
	path := writeConf(t, `
[server]
addr = ":9090"

[tiles]
capacity = 5
ensureGzip = true

[[scopes]]
prefix = "/tiles"
enabled = true

[[scopes]]
prefix = "/legacy"
enabled = false

[[tilesets]]
name = "vt"
path = "/data/vt.mbtiles"

[[tilesets]]
name = "dem"
path = "/data/dem.mbtiles"
`)

	c, err := LoadConf(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", c.Server.Addr)
	require.Equal(t, 5, c.Tiles.Capacity)
	require.True(t, c.Tiles.EnsureGzip)
	require.Equal(t, []ScopeConf{
		{Prefix: "/tiles", Enabled: true},
		{Prefix: "/legacy", Enabled: false},
	}, c.Scopes)
	require.Equal(t, []TilesetConf{
		{Name: "vt", Path: "/data/vt.mbtiles"},
		{Name: "dem", Path: "/data/dem.mbtiles"},
	}, c.Tilesets)

	// 默认值
	require.Equal(t, "sqlite3", c.Storage.Driver)
	require.Equal(t, 4, c.Storage.MaxOpenConns)
	require.Equal(t, 3, c.Storage.SchemaRetries)
	require.Equal(t, "/metrics", c.Metrics.Path)
	require.True(t, c.Metrics.Enabled)
	require.Equal(t, 0, c.Tiles.CacheSize)

	opts := c.StoreOptions()
	require.Equal(t, "sqlite3", opts.Driver)
	require.Equal(t, 4, opts.MaxOpenConns)
}

func TestLoadConfDefaultScope(t *testing.T) {
	c, err := LoadConf(writeConf(t, `
[[tilesets]]
name = "vt"
path = "/data/vt.mbtiles"
`))
	require.NoError(t, err)
	require.Equal(t, []ScopeConf{{Prefix: "/", Enabled: true}}, c.Scopes)
	require.Equal(t, DefaultCapacity, c.Tiles.Capacity)
	require.Equal(t, ":8080", c.Server.Addr)
}

func TestLoadConfMissing(t *testing.T) {
	_, err := LoadConf(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
