package main

import (
	"regexp"
	"strconv"

	"github.com/paulmach/orb/maptile"
)

// 形如 /{name}/{z}/{x}/{y}.{suffix}, 后缀不参与判断
var tilePathRe = regexp.MustCompile(`^/([^/]{1,39})/([0-9]+)/([0-9]+)/([0-9]+)\.`)

// TileRequest 解析后的瓦片请求, Tile 为 XYZ 行号
type TileRequest struct {
	Name string
	Tile maptile.Tile
}

// ResolvePath 解析请求路径, 不匹配时返回 false
func ResolvePath(path string) (TileRequest, bool) {
	m := tilePathRe.FindStringSubmatch(path)
	if m == nil {
		return TileRequest{}, false
	}

	z, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil || z > ZoomMax {
		return TileRequest{}, false
	}
	x, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return TileRequest{}, false
	}
	y, err := strconv.ParseUint(m[4], 10, 32)
	if err != nil {
		return TileRequest{}, false
	}

	t := maptile.New(uint32(x), uint32(y), maptile.Zoom(z))
	if !tileInRange(t) {
		return TileRequest{}, false
	}
	return TileRequest{Name: m[1], Tile: t}, true
}
