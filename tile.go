package main

import (
	"github.com/paulmach/orb/maptile"
)

// ZoomMax 最大级别, 2^30 以内行列号不会溢出
const ZoomMax = 30

// Constants representing TileFormat types
const (
	GZIP string = "gzip" // encoding = gzip
	PNG         = "png"
	JPG         = "jpg"
	PBF         = "pbf"
	WEBP        = "webp"
)

// 响应类型
const (
	MimePBF  = "application/x-protobuf"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeWEBP = "image/webp"
)

// EmptyTile 空矢量瓦片 (gzip 压缩的空 protobuf), 必须逐字节保持不变
var EmptyTile = [36]byte{
	0x1F, 0x8B, 0x08, 0x00, 0xFA, 0x78, 0x18, 0x5E, 0x00, 0x03, 0x93, 0xE2,
	0xE3, 0x62, 0x8F, 0x8F, 0x4F, 0xCD, 0x2D, 0x28, 0xA9, 0xD4, 0x68, 0x50,
	0xA8, 0x60, 0x02, 0x00, 0x64, 0x71, 0x44, 0x36, 0x10, 0x00, 0x00, 0x00,
}

// FlipY XYZ 与 TMS 行号互转 (自反)
func FlipY(t maptile.Tile) maptile.Tile {
	n := uint32(1) << uint32(t.Z)
	return maptile.New(t.X, n-t.Y-1, t.Z)
}

// tileInRange 行列号是否落在该级别内
func tileInRange(t maptile.Tile) bool {
	if t.Z > ZoomMax {
		return false
	}
	n := uint32(1) << uint32(t.Z)
	return t.X < n && t.Y < n
}

// ContentType 根据瓦片格式获取响应类型
func ContentType(format string) string {
	switch format {
	case PBF:
		return MimePBF
	case PNG:
		return MimePNG
	case JPG:
		return MimeJPEG
	case WEBP:
		return MimeWEBP
	}
	return format
}
