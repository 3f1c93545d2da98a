package main

import "github.com/pkg/errors"

var (
	// ErrTilesetExists 同名瓦片集已注册, 保留原有记录
	ErrTilesetExists = errors.New("tileset already registered")
	// ErrRegistryFull 已达到瓦片集上限
	ErrRegistryFull = errors.New("maximum tilesets already loaded")
	// ErrRegistrySealed 瓦片集已打开, 不再接受注册
	ErrRegistrySealed = errors.New("registry is sealed")
	ErrNameInvalid    = errors.New("invalid tileset name")
	ErrPathInvalid    = errors.New("invalid tileset path")

	// ErrOpen 无法打开 mbtiles
	ErrOpen = errors.New("couldn't open mbtiles")
	// ErrMetadataMissing mbtiles 中缺少 format
	ErrMetadataMissing = errors.New("couldn't find format in mbtiles")
)
