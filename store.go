package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"

	// registers the "spatialite" driver
	_ "github.com/shaxbee/go-spatialite"
)

// uriEscaper 文件路径中会被当作 URI 语法的字符
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

const (
	formatQuery = `SELECT value FROM metadata WHERE name='format'`
	tileQuery   = `SELECT tile_data FROM tiles WHERE zoom_level=? AND tile_column=? AND tile_row=?`
	countQuery  = `SELECT COUNT(*) FROM tiles`
	walkQuery   = `SELECT zoom_level, tile_column, tile_row FROM tiles`
)

// StoreOptions 存储连接参数
type StoreOptions struct {
	Driver        string
	MaxOpenConns  int
	SchemaRetries int
}

// DefaultStoreOptions 默认连接参数
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		Driver:        "sqlite3",
		MaxOpenConns:  4,
		SchemaRetries: 3,
	}
}

// TileStore 单个 mbtiles 的只读连接池, 各请求从池中取得独立连接
type TileStore struct {
	path    string
	retries int
	db      *sql.DB

	mu     sync.Mutex
	closed bool
}

// OpenTileStore 以只读方式打开 mbtiles
func OpenTileStore(path string, opts StoreOptions) (*TileStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(ErrOpen, "%s: %v", path, err)
	}
	if opts.Driver == "" {
		opts.Driver = "sqlite3"
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 1
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_query_only=on", uriEscaper.Replace(path))
	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(ErrOpen, "%s: %v", path, err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(ErrOpen, "%s: %v", path, err)
	}

	// 校验 tiles 表存在
	stmt, err := db.Prepare(tileQuery)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(ErrOpen, "%s: %v", path, err)
	}
	stmt.Close()

	return &TileStore{
		path:    path,
		retries: opts.SchemaRetries,
		db:      db,
	}, nil
}

// Path 文件路径
func (s *TileStore) Path() string {
	return s.path
}

// ReadFormat 读取 metadata 中的 format
func (s *TileStore) ReadFormat(ctx context.Context) (string, error) {
	var format string
	err := s.db.QueryRowContext(ctx, formatQuery).Scan(&format)
	if err == sql.ErrNoRows {
		return "", errors.Wrap(ErrMetadataMissing, s.path)
	}
	if err != nil {
		return "", errors.Wrapf(ErrMetadataMissing, "%s: %v", s.path, err)
	}
	return format, nil
}

// FetchTile 读取瓦片, t.Y 为 TMS 行号. 无数据时返回 found=false 且 err 为 nil.
// 每次尝试都重新编译查询, 结构变更后的重试因此拿到新的语句
func (s *TileStore) FetchTile(ctx context.Context, t maptile.Tile) (data []byte, found bool, err error) {
	err = withSchemaRetry(s.retries, func() error {
		err := s.db.QueryRowContext(ctx, tileQuery, int64(t.Z), int64(t.X), int64(t.Y)).Scan(&data)
		if err == sql.ErrNoRows {
			found = false
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return nil, false, errors.Wrapf(err, "read %d/%d/%d from %s", t.Z, t.X, t.Y, s.path)
	}
	return data, found, nil
}

// Count 瓦片总数
func (s *TileStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&n); err != nil {
		return 0, errors.Wrap(err, s.path)
	}
	return n, nil
}

// Walk 遍历全部瓦片坐标 (TMS), fn 返回错误时中止
func (s *TileStore) Walk(ctx context.Context, fn func(maptile.Tile) error) error {
	rows, err := s.db.QueryContext(ctx, walkQuery)
	if err != nil {
		return errors.Wrap(err, s.path)
	}
	defer rows.Close()

	for rows.Next() {
		var z, x, y uint32
		if err := rows.Scan(&z, &x, &y); err != nil {
			return errors.Wrap(err, s.path)
		}
		if err := fn(maptile.New(x, y, maptile.Zoom(z))); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close 关闭连接池, 可重复调用
func (s *TileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// withSchemaRetry 遇到 SQLITE_SCHEMA 时重试, 最多 retries 次
func withSchemaRetry(retries int, fn func() error) error {
	var err error
	for i := 0; i <= retries; i++ {
		err = fn()
		if !isSchemaChanged(err) {
			return err
		}
		log.Debugf("mbtiles schema changed, retry %d/%d", i+1, retries)
	}
	return err
}

func isSchemaChanged(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrSchema
	}
	return false
}
