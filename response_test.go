package main

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComposeVector(t *testing.T) {
	c := &Composer{}
	ts := &Tileset{Name: "vt", Format: "pbf", IsVector: true, Opened: true}

	res := c.Compose(ts, nil, false)
	require.Equal(t, OutcomeSuccess, res.Outcome)
	require.Equal(t, "application/x-protobuf", res.ContentType)
	require.Equal(t, "gzip", res.ContentEncoding)
	require.Equal(t, EmptyTile[:], res.Body)
	require.Equal(t, 36, res.ContentLength())

	stored := []byte{0x1f, 0x8b, 0x08, 0x00, 0x01, 0x02}
	res = c.Compose(ts, stored, true)
	require.Equal(t, OutcomeSuccess, res.Outcome)
	require.Equal(t, "application/x-protobuf", res.ContentType)
	require.Equal(t, "gzip", res.ContentEncoding)
	require.Equal(t, stored, res.Body)
}

func TestComposeRaster(t *testing.T) {
	c := &Composer{}

	for format, mime := range map[string]string{
		"png":  "image/png",
		"jpg":  "image/jpeg",
		"webp": "image/webp",
		"tif":  "tif",
	} {
		ts := &Tileset{Name: "r", Format: format, Opened: true}

		res := c.Compose(ts, nil, false)
		require.Equal(t, OutcomeNotFound, res.Outcome)
		require.Empty(t, res.Body)
		require.Empty(t, res.ContentType)

		res = c.Compose(ts, []byte("image"), true)
		require.Equal(t, OutcomeSuccess, res.Outcome)
		require.Equal(t, mime, res.ContentType)
		require.Empty(t, res.ContentEncoding)
		require.Equal(t, []byte("image"), res.Body)
	}
}

func TestComposeEnsureGzip(t *testing.T) {
	ts := &Tileset{Name: "vt", Format: "pbf", IsVector: true, Opened: true}
	plain := []byte("\x1a\x00plain protobuf")

	// 默认原样返回
	res := (&Composer{}).Compose(ts, plain, true)
	require.Equal(t, plain, res.Body)

	res = (&Composer{EnsureGzip: true}).Compose(ts, plain, true)
	require.Equal(t, "gzip", res.ContentEncoding)
	require.True(t, isGzip(res.Body))
	zr, err := gzip.NewReader(bytes.NewReader(res.Body))
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, plain, got)

	// 已压缩的不重复压缩
	res = (&Composer{EnsureGzip: true}).Compose(ts, EmptyTile[:], true)
	require.Equal(t, EmptyTile[:], res.Body)
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "declined", OutcomeDeclined.String())
	require.Equal(t, "server_error", OutcomeServerError.String())
	require.Equal(t, "not_found", OutcomeNotFound.String())
	require.Equal(t, "success", OutcomeSuccess.String())
}
