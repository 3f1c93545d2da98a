package main

import (
	"bytes"

	"github.com/klauspost/compress/gzip"
)

// Outcome 请求处理结果
type Outcome int

const (
	// OutcomeDeclined 不处理, 交给其他 handler
	OutcomeDeclined Outcome = iota
	OutcomeServerError
	OutcomeNotFound
	OutcomeSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDeclined:
		return "declined"
	case OutcomeServerError:
		return "server_error"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeSuccess:
		return "success"
	}
	return "unknown"
}

// Response 瓦片响应
type Response struct {
	Outcome         Outcome
	ContentType     string
	ContentEncoding string
	Body            []byte
}

// ContentLength 响应体长度
func (r Response) ContentLength() int {
	return len(r.Body)
}

// Composer 根据瓦片类型与读取结果生成响应
type Composer struct {
	// EnsureGzip 矢量瓦片未压缩时先 gzip
	EnsureGzip bool
}

// Compose 生成响应, found=false 表示该坐标无数据
func (c *Composer) Compose(ts *Tileset, data []byte, found bool) Response {
	if ts.IsVector {
		body := EmptyTile[:]
		if found {
			body = data
			if c.EnsureGzip && !isGzip(body) {
				if gz, err := gzipBytes(body); err == nil {
					body = gz
				} else {
					log.Warnf("gzip vector tile of %s error, details: %s", ts.Name, err)
				}
			}
		}
		return Response{
			Outcome:         OutcomeSuccess,
			ContentType:     MimePBF,
			ContentEncoding: GZIP,
			Body:            body,
		}
	}

	if !found {
		return Response{Outcome: OutcomeNotFound}
	}
	return Response{
		Outcome:     OutcomeSuccess,
		ContentType: ContentType(ts.Format),
		Body:        data,
	}
}

func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
