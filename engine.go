package main

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// Engine 瓦片解析: 路径 -> 瓦片集 -> TMS 翻转 -> 读取 -> 响应
type Engine struct {
	registry *Registry
	composer *Composer
	cache    TileCache
	metrics  *Metrics
}

// NewEngine 创建解析引擎, cache 与 metrics 可为 nil
func NewEngine(registry *Registry, composer *Composer, cache TileCache, metrics *Metrics) *Engine {
	if composer == nil {
		composer = &Composer{}
	}
	if cache == nil {
		cache = noopCache{}
	}
	return &Engine{
		registry: registry,
		composer: composer,
		cache:    cache,
		metrics:  metrics,
	}
}

// Resolve 处理单个请求路径, 无内部状态, 可并发调用
func (e *Engine) Resolve(ctx context.Context, path string) Response {
	req, ok := ResolvePath(path)
	if !ok {
		return Response{Outcome: OutcomeDeclined}
	}

	ts, ok := e.registry.Lookup(req.Name)
	if !ok {
		log.Debugf("couldn't find tileset %s", req.Name)
		e.metrics.observeOutcome("", OutcomeDeclined)
		return Response{Outcome: OutcomeDeclined}
	}

	res := e.resolveTile(ctx, ts, req)
	e.metrics.observeOutcome(ts.Name, res.Outcome)
	return res
}

func (e *Engine) resolveTile(ctx context.Context, ts *Tileset, req TileRequest) Response {
	store := ts.Store()
	if !ts.Opened || store == nil {
		log.Errorf("mbtiles file %s isn't open", ts.Name)
		return Response{Outcome: OutcomeServerError}
	}

	t := FlipY(req.Tile)

	data, found, cached := e.cache.Get(ts.Name, t)
	if !cached {
		start := time.Now()
		var err error
		data, found, err = store.FetchTile(ctx, t)
		e.metrics.observeRead(ts.Name, time.Since(start).Seconds())
		if err != nil {
			log.Errorf("sqlite error while reading %d/%d/%d from %s, details: %s", t.Z, t.X, t.Y, ts.Name, err)
			return Response{Outcome: OutcomeDeclined}
		}
		e.cache.Add(ts.Name, t, data, found)
	}

	res := e.composer.Compose(ts, data, found)
	switch {
	case !found && ts.IsVector:
		log.Debugf("Tile %d/%d/%d of %s not found", t.Z, t.X, t.Y, ts.Name)
	case found && ts.IsVector:
		log.Debugf("Writing vector tile (size:%d) : %d/%d/%d", len(data), t.Z, t.X, t.Y)
	case found:
		log.Debugf("Writing raster tile (size:%d) : %d/%d/%d", len(data), t.Z, t.X, t.Y)
	}
	return res
}

// Handler 适配 net/http. enabled=false 或不处理的请求交给 next
func (e *Engine) Handler(enabled bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !enabled {
			next.ServeHTTP(w, r)
			return
		}

		res := e.Resolve(r.Context(), r.URL.Path)
		switch res.Outcome {
		case OutcomeDeclined:
			next.ServeHTTP(w, r)
		case OutcomeServerError:
			w.WriteHeader(http.StatusInternalServerError)
		case OutcomeNotFound:
			w.WriteHeader(http.StatusNotFound)
		case OutcomeSuccess:
			h := w.Header()
			h.Set("Content-Type", res.ContentType)
			if res.ContentEncoding != "" {
				h.Set("Content-Encoding", res.ContentEncoding)
			}
			h.Set("Content-Length", strconv.Itoa(res.ContentLength()))
			w.WriteHeader(http.StatusOK)
			if r.Method != http.MethodHead {
				w.Write(res.Body)
			}
		}
	})
}
