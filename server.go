package main

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/teris-io/shortid"
)

// Server 瓦片 HTTP 服务
type Server struct {
	httpSrv *http.Server
}

// NewServer 按配置组装路由
func NewServer(c *Conf, engine *Engine, gatherer prometheus.Gatherer) *Server {
	router := NewRouter(c, engine, gatherer)

	var handler http.Handler = router
	if len(c.Server.CorsOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(c.Server.CorsOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
		)(handler)
	}
	handler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handler)
	handler = requestLogging(handler)

	return &Server{
		httpSrv: &http.Server{
			Addr:         c.Server.Addr,
			Handler:      handler,
			ReadTimeout:  time.Duration(c.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(c.Server.WriteTimeout) * time.Second,
		},
	}
}

// NewRouter 健康检查, 指标, 以及各路由范围的瓦片处理
func NewRouter(c *Conf, engine *Engine, gatherer prometheus.Gatherer) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if c.Metrics.Enabled && gatherer != nil {
		router.Handle(c.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// 长前缀优先匹配
	scopes := make([]ScopeConf, len(c.Scopes))
	copy(scopes, c.Scopes)
	sort.SliceStable(scopes, func(i, j int) bool {
		return len(scopePrefix(scopes[i].Prefix)) > len(scopePrefix(scopes[j].Prefix))
	})
	for _, sc := range scopes {
		prefix := scopePrefix(sc.Prefix)
		var h http.Handler = engine.Handler(sc.Enabled, http.NotFoundHandler())
		if prefix != "" {
			h = http.StripPrefix(prefix, h)
			router.PathPrefix(prefix + "/").Handler(h).Methods(http.MethodGet, http.MethodHead)
			continue
		}
		router.PathPrefix("/").Handler(h).Methods(http.MethodGet, http.MethodHead)
	}
	return router
}

// scopePrefix 去掉末尾的 /, 根路径返回空串
func scopePrefix(p string) string {
	p = strings.TrimRight(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// ListenAndServe 阻塞直到服务关闭
func (s *Server) ListenAndServe() error {
	log.Infof("mbtiler listening on %s", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 停止接收请求并等待进行中的请求完成
func (s *Server) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		log.Errorf("server forced to shutdown, details: %s", err)
	}
	log.Infof("server stopped")
}

type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id, _ := shortid.Generate()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Debugf("request %s %s %s %d %dB %dms", id, r.Method, r.URL.Path,
			wrapped.statusCode, wrapped.bytesWritten, time.Since(start).Milliseconds())
	})
}
