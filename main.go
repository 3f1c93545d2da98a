package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// 初始化控制台
	InitFlag()
	// 开始安全退出任务
	InitSafeExit()
	// 初始化配置
	InitConf(configPath)
	// 初始化日志
	InitLog()
	// 打开瓦片集
	registry := InitRegistry()
	SafeExitInst.Register(func() { registry.CloseAll() })

	if checkMode {
		task := NewCheckTask(registry, conf.Storage.Driver, conf.Check.Workers, conf.Output.OutputTerminal)
		SafeExitInst.Register(task.AbortFun)
		task.Run(context.Background())
		SafeExitInst.Run()
		return
	}

	// 开始服务
	if err := Serve(registry); err != nil {
		log.Errorf("server failed, details: %s", err)
		SafeExitInst.Run()
		os.Exit(1)
	}
	// 等待信号协程完成清理
	SafeExitInst.Run()
}

// InitRegistry 按配置注册并打开瓦片集
func InitRegistry() *Registry {
	registry := NewRegistry(conf.Tiles.Capacity)
	for _, tc := range conf.Tilesets {
		err := registry.Register(tc.Name, tc.Path)
		switch {
		case err == nil:
		case errors.Is(err, ErrTilesetExists):
			log.Warnf("tileset %s already registered, keep the first one", tc.Name)
		default:
			log.Errorf("register tileset %s error, details: %s", tc.Name, err)
		}
	}
	registry.OpenAll(context.Background(), conf.StoreOptions())
	return registry
}

// Serve 启动 HTTP 服务, 阻塞直到服务关闭
func Serve(registry *Registry) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cache, err := NewTileCache(conf.Tiles.CacheSize)
	if err != nil {
		return err
	}
	engine := NewEngine(registry, &Composer{EnsureGzip: conf.Tiles.EnsureGzip}, cache, NewMetrics(reg))
	srv := NewServer(conf, engine, reg)
	SafeExitInst.Register(func() {
		srv.Shutdown(time.Duration(conf.Server.ShutdownTimeout) * time.Second)
	})
	return srv.ListenAndServe()
}
