package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var SafeExitInst *SafeExit

func InitSafeExit() {
	SafeExitInst = new(SafeExit)
	go SafeExitInst.ListenSignal()
}

// SafeExit 退出时按注册的逆序执行清理函数
type SafeExit struct {
	funcs []func()
	mu    sync.Mutex
	done  bool
}

func (s *SafeExit) Register(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.funcs = append(s.funcs, f)
}

// Run 执行清理函数, 只执行一次
func (s *SafeExit) Run() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}
	s.done = true
	for i := len(s.funcs) - 1; i >= 0; i-- {
		s.funcs[i]()
	}
}

func (s *SafeExit) exit() {
	s.Run()
	os.Exit(0)
}

func (s *SafeExit) ListenSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	for sig := range sigs {
		switch sig {
		case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
			log.Infof("收到系统信号 %s, 正在停止服务, 请稍后", sig)
			s.exit()
		}
	}
}
