package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/teris-io/shortid"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// CheckReport 单个瓦片集的校验结果
type CheckReport struct {
	Name    string
	Total   int64
	Read    int64
	Failed  int64
	Empty   int64
	NotGzip int64
}

// CheckTask 逐个读取 mbtiles 中的全部瓦片
type CheckTask struct {
	ID          string
	registry    *Registry
	driver      string
	workerCount int
	showBar     bool
	tileWG      sync.WaitGroup
	abort       chan struct{}
	workers     chan struct{}
}

// NewCheckTask 创建校验任务
func NewCheckTask(registry *Registry, driver string, workers int, showBar bool) *CheckTask {
	id, _ := shortid.Generate()
	if workers <= 0 {
		workers = 1
	}
	return &CheckTask{
		ID:          id,
		registry:    registry,
		driver:      driver,
		workerCount: workers,
		showBar:     showBar,
		abort:       make(chan struct{}),
		workers:     make(chan struct{}, workers),
	}
}

// AbortFun 结束任务
func (task *CheckTask) AbortFun() {
	close(task.abort)
}

func (task *CheckTask) aborted() bool {
	select {
	case <-task.abort:
		return true
	default:
		return false
	}
}

// Run 校验全部已打开的瓦片集
func (task *CheckTask) Run(ctx context.Context) []CheckReport {
	start := time.Now()
	var reports []CheckReport
	for _, ts := range task.registry.Tilesets() {
		if task.aborted() {
			log.Infof("Task %s got canceled.", task.ID)
			break
		}
		if !ts.Opened {
			log.Warnf("Task %s skip unopened tileset %s", task.ID, ts.Name)
			continue
		}
		reports = append(reports, task.checkTileset(ctx, ts))
	}
	log.Infof("Task %s finished in %.3fs", task.ID, time.Since(start).Seconds())
	return reports
}

func (task *CheckTask) checkTileset(ctx context.Context, ts *Tileset) CheckReport {
	rep := CheckReport{Name: ts.Name}
	store := ts.Store()

	total, err := store.Count(ctx)
	if err != nil {
		log.Errorf("count tiles of %s error, details: %s", ts.Name, err)
		return rep
	}
	rep.Total = total
	log.Infof("Task %s tileset: %s (%s), tiles: %d", task.ID, ts.Name, store.Path(), total)

	// 遍历使用独立连接, 读取走瓦片集自己的连接池
	walker, err := OpenTileStore(store.Path(), StoreOptions{Driver: task.driver, MaxOpenConns: 1})
	if err != nil {
		log.Errorf("open walker of %s error, details: %s", ts.Name, err)
		return rep
	}
	defer walker.Close()

	var bar *pb.ProgressBar
	if task.showBar {
		bar = pb.New64(total).Prefix(fmt.Sprintf("%s : ", ts.Name)).Postfix("\n")
		bar.SetRefreshRate(time.Second)
		bar.Start()
	}

	var read, failed, empty, notGzip int64
	errAbort := fmt.Errorf("task %s aborted", task.ID)
	err = walker.Walk(ctx, func(t maptile.Tile) error {
		select {
		case task.workers <- struct{}{}:
		case <-task.abort:
			return errAbort
		}
		if bar != nil {
			bar.Increment()
		}
		task.tileWG.Add(1)
		go func() {
			defer func() {
				task.tileWG.Done()
				<-task.workers
			}()
			data, found, err := store.FetchTile(ctx, t)
			if err != nil || !found {
				log.Debugf("read %s %d/%d/%d error ~ %v", ts.Name, t.Z, t.X, t.Y, err)
				atomic.AddInt64(&failed, 1)
				return
			}
			atomic.AddInt64(&read, 1)
			if len(data) == 0 {
				atomic.AddInt64(&empty, 1)
				return
			}
			if ts.IsVector && !isGzip(data) {
				atomic.AddInt64(&notGzip, 1)
			}
		}()
		return nil
	})
	// 等待该瓦片集结束
	task.tileWG.Wait()
	if err != nil {
		log.Errorf("walk tiles of %s error, details: %s", ts.Name, err)
	}

	rep.Read, rep.Failed, rep.Empty, rep.NotGzip = read, failed, empty, notGzip
	if bar != nil {
		bar.FinishPrint(fmt.Sprintf("Task %s tileset %s finished ~", task.ID, ts.Name))
	}
	log.Infof("tileset %s: total %d, read %d, failed %d, empty %d, not gzip %d",
		rep.Name, rep.Total, rep.Read, rep.Failed, rep.Empty, rep.NotGzip)
	return rep
}
