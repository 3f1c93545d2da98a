package main

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 瓦片服务指标
type Metrics struct {
	requests *prometheus.CounterVec
	reads    *prometheus.HistogramVec
}

// NewMetrics 创建并注册指标, reg 为 nil 时只创建不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mbtiler",
			Name:      "tile_requests_total",
			Help:      "Tile requests by tileset and outcome.",
		}, []string{"tileset", "outcome"}),
		reads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mbtiler",
			Name:      "tile_read_seconds",
			Help:      "Time spent reading tiles from mbtiles.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"tileset"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.reads)
	}
	return m
}

func (m *Metrics) observeOutcome(tileset string, o Outcome) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(tileset, o.String()).Inc()
}

func (m *Metrics) observeRead(tileset string, seconds float64) {
	if m == nil {
		return
	}
	m.reads.WithLabelValues(tileset).Observe(seconds)
}
