package database

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/pkg/metrics"

	"go.uber.org/zap"
)

const defaultMonitorInterval = 15 * time.Second

// PoolSnapshot 连接池快照
type PoolSnapshot struct {
	Timestamp       time.Time     `json:"timestamp"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	WaitCount       int64         `json:"wait_count"`
	WaitDuration    time.Duration `json:"wait_duration"`
}

// statsSource 是 *sql.DB 用到的子集
type statsSource interface {
	Stats() sql.DBStats
}

// PoolMonitor 定期采样连接池并上报到 Prometheus
type PoolMonitor struct {
	db       statsSource
	interval time.Duration
	log      *zap.Logger

	mu   sync.Mutex
	last PoolSnapshot
}

// NewPoolMonitor 创建连接池监控器
func NewPoolMonitor(db *sql.DB, interval time.Duration, log *zap.Logger) *PoolMonitor {
	return newPoolMonitor(db, interval, log)
}

func newPoolMonitor(db statsSource, interval time.Duration, log *zap.Logger) *PoolMonitor {
	if interval <= 0 {
		interval = defaultMonitorInterval
	}
	return &PoolMonitor{db: db, interval: interval, log: log}
}

// Sample 采集一次，连接等待次数增长时告警
func (pm *PoolMonitor) Sample() PoolSnapshot {
	s := pm.db.Stats()
	snap := PoolSnapshot{
		Timestamp:       time.Now(),
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
		WaitCount:       s.WaitCount,
		WaitDuration:    s.WaitDuration,
	}
	metrics.GetGlobalCollector().UpdateDBConnections(snap.InUse, snap.Idle)

	pm.mu.Lock()
	prev := pm.last
	pm.last = snap
	pm.mu.Unlock()

	if !prev.Timestamp.IsZero() && snap.WaitCount > prev.WaitCount {
		pm.log.Warn("database connection pool saturated",
			zap.Int64("waits", snap.WaitCount-prev.WaitCount),
			zap.Duration("wait_duration", snap.WaitDuration-prev.WaitDuration),
			zap.Int("in_use", snap.InUse),
		)
	}
	return snap
}

// Last 最近一次快照
func (pm *PoolMonitor) Last() PoolSnapshot {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.last
}

// Run 阻塞直到 ctx 结束
func (pm *PoolMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(pm.interval)
	defer ticker.Stop()

	pm.Sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.Sample()
		}
	}
}
