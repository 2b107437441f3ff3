package observability

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// MonitoringStats aggregates the gateway metrics for the debug page.
type MonitoringStats struct {
	// --- GATEWAY METRICS ---
	ConnectionsOpen     int64  `json:"connections_open"`
	ConnectionsOpened   uint64 `json:"connections_opened"`
	AuthFailures        uint64 `json:"auth_failures"`
	RoomJoins           uint64 `json:"room_joins"`
	NotificationsFanned uint64 `json:"notifications_fanned"`
	Deliveries          uint64 `json:"deliveries"`
	DeliveriesDropped   uint64 `json:"deliveries_dropped"`

	// --- PROCESS METRICS ---
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	RssMb      uint64  `json:"rss_mb"`
	CPUPercent float64 `json:"cpu_percent"`
}

// MonitoringManager collects gateway telemetry in real time. Counters are
// atomic; the snapshot is refreshed periodically by Listen.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats MonitoringStats

	connectionsOpen     int64
	connectionsOpened   uint64
	authFailures        uint64
	roomJoins           uint64
	notificationsFanned uint64
	deliveries          uint64
	deliveriesDropped   uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrConnections() {
	atomic.AddInt64(&mm.connectionsOpen, 1)
	atomic.AddUint64(&mm.connectionsOpened, 1)
}

func (mm *MonitoringManager) DecrConnections() {
	atomic.AddInt64(&mm.connectionsOpen, -1)
}

func (mm *MonitoringManager) IncrAuthFailures() {
	atomic.AddUint64(&mm.authFailures, 1)
}

func (mm *MonitoringManager) IncrRoomJoins() {
	atomic.AddUint64(&mm.roomJoins, 1)
}

func (mm *MonitoringManager) IncrNotificationsFanned() {
	atomic.AddUint64(&mm.notificationsFanned, 1)
}

func (mm *MonitoringManager) IncrDeliveries() {
	atomic.AddUint64(&mm.deliveries, 1)
}

func (mm *MonitoringManager) IncrDeliveriesDropped() {
	atomic.AddUint64(&mm.deliveriesDropped, 1)
}

// Listen refreshes the stats snapshot every second until ctx is done.
func (mm *MonitoringManager) Listen(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mm.log.Info("Monitoring manager stopped")
			return
		case <-ticker.C:
			mm.updateStats()
		}
	}
}

func (mm *MonitoringManager) updateStats() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.latestStats.ConnectionsOpen = atomic.LoadInt64(&mm.connectionsOpen)
	mm.latestStats.ConnectionsOpened = atomic.LoadUint64(&mm.connectionsOpened)
	mm.latestStats.AuthFailures = atomic.LoadUint64(&mm.authFailures)
	mm.latestStats.RoomJoins = atomic.LoadUint64(&mm.roomJoins)
	mm.latestStats.NotificationsFanned = atomic.LoadUint64(&mm.notificationsFanned)
	mm.latestStats.Deliveries = atomic.LoadUint64(&mm.deliveries)
	mm.latestStats.DeliveriesDropped = atomic.LoadUint64(&mm.deliveriesDropped)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC
}

// MergeProcessStats folds externally sampled process metrics (RSS, CPU)
// into the snapshot. Called by the heartbeat worker.
func (mm *MonitoringManager) MergeProcessStats(rssBytes uint64, cpuPercent float64) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.RssMb = rssBytes / 1024 / 1024
	mm.latestStats.CPUPercent = cpuPercent
}

func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}
