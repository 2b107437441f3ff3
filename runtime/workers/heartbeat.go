package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"taskline/observability"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker samples the gateway's own process metrics (RSS, CPU)
// every 5 seconds and folds them into the monitoring snapshot served by
// the debug page.
type HeartbeatWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
}

func NewHeartbeatWorker(log *slog.Logger, monitoring *observability.MonitoringManager) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitoring: monitoring}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting gateway heartbeat worker")
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.monitoring.MergeProcessStats(rss, cpu)
		}
	}
}

func selfStats(p *process.Process) (rss uint64, cpu float64, err error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
