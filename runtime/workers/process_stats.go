package workers

import (
	"chat-relay/observability"
	"context"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessStatsWorker samples memory and CPU of the relay process
// and publishes them as gauges.
type ProcessStatsWorker struct {
	log            *slog.Logger
	process        *process.Process
	metrics        *observability.Metrics
	metricInterval time.Duration
	online         func() int
}

func NewProcessStatsWorker(log *slog.Logger, p *process.Process, metrics *observability.Metrics,
	metricInterval time.Duration, online func() int) *ProcessStatsWorker {
	return &ProcessStatsWorker{log: log, process: p, metrics: metrics, metricInterval: metricInterval, online: online}
}

func (w *ProcessStatsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping process stats")
			return nil
		case <-ticker.C:
			stats, err := observability.ReadProcessStats(w.process)
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}
			w.metrics.SetProcessStats(stats)
			if w.online != nil {
				w.metrics.SetOnline(w.online())
			}
		}
	}
}
