package workers

import (
	"context"
	"direct-chat/domain/event"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// OnlineCounter is satisfied by the session registry.
type OnlineCounter interface {
	Len() int
}

// HeartbeatWorker periodically logs how many users are online, the
// technical event totals and the resource usage of the relay process.
type HeartbeatWorker struct {
	log      *slog.Logger
	sessions OnlineCounter
	counter  *event.Counter
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, sessions OnlineCounter, counter *event.Counter, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, sessions: sessions, counter: counter, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.beat(p)
		}
	}
}

func (w *HeartbeatWorker) beat(p *process.Process) {
	attrs := []any{"online", w.sessions.Len()}
	if w.counter != nil {
		counts := w.counter.Snapshot()
		attrs = append(attrs,
			"messages_sent", counts[event.MessageSentType],
			"messages_delivered", counts[event.DeliveredKey],
			"censorship_hits", counts[event.CensorshipHitType],
			"pushes_dropped", counts[event.PushDroppedType],
			"worker_restarts", counts[event.WorkerRestartedType],
		)
	}

	rss, cpu, err := selfStats(p)
	if err != nil {
		w.log.Warn("Failed to collect self stats", "error", err)
	} else {
		attrs = append(attrs, "rss_bytes", rss, "cpu_percent", cpu)
	}
	w.log.Info("Heartbeat", attrs...)
}

func selfStats(p *process.Process) (uint64, float64, error) {
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
