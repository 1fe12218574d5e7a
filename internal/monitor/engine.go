package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Engine drives Monitor.Tick on the configured interval
type Engine struct {
	monitor *Monitor
	logger  *zap.Logger
}

func NewEngine(m *Monitor, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{monitor: m, logger: logger}
}

// Run ticks once immediately and then on every interval until ctx is done.
// Interval changes take effect on the next tick. A slow refresh delays the
// following tick; ticker ticks that pile up meanwhile are dropped.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.monitor.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("update loop started", zap.Duration("interval", interval))
	e.monitor.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("update loop stopped")
			return ctx.Err()

		case <-ticker.C:
			e.monitor.Tick(ctx)

		case d := <-e.monitor.IntervalChanges():
			if d <= 0 || d == interval {
				continue
			}
			interval = d
			ticker.Reset(interval)
			e.logger.Info("refresh interval changed", zap.Duration("interval", interval))
		}
	}
}
