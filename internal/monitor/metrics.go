package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	resultOK      = "ok"
	resultSkipped = "skipped"
	resultError   = "error"
)

// Metrics counts what the monitor did during a session
type Metrics struct {
	Ticks       *prometheus.CounterVec
	Exports     *prometheus.CounterVec
	ConfigSaves *prometheus.CounterVec
	Visible     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lightmon",
			Name:      "ticks_total",
			Help:      "Refresh cycles by result.",
		}, []string{"result"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lightmon",
			Name:      "exports_total",
			Help:      "CSV exports by result.",
		}, []string{"result"}),
		ConfigSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lightmon",
			Name:      "config_saves_total",
			Help:      "Settings writes by result.",
		}, []string{"result"}),
		Visible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lightmon",
			Name:      "visible_processes",
			Help:      "Processes left after filtering.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Ticks, m.Exports, m.ConfigSaves, m.Visible)
	}
	return m
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

// LogSummary writes every gathered sample as one log line
func LogSummary(logger *zap.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logger.Warn("failed to gather session metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range metric.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			switch {
			case metric.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", metric.GetCounter().GetValue()))
			case metric.GetGauge() != nil:
				fields = append(fields, zap.Float64("value", metric.GetGauge().GetValue()))
			}
			logger.Info("session total", fields...)
		}
	}
}
