package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lightmon/internal/conf"
	"lightmon/internal/export"
	"lightmon/internal/monitor"
	"lightmon/internal/system"
	"lightmon/internal/ui"
)

const defaultLogFile = "lightmon.log"

// newLogger writes JSON logs to a file so the terminal stays free for the UI
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	path := os.Getenv("LIGHTMON_LOG_FILE")
	if path == "" {
		path = defaultLogFile
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl := os.Getenv("LIGHTMON_LOG_LEVEL"); lvl != "" {
		l, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("invalid LIGHTMON_LOG_LEVEL %q: %w", lvl, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(l)
	}
	return cfg.Build()
}

func hostLine(ctx context.Context, logger *zap.Logger) string {
	info, err := system.GetHostInfo(ctx)
	if err != nil {
		logger.Debug("host info unavailable", zap.Error(err))
		return ""
	}
	return fmt.Sprintf("%s (%s %s)", info.Host, info.OS, info.Kernel)
}

func run() error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	m := monitor.New(monitor.Options{
		Source:     system.NewSampler(logger.Named("sampler")),
		Settings:   conf.NewStore(""),
		Export:     export.WriteCSV,
		ExportPath: export.DefaultFile,
		Logger:     logger.Named("monitor"),
		Registerer: reg,
	})

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		monitor.NewEngine(m, logger.Named("engine")).Run(ctx)
	}()

	logger.Info("starting", zap.Duration("interval", m.Interval()))
	p := tea.NewProgram(ui.NewModel(ctx, m, hostLine(ctx, logger)), tea.WithAltScreen())
	_, err = p.Run()

	cancel()
	<-engineDone
	monitor.LogSummary(logger, reg)

	if err != nil {
		logger.Error("ui stopped", zap.Error(err))
		return fmt.Errorf("failed to run ui: %w", err)
	}
	logger.Info("stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
