// Package monitor owns the application state: the latest snapshot, the
// current screen and list parameters, settings and transient messages.
// All mutation goes through Monitor methods, which are safe to call from
// the update loop and the presentation concurrently.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"lightmon/internal/conf"
	"lightmon/internal/export"
	"lightmon/internal/system"
)

var (
	ErrNoSelection      = errors.New("no process selected")
	ErrExportInProgress = errors.New("export already running")
)

// Settings loads and persists the user configuration
type Settings interface {
	Load() conf.Config
	Write(conf.Config) error
}

// ExportFunc writes procs to path
type ExportFunc func(path string, procs []system.Process) error

type Options struct {
	Source   system.Source
	Settings Settings

	// Export defaults to export.WriteCSV, ExportPath to export.DefaultFile
	Export     ExportFunc
	ExportPath string

	Logger     *zap.Logger
	Registerer prometheus.Registerer

	// Clock and AfterFunc default to time.Now and time.AfterFunc
	Clock     func() time.Time
	AfterFunc func(d time.Duration, f func())
}

type Monitor struct {
	source     system.Source
	settings   Settings
	export     ExportFunc
	exportPath string
	logger     *zap.Logger
	metrics    *Metrics
	clock      func() time.Time
	afterFunc  func(d time.Duration, f func())

	// one refresh at a time
	refresh *semaphore.Weighted

	mu            sync.Mutex
	snap          system.Snapshot
	visible       []system.Process
	screen        Screen
	sortKey       SortKey
	filterText    string
	selectedPID   uint32
	hasSelection  bool
	darkMode      bool
	interval      uint32
	intervalInput string
	toast         *Toast
	exporting     bool

	pubMu     sync.Mutex
	updates   chan State
	intervals chan time.Duration
}

// New builds a Monitor and loads the persisted settings
func New(opts Options) *Monitor {
	m := &Monitor{
		source:     opts.Source,
		settings:   opts.Settings,
		export:     opts.Export,
		exportPath: opts.ExportPath,
		logger:     opts.Logger,
		metrics:    NewMetrics(opts.Registerer),
		clock:      opts.Clock,
		afterFunc:  opts.AfterFunc,
		refresh:    semaphore.NewWeighted(1),
		visible:    []system.Process{},
		updates:    make(chan State, 1),
		intervals:  make(chan time.Duration, 1),
	}
	if m.export == nil {
		m.export = export.WriteCSV
	}
	if m.exportPath == "" {
		m.exportPath = export.DefaultFile
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.afterFunc == nil {
		m.afterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}

	cfg := conf.Default()
	if m.settings != nil {
		cfg = m.settings.Load()
	}
	m.darkMode = cfg.DarkMode
	m.interval = conf.ClampInterval(uint64(cfg.RefreshIntervalSeconds))
	m.intervalInput = strconv.FormatUint(uint64(m.interval), 10)
	return m
}

// Updates delivers the latest State after every change. Only the newest
// unread State is kept.
func (m *Monitor) Updates() <-chan State {
	return m.updates
}

// IntervalChanges delivers the refresh interval whenever it changes
func (m *Monitor) IntervalChanges() <-chan time.Duration {
	return m.intervals
}

// Interval is the current refresh interval
func (m *Monitor) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(m.interval) * time.Second
}

// Metrics returns the session counters
func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// State returns a copy of the current state. An expired toast is dropped.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Monitor) stateLocked() State {
	st := State{
		Screen:          m.screen,
		SortKey:         m.sortKey,
		FilterText:      m.filterText,
		SelectedPID:     m.selectedPID,
		HasSelection:    m.hasSelection,
		DarkMode:        m.darkMode,
		RefreshInterval: m.interval,
		IntervalInput:   m.intervalInput,
		CPUPercent:      m.snap.CPUPercent,
		MemoryUsed:      m.snap.MemoryUsed,
		MemoryTotal:     m.snap.MemoryTotal,
		DiskUsed:        m.snap.DiskUsed,
		DiskTotal:       m.snap.DiskTotal,
		Processes:       m.visible,
		TotalProcesses:  len(m.snap.Processes),
		Exporting:       m.exporting,
		UpdatedAt:       m.snap.TakenAt,
	}
	if m.toast != nil && m.clock().Before(m.toast.Expires) {
		t := *m.toast
		st.Toast = &t
	}
	return st
}

func (m *Monitor) publish() {
	m.pubMu.Lock()
	defer m.pubMu.Unlock()

	st := m.State()
	select {
	case <-m.updates:
	default:
	}
	select {
	case m.updates <- st:
	default:
	}
}

// Tick pulls a fresh snapshot and recomputes the view. It returns false
// without doing anything when another refresh is still running.
func (m *Monitor) Tick(ctx context.Context) bool {
	if !m.refresh.TryAcquire(1) {
		m.metrics.Ticks.WithLabelValues(resultSkipped).Inc()
		m.logger.Debug("refresh still running, tick skipped")
		return false
	}
	defer m.refresh.Release(1)

	snap := m.source.Snapshot(ctx).Clamp()
	if snap.Processes == nil {
		snap.Processes = []system.Process{}
	}

	m.mu.Lock()
	m.snap = snap
	m.recomputeLocked()
	m.mu.Unlock()

	m.metrics.Ticks.WithLabelValues(resultOK).Inc()
	m.logger.Info("refreshed",
		zap.Float64("cpu_percent", snap.CPUPercent),
		zap.Uint64("memory_used", snap.MemoryUsed),
		zap.Uint64("memory_total", snap.MemoryTotal),
		zap.Int("processes", len(snap.Processes)),
	)
	m.publish()
	return true
}

// Refresh is a user-requested Tick
func (m *Monitor) Refresh(ctx context.Context) bool {
	return m.Tick(ctx)
}

func (m *Monitor) recomputeLocked() {
	m.visible = Visible(m.snap.Processes, m.filterText, m.sortKey)
	m.metrics.Visible.Set(float64(len(m.visible)))
}

// SetScreen switches screens; unknown screens are ignored
func (m *Monitor) SetScreen(s Screen) {
	if !s.valid() {
		return
	}
	m.mu.Lock()
	m.screen = s
	m.mu.Unlock()
	m.publish()
}

// ToggleTheme flips dark mode and persists it
func (m *Monitor) ToggleTheme() {
	m.mu.Lock()
	m.darkMode = !m.darkMode
	cfg := m.configLocked()
	m.mu.Unlock()

	m.save(cfg)
	m.publish()
}

// SetFilter changes the filter text and recomputes the visible list
func (m *Monitor) SetFilter(text string) {
	m.mu.Lock()
	m.filterText = text
	m.recomputeLocked()
	m.mu.Unlock()
	m.publish()
}

// SetSort changes the sort key and reorders the visible list
func (m *Monitor) SetSort(key SortKey) {
	if key != SortByCPU && key != SortByMemory {
		return
	}
	m.mu.Lock()
	m.sortKey = key
	m.recomputeLocked()
	m.mu.Unlock()
	m.publish()
}

// SetInterval takes the raw text of the interval field. The text is always
// kept as typed; the interval only changes when it parses as a base-10
// unsigned integer with an optional leading '+', and is then clamped and
// persisted.
func (m *Monitor) SetInterval(text string) bool {
	m.mu.Lock()
	m.intervalInput = text
	seconds, err := parseInterval(text)
	if err != nil {
		m.mu.Unlock()
		m.logger.Debug("ignoring interval input", zap.String("input", text))
		m.publish()
		return false
	}
	m.interval = conf.ClampInterval(seconds)
	cfg := m.configLocked()
	m.mu.Unlock()

	m.save(cfg)
	m.notifyInterval(time.Duration(cfg.RefreshIntervalSeconds) * time.Second)
	m.publish()
	return true
}

func parseInterval(text string) (uint64, error) {
	// ParseUint takes no sign, so "++5" and "+" still fail
	return strconv.ParseUint(strings.TrimPrefix(text, "+"), 10, 64)
}

func (m *Monitor) notifyInterval(d time.Duration) {
	select {
	case <-m.intervals:
	default:
	}
	select {
	case m.intervals <- d:
	default:
	}
}

// SelectProcess selects pid when it is in the visible list
func (m *Monitor) SelectProcess(pid uint32) bool {
	m.mu.Lock()
	ok := lo.ContainsBy(m.visible, func(p system.Process) bool { return p.PID == pid })
	if ok {
		m.selectedPID = pid
		m.hasSelection = true
	}
	m.mu.Unlock()
	if ok {
		m.publish()
	}
	return ok
}

// ClearSelection drops the selected process
func (m *Monitor) ClearSelection() {
	m.mu.Lock()
	m.selectedPID, m.hasSelection = 0, false
	m.mu.Unlock()
	m.publish()
}

// Describe looks up details of the selected process
func (m *Monitor) Describe(ctx context.Context) (system.ProcessDetail, error) {
	m.mu.Lock()
	pid, ok := m.selectedPID, m.hasSelection
	m.mu.Unlock()
	if !ok {
		return system.ProcessDetail{}, ErrNoSelection
	}
	return m.source.Describe(ctx, pid)
}

// Export writes the visible list and reports the outcome as a toast
func (m *Monitor) Export() error {
	m.mu.Lock()
	if m.exporting {
		m.mu.Unlock()
		return ErrExportInProgress
	}
	m.exporting = true
	procs := m.visible
	m.mu.Unlock()
	m.publish()

	err := m.export(m.exportPath, procs)
	m.metrics.Exports.WithLabelValues(resultOf(err)).Inc()

	m.mu.Lock()
	m.exporting = false
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("export failed", zap.String("path", m.exportPath), zap.Error(err))
		m.showToast(fmt.Sprintf("Export failed: %v - check if file is open elsewhere", err), true)
		return err
	}
	m.logger.Info("exported processes", zap.String("path", m.exportPath), zap.Int("rows", len(procs)))
	m.showToast("Processes exported to "+filepath.Base(m.exportPath), false)
	return nil
}

// showToast replaces the current toast and publishes
func (m *Monitor) showToast(text string, isError bool) {
	m.mu.Lock()
	m.toast = &Toast{Text: text, Error: isError, Expires: m.clock().Add(ToastDuration)}
	m.mu.Unlock()
	m.publish()
	m.afterFunc(ToastDuration, m.publish)
}

func (m *Monitor) configLocked() conf.Config {
	return conf.Config{RefreshIntervalSeconds: m.interval, DarkMode: m.darkMode}
}

// save persists cfg. A failure leaves memory as is and is shown to the user.
func (m *Monitor) save(cfg conf.Config) {
	if m.settings == nil {
		return
	}
	err := m.settings.Write(cfg)
	m.metrics.ConfigSaves.WithLabelValues(resultOf(err)).Inc()
	if err != nil {
		m.logger.Warn("failed to save settings", zap.Error(err))
		m.showToast(fmt.Sprintf("Could not save settings: %v - check file permissions", err), true)
	}
}
