package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightmon/internal/monitor"
	"lightmon/internal/system"
)

// fakeController records intents and mirrors them into its state
type fakeController struct {
	mu      sync.Mutex
	st      monitor.State
	updates chan monitor.State

	filters   []string
	intervals []string
	selected  []uint32
	exports   int
	refreshes int
	describes int
	detailErr error
}

func newFakeController() *fakeController {
	return &fakeController{
		updates: make(chan monitor.State, 1),
		st: monitor.State{
			RefreshInterval: 1,
			IntervalInput:   "1",
			CPUPercent:      33,
			MemoryUsed:      2 << 30,
			MemoryTotal:     8 << 30,
			DiskUsed:        50 << 30,
			DiskTotal:       100 << 30,
			Processes: []system.Process{
				{PID: 300, Name: "postgres", CPUPercent: 40, MemoryBytes: 300 << 20},
				{PID: 1243, Name: "firefox", CPUPercent: 12.5, MemoryBytes: 900 << 20},
			},
			TotalProcesses: 2,
			UpdatedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}

func (f *fakeController) State() monitor.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st
}

func (f *fakeController) Updates() <-chan monitor.State { return f.updates }

func (f *fakeController) SetScreen(s monitor.Screen) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.Screen = s
}

func (f *fakeController) ToggleTheme() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.DarkMode = !f.st.DarkMode
}

func (f *fakeController) SetFilter(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, text)
	f.st.FilterText = text
}

func (f *fakeController) SetSort(k monitor.SortKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.SortKey = k
}

func (f *fakeController) SetInterval(text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intervals = append(f.intervals, text)
	f.st.IntervalInput = text
	n, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return false
	}
	f.st.RefreshInterval = uint32(n)
	return true
}

func (f *fakeController) SelectProcess(pid uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.st.Processes {
		if p.PID == pid {
			f.selected = append(f.selected, pid)
			f.st.SelectedPID, f.st.HasSelection = pid, true
			return true
		}
	}
	return false
}

func (f *fakeController) ClearSelection() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.SelectedPID, f.st.HasSelection = 0, false
}

func (f *fakeController) Describe(context.Context) (system.ProcessDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describes++
	if f.detailErr != nil {
		return system.ProcessDetail{}, f.detailErr
	}
	p, _ := f.st.Selected()
	return system.ProcessDetail{Process: p, Status: "sleep", Username: "postgres", VirtualBytes: 1 << 30}, nil
}

func (f *fakeController) Export() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exports++
	return nil
}

func (f *fakeController) Refresh(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return true
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func newTestModel(t *testing.T) (Model, *fakeController) {
	t.Helper()
	ctl := newFakeController()
	m := NewModel(context.Background(), ctl, "box (linux)")
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, ctl
}

func TestScreenKeys(t *testing.T) {
	m, ctl := newTestModel(t)

	m, _ = press(t, m, runes("2"))
	assert.Equal(t, monitor.ScreenProcesses, ctl.State().Screen)
	assert.Equal(t, monitor.ScreenProcesses, m.state.Screen)

	m, _ = press(t, m, runes("3"))
	assert.Equal(t, monitor.ScreenSettings, m.state.Screen)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, monitor.ScreenOverview, m.state.Screen)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestThemeToggleRebuildsStyles(t *testing.T) {
	m, ctl := newTestModel(t)
	m, _ = press(t, m, runes("t"))
	assert.True(t, ctl.State().DarkMode)
	assert.True(t, m.darkMode)

	m, _ = press(t, m, runes("t"))
	assert.False(t, m.darkMode)
}

func TestSortKeysOnlyOnProcessesScreen(t *testing.T) {
	m, ctl := newTestModel(t)
	m, _ = press(t, m, runes("m"))
	assert.Equal(t, monitor.SortByCPU, ctl.State().SortKey)

	m, _ = press(t, m, runes("2"), runes("m"))
	assert.Equal(t, monitor.SortByMemory, ctl.State().SortKey)
	assert.Contains(t, m.View(), "[Memory]")

	_, _ = press(t, m, runes("c"))
	assert.Equal(t, monitor.SortByCPU, ctl.State().SortKey)
}

func TestFilterModeCapturesTyping(t *testing.T) {
	m, ctl := newTestModel(t)
	m, _ = press(t, m, runes("2"), runes("/"))
	require.Equal(t, filterMode, m.mode)

	m, _ = press(t, m, runes("1"), runes("q"))
	assert.Equal(t, []string{"1", "1q"}, ctl.filters)
	assert.Equal(t, monitor.ScreenProcesses, ctl.State().Screen, "digits go to the filter")
	assert.Equal(t, filterMode, m.mode, "q is text while filtering")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, normalMode, m.mode)
	assert.Equal(t, "1q", m.filterInput.Value())
}

func TestSelectRowLoadsDetail(t *testing.T) {
	m, ctl := newTestModel(t)
	m, cmd := press(t, m, runes("2"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []uint32{300}, ctl.selected)
	require.NotNil(t, cmd)

	m, _ = press(t, m, cmd())
	require.NotNil(t, m.detail)
	assert.Equal(t, uint32(300), m.detail.PID)

	out := m.View()
	assert.Contains(t, out, "Process Details")
	assert.Contains(t, out, "sleep")
	assert.Contains(t, out, "1.0 GiB")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, ctl.State().HasSelection)
	assert.Nil(t, m.detail)
	assert.NotContains(t, m.View(), "Process Details")
}

// run executes cmd and any batched commands. A state is queued before each
// call so listeners return at once.
func run(ctl *fakeController, cmd tea.Cmd) []tea.Msg {
	queue := func() {
		select {
		case ctl.updates <- ctl.State():
		default:
		}
	}
	queue()
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		if c != nil {
			queue()
			out = append(out, c())
		}
	}
	return out
}

func TestDetailRefreshedOnlyForNewSampleOrPID(t *testing.T) {
	m, ctl := newTestModel(t)
	m, cmd := press(t, m, runes("2"), tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, run(ctl, cmd)...)
	require.Equal(t, 1, ctl.describes)

	// republished state for the same sample, e.g. after a filter keystroke
	m, cmd = press(t, m, stateMsg(ctl.State()))
	msgs := run(ctl, cmd)
	require.Len(t, msgs, 1)
	assert.IsType(t, stateMsg{}, msgs[0])
	assert.Equal(t, 1, ctl.describes)

	// a new sample asks again
	ctl.mu.Lock()
	ctl.st.UpdatedAt = ctl.st.UpdatedAt.Add(time.Second)
	ctl.mu.Unlock()
	m, cmd = press(t, m, stateMsg(ctl.State()))
	_ = run(ctl, cmd)
	assert.Equal(t, 2, ctl.describes)

	// so does a different pid for the same sample
	st := ctl.State()
	st.SelectedPID = 1243
	_, cmd = press(t, m, stateMsg(st))
	_ = run(ctl, cmd)
	assert.Equal(t, 3, ctl.describes)
}

func TestStaleDetailIsDropped(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, detailMsg{detail: system.ProcessDetail{Process: system.Process{PID: 300}}})
	assert.Nil(t, m.detail)
}

func TestDetailErrorFallsBackToRow(t *testing.T) {
	m, ctl := newTestModel(t)
	ctl.detailErr = errors.New("gone")
	m, cmd := press(t, m, runes("2"), tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, cmd())
	assert.Nil(t, m.detail)
	assert.Contains(t, m.View(), "postgres")
}

func TestExportKey(t *testing.T) {
	m, ctl := newTestModel(t)
	m, cmd := press(t, m, runes("2"), runes("e"))
	require.NotNil(t, cmd)
	_, _ = press(t, m, cmd())
	assert.Equal(t, 1, ctl.exports)

	ctl.st.Exporting = true
	m.applyState(ctl.State())
	assert.Contains(t, m.View(), "Exporting...")
	_, cmd = press(t, m, runes("e"))
	assert.Nil(t, cmd)
}

func TestRefreshKey(t *testing.T) {
	m, ctl := newTestModel(t)
	_, cmd := press(t, m, runes("r"))
	require.NotNil(t, cmd)
	assert.Equal(t, refreshDoneMsg{ran: true}, cmd())
	assert.Equal(t, 1, ctl.refreshes)
}

func TestIntervalEditKeepsInvalidText(t *testing.T) {
	m, ctl := newTestModel(t)
	m, _ = press(t, m, runes("3"), runes("i"))
	require.Equal(t, intervalMode, m.mode)

	// clear the seeded "1" then type a word
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace}, runes("a"), runes("b"), runes("c"))
	assert.Equal(t, []string{"", "a", "ab", "abc"}, ctl.intervals)
	assert.Equal(t, uint32(1), ctl.State().RefreshInterval)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, normalMode, m.mode)
	assert.Equal(t, "abc", m.intervalInput.Value())
}

func TestIntervalEditValid(t *testing.T) {
	m, ctl := newTestModel(t)
	m, _ = press(t, m, runes("3"), runes("i"), tea.KeyMsg{Type: tea.KeyBackspace}, runes("5"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, uint32(5), ctl.State().RefreshInterval)
	assert.Contains(t, m.View(), "every 5s")
}

func TestStateMsgRearmsListener(t *testing.T) {
	m, ctl := newTestModel(t)
	st := ctl.State()
	st.CPUPercent = 77
	m, cmd := press(t, m, stateMsg(st))
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "77.0%")
}

func TestOverviewView(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()
	for _, want := range []string{
		"Lightweight System Monitor",
		"System Overview",
		"33.0%",
		"25.0%",
		"2.0 GiB / 8.0 GiB",
		"50.0 GiB / 100.0 GiB",
		"box (linux)",
		"03:04:05",
	} {
		assert.Contains(t, out, want)
	}
}

func TestToastRendered(t *testing.T) {
	m, ctl := newTestModel(t)
	ctl.st.Toast = &monitor.Toast{Text: "Processes exported to processes.csv"}
	m.applyState(ctl.State())
	assert.Contains(t, m.View(), "Processes exported to processes.csv")
}

func TestSettingsShowsTheme(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("3"))
	assert.Contains(t, m.View(), "● Light")

	m, _ = press(t, m, runes("t"))
	assert.Contains(t, m.View(), "● Dark")
}

func TestBar(t *testing.T) {
	cases := []struct {
		in     float64
		filled int
	}{
		{0, 0},
		{4.9, 0},
		{5, 1},
		{50, 10},
		{99.9, 19},
		{100, 20},
		{250, 20},
		{-3, 0},
	}
	for _, c := range cases {
		got := bar(c.in)
		assert.Equal(t, barCells, len([]rune(got)), "width for %v", c.in)
		assert.Equal(t, c.filled, strings.Count(got, "█"), "filled for %v", c.in)
	}
}
