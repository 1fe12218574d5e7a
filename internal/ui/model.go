package ui

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"lightmon/internal/monitor"
	"lightmon/internal/system"
)

const minTableHeight = 5

// Model holds TUI state
type Model struct {
	ctx  context.Context
	ctl  Controller
	host string

	state    monitor.State
	detail   *system.ProcessDetail
	// pid and sample time of the last detail request
	describedPID uint32
	describedAt  time.Time
	styles   styles
	darkMode bool

	table         table.Model
	filterInput   textinput.Model
	intervalInput textinput.Model
	mode          uiMode

	keys keyMap
	help help.Model

	width  int
	height int
}

// NewModel builds the root model. host is shown on the overview screen.
func NewModel(ctx context.Context, ctl Controller, host string) Model {
	st := ctl.State()

	columns := []table.Column{
		{Title: "PID", Width: 8},
		{Title: "NAME", Width: 28},
		{Title: "%CPU", Width: 7},
		{Title: "MEMORY", Width: 11},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	fi := textinput.New()
	fi.Placeholder = "search processes by name or PID number"
	fi.CharLimit = 64
	fi.Prompt = "/ "
	fi.SetValue(st.FilterText)

	ii := textinput.New()
	ii.Placeholder = "update frequency in seconds"
	ii.CharLimit = 10
	ii.Prompt = "> "
	ii.SetValue(st.IntervalInput)

	m := Model{
		ctx:           ctx,
		ctl:           ctl,
		host:          host,
		styles:        newStyles(st.DarkMode),
		darkMode:      st.DarkMode,
		table:         t,
		filterInput:   fi,
		intervalInput: ii,
		keys:          defaultKeyMap(),
		help:          help.New(),
	}
	m.table.SetStyles(m.styles.table)
	m.applyState(st)
	return m
}

// Init starts listening for published states
func (m Model) Init() tea.Cmd {
	return waitForState(m.ctl.Updates())
}

func waitForState(ch <-chan monitor.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

// describe requests detail for the current selection and remembers what was asked
func (m *Model) describe() tea.Cmd {
	m.describedPID, m.describedAt = m.state.SelectedPID, m.state.UpdatedAt
	return m.describeCmd()
}

// detailStale reports whether st shows a selection that has not been described
// for its pid and sample yet
func (m Model) detailStale(st monitor.State) bool {
	if !st.HasSelection || st.Screen != monitor.ScreenProcesses {
		return false
	}
	return st.SelectedPID != m.describedPID || st.UpdatedAt.After(m.describedAt)
}

func (m Model) describeCmd() tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	return func() tea.Msg {
		d, err := ctl.Describe(ctx)
		return detailMsg{detail: d, err: err}
	}
}

func (m Model) exportCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		return exportDoneMsg{err: ctl.Export()}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctl, ctx := m.ctl, m.ctx
	return func() tea.Msg {
		return refreshDoneMsg{ran: ctl.Refresh(ctx)}
	}
}

// applyState copies st into the model and rebuilds derived widgets
func (m *Model) applyState(st monitor.State) {
	m.state = st
	if m.darkMode != st.DarkMode {
		m.darkMode = st.DarkMode
		m.styles = newStyles(st.DarkMode)
		m.table.SetStyles(m.styles.table)
	}

	rows := make([]table.Row, len(st.Processes))
	for i, p := range st.Processes {
		rows[i] = table.Row{
			strconv.FormatUint(uint64(p.PID), 10),
			p.Name,
			system.Float2string(p.CPUPercent, 1),
			system.ProperUnit(p.MemoryBytes),
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}

	if !st.HasSelection {
		m.detail = nil
	}
	if m.mode != intervalMode {
		m.intervalInput.SetValue(st.IntervalInput)
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width

	h := height - 16
	if h < minTableHeight {
		h = minTableHeight
	}
	m.table.SetHeight(h)
	m.table.SetWidth(width - 4)
}
