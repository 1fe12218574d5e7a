package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cast"

	"lightmon/internal/monitor"
)

// Update handles all incoming messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case stateMsg:
		st := monitor.State(msg)
		m.applyState(st)
		wait := waitForState(m.ctl.Updates())
		if !m.detailStale(st) {
			return m, wait
		}
		describe := m.describe()
		return m, tea.Batch(wait, describe)

	case detailMsg:
		// drop answers for a selection that changed meanwhile
		if msg.err != nil || !m.state.HasSelection || msg.detail.PID != m.state.SelectedPID {
			m.detail = nil
			return m, nil
		}
		d := msg.detail
		m.detail = &d
		return m, nil

	case exportDoneMsg, refreshDoneMsg:
		m.applyState(m.ctl.State())
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case filterMode:
			return m.updateFilter(msg)
		case intervalMode:
			return m.updateInterval(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Overview):
		return m.goTo(monitor.ScreenOverview)
	case key.Matches(msg, m.keys.Processes):
		return m.goTo(monitor.ScreenProcesses)
	case key.Matches(msg, m.keys.Settings):
		return m.goTo(monitor.ScreenSettings)
	case key.Matches(msg, m.keys.NextTab):
		return m.goTo(m.state.Screen.Next())
	case key.Matches(msg, m.keys.Theme):
		m.ctl.ToggleTheme()
		m.applyState(m.ctl.State())
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	}

	switch m.state.Screen {
	case monitor.ScreenProcesses:
		return m.handleProcessesKey(msg)
	case monitor.ScreenSettings:
		if key.Matches(msg, m.keys.Edit) {
			m.mode = intervalMode
			m.intervalInput.CursorEnd()
			return m, m.intervalInput.Focus()
		}
	}
	return m, nil
}

func (m Model) goTo(s monitor.Screen) (tea.Model, tea.Cmd) {
	m.ctl.SetScreen(s)
	m.applyState(m.ctl.State())
	if s == monitor.ScreenProcesses && m.state.HasSelection {
		cmd := m.describe()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleProcessesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.SortCPU):
		m.ctl.SetSort(monitor.SortByCPU)
	case key.Matches(msg, m.keys.SortMem):
		m.ctl.SetSort(monitor.SortByMemory)
	case key.Matches(msg, m.keys.Filter):
		m.mode = filterMode
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()
	case key.Matches(msg, m.keys.Export):
		if m.state.Exporting {
			return m, nil
		}
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.Select):
		row := m.table.SelectedRow()
		if row == nil {
			return m, nil
		}
		pid, err := cast.ToUint32E(row[0])
		if err != nil || !m.ctl.SelectProcess(pid) {
			return m, nil
		}
		m.applyState(m.ctl.State())
		cmd := m.describe()
		return m, cmd
	case key.Matches(msg, m.keys.Clear):
		m.ctl.ClearSelection()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	m.applyState(m.ctl.State())
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Done) {
		m.mode = normalMode
		m.filterInput.Blur()
		return m, nil
	}

	before := m.filterInput.Value()
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if v := m.filterInput.Value(); v != before {
		m.ctl.SetFilter(v)
		m.applyState(m.ctl.State())
	}
	return m, cmd
}

func (m Model) updateInterval(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Done) {
		m.mode = normalMode
		m.intervalInput.Blur()
		m.applyState(m.ctl.State())
		return m, nil
	}

	before := m.intervalInput.Value()
	var cmd tea.Cmd
	m.intervalInput, cmd = m.intervalInput.Update(msg)
	if v := m.intervalInput.Value(); v != before {
		m.ctl.SetInterval(v)
		m.applyState(m.ctl.State())
	}
	return m, tea.Batch(cmd, textinput.Blink)
}
