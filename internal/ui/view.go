package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"lightmon/internal/monitor"
	"lightmon/internal/system"
)

const (
	appTitle = "Lightweight System Monitor"
	barCells = 20
)

// View renders the current screen
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch m.state.Screen {
	case monitor.ScreenOverview:
		b.WriteString(m.overviewView())
	case monitor.ScreenProcesses:
		b.WriteString(m.processesView())
	case monitor.ScreenSettings:
		b.WriteString(m.settingsView())
	}

	if t := m.state.Toast; t != nil {
		b.WriteString("\n")
		if t.Error {
			b.WriteString(m.styles.toastErr.Render(t.Text))
		} else {
			b.WriteString(m.styles.toastOK.Render(t.Text))
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.helpFor()))

	out := m.styles.app.Render(b.String())
	if m.width > 0 {
		out = lipgloss.NewStyle().Width(m.width).Render(out)
	}
	return out
}

func (m Model) header() string {
	tabs := make([]string, 0, len(monitor.Screens))
	for i, s := range monitor.Screens {
		label := fmt.Sprintf("%d %s", i+1, s)
		if s == m.state.Screen {
			tabs = append(tabs, m.styles.activeTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.title.Render(appTitle),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
	)
}

// bar draws a fixed width gauge, one cell per 5%
func bar(percent float64) string {
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / (100 / barCells))
	return strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled)
}

func pct(p float64) string {
	return system.Float2string(p, 1) + "%"
}

func (m Model) overviewView() string {
	st := m.state
	lines := []string{
		m.styles.heading.Render("System Overview"),
		m.styles.label.Render("CPU") + bar(st.CPUPercent) + " " + pct(st.CPUPercent),
		m.styles.label.Render("Memory") + bar(st.MemoryPercent()) + " " + pct(st.MemoryPercent()) +
			m.styles.muted.Render(fmt.Sprintf("  %s / %s", system.ProperUnit(st.MemoryUsed), system.ProperUnit(st.MemoryTotal))),
		m.styles.label.Render("Disk") + bar(st.DiskPercent()) + " " + pct(st.DiskPercent()) +
			m.styles.muted.Render(fmt.Sprintf("  %s / %s", system.ProperUnit(st.DiskUsed), system.ProperUnit(st.DiskTotal))),
		"",
		m.styles.label.Render("Processes") + strconv.Itoa(st.TotalProcesses),
	}
	if m.host != "" {
		lines = append(lines, m.styles.label.Render("Host")+m.host)
	}
	if !st.UpdatedAt.IsZero() {
		lines = append(lines, m.styles.muted.Render("updated "+st.UpdatedAt.Format("15:04:05")))
	}
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}

func (m Model) processesView() string {
	st := m.state
	var b strings.Builder

	sortBy := func(k monitor.SortKey) string {
		label := "[" + k.String() + "]"
		if k == st.SortKey {
			return m.styles.sortActive.Render(label)
		}
		return m.styles.muted.Render(label)
	}
	b.WriteString(fmt.Sprintf("Sort by %s %s   %d of %d shown",
		sortBy(monitor.SortByCPU), sortBy(monitor.SortByMemory), len(st.Processes), st.TotalProcesses))
	if st.Exporting {
		b.WriteString(m.styles.muted.Render("   Exporting..."))
	}
	b.WriteString("\n")
	b.WriteString(m.filterInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.table.View())

	if st.HasSelection {
		b.WriteString("\n")
		b.WriteString(m.detailView())
	}
	return b.String()
}

func (m Model) detailView() string {
	row := func(label, value string) string {
		return m.styles.label.Render(label) + value
	}

	lines := []string{m.styles.heading.Render("Process Details")}
	if d := m.detail; d != nil {
		lines = append(lines,
			row("Name", d.Name),
			row("PID", strconv.FormatUint(uint64(d.PID), 10)),
			row("Status", orDash(d.Status)),
			row("User", orDash(d.Username)),
			row("CPU", pct(d.CPUPercent)),
			row("Memory", system.ProperUnit(d.MemoryBytes)),
			row("Virtual", system.ProperUnit(d.VirtualBytes)),
		)
		if !d.CreateTime.IsZero() {
			lines = append(lines, row("Started", d.CreateTime.Format("2006-01-02 15:04:05")))
		}
	} else if p, ok := m.state.Selected(); ok {
		lines = append(lines,
			row("Name", p.Name),
			row("PID", strconv.FormatUint(uint64(p.PID), 10)),
			row("CPU", pct(p.CPUPercent)),
			row("Memory", system.ProperUnit(p.MemoryBytes)),
		)
	} else {
		lines = append(lines, m.styles.muted.Render(
			fmt.Sprintf("process %d is no longer listed", m.state.SelectedPID)))
	}
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m Model) settingsView() string {
	st := m.state
	light, dark := "○", "●"
	if !st.DarkMode {
		light, dark = "●", "○"
	}

	lines := []string{
		m.styles.heading.Render("Settings"),
		"Update frequency (seconds)",
		m.intervalInput.View(),
		m.styles.muted.Render(fmt.Sprintf("current: every %ds", st.RefreshInterval)),
		"",
		fmt.Sprintf("Theme  %s Light  %s Dark", light, dark),
	}
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}

func (m Model) helpFor() helpKeys {
	k := m.keys
	switch m.mode {
	case filterMode, intervalMode:
		return helpKeys{short: []key.Binding{k.Done}}
	}

	common := []key.Binding{k.NextTab, k.Theme, k.Refresh, k.Quit}
	switch m.state.Screen {
	case monitor.ScreenProcesses:
		return helpKeys{short: append([]key.Binding{k.SortCPU, k.SortMem, k.Filter, k.Export, k.Select, k.Clear}, common...)}
	case monitor.ScreenSettings:
		return helpKeys{short: append([]key.Binding{k.Edit}, common...)}
	}
	return helpKeys{short: common}
}
