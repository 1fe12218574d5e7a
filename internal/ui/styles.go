package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	fg, bg, muted, accent, border, selFg, selBg, ok, err lipgloss.Color
}

var (
	lightPalette = palette{
		fg:     lipgloss.Color("235"),
		bg:     lipgloss.Color("255"),
		muted:  lipgloss.Color("244"),
		accent: lipgloss.Color("25"),
		border: lipgloss.Color("240"),
		selFg:  lipgloss.Color("255"),
		selBg:  lipgloss.Color("25"),
		ok:     lipgloss.Color("28"),
		err:    lipgloss.Color("124"),
	}
	darkPalette = palette{
		fg:     lipgloss.Color("252"),
		bg:     lipgloss.Color("234"),
		muted:  lipgloss.Color("242"),
		accent: lipgloss.Color("170"),
		border: lipgloss.Color("238"),
		selFg:  lipgloss.Color("229"),
		selBg:  lipgloss.Color("57"),
		ok:     lipgloss.Color("120"),
		err:    lipgloss.Color("210"),
	}
)

// styles split for readability
type styles struct {
	app        lipgloss.Style
	title      lipgloss.Style
	tab        lipgloss.Style
	activeTab  lipgloss.Style
	heading    lipgloss.Style
	panel      lipgloss.Style
	label      lipgloss.Style
	muted      lipgloss.Style
	sortActive lipgloss.Style
	toastOK    lipgloss.Style
	toastErr   lipgloss.Style
	table      table.Styles
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}

	s := styles{
		app: lipgloss.NewStyle().
			Foreground(p.fg).
			Background(p.bg).
			Padding(0, 1),

		title: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true).
			Padding(0, 1),

		tab: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 1),

		activeTab: lipgloss.NewStyle().
			Foreground(p.selFg).
			Background(p.selBg).
			Bold(true).
			Padding(0, 1),

		heading: lipgloss.NewStyle().
			Foreground(p.fg).
			Bold(true).
			MarginBottom(1),

		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),

		label: lipgloss.NewStyle().
			Foreground(p.muted).
			Width(10),

		muted: lipgloss.NewStyle().Foreground(p.muted),

		sortActive: lipgloss.NewStyle().
			Foreground(p.ok).
			Bold(true).
			Underline(true),

		toastOK: lipgloss.NewStyle().
			Foreground(p.ok).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.border).
			Padding(0, 1),

		toastErr: lipgloss.NewStyle().
			Foreground(p.err).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.err).
			Padding(0, 1),
	}

	t := table.DefaultStyles()
	t.Header = t.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.border).
		BorderBottom(true).
		Bold(true).
		Foreground(p.accent)
	t.Selected = t.Selected.
		Foreground(p.selFg).
		Background(p.selBg).
		Bold(false)
	t.Cell = t.Cell.Foreground(p.fg)
	s.table = t

	return s
}
