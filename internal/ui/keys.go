package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Overview  key.Binding
	Processes key.Binding
	Settings  key.Binding
	NextTab   key.Binding
	Theme     key.Binding
	Refresh   key.Binding
	SortCPU   key.Binding
	SortMem   key.Binding
	Filter    key.Binding
	Export    key.Binding
	Select    key.Binding
	Clear     key.Binding
	Edit      key.Binding
	Done      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Overview:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview")),
		Processes: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "processes")),
		Settings:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "settings")),
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next screen")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		SortCPU:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "sort cpu")),
		SortMem:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "sort memory")),
		Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export csv")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Edit:      key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i", "edit interval")),
		Done:      key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "done")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpKeys is the per-screen help.KeyMap
type helpKeys struct {
	short []key.Binding
}

func (h helpKeys) ShortHelp() []key.Binding { return h.short }

func (h helpKeys) FullHelp() [][]key.Binding { return [][]key.Binding{h.short} }
