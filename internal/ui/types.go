package ui

import (
	"context"

	"lightmon/internal/monitor"
	"lightmon/internal/system"
)

// Controller is the part of the monitor the UI drives
type Controller interface {
	State() monitor.State
	Updates() <-chan monitor.State

	SetScreen(monitor.Screen)
	ToggleTheme()
	SetFilter(string)
	SetSort(monitor.SortKey)
	SetInterval(string) bool
	SelectProcess(uint32) bool
	ClearSelection()
	Describe(context.Context) (system.ProcessDetail, error)
	Export() error
	Refresh(context.Context) bool
}

var _ Controller = (*monitor.Monitor)(nil)

// Messages

type stateMsg monitor.State

type detailMsg struct {
	detail system.ProcessDetail
	err    error
}

type exportDoneMsg struct {
	err error
}

type refreshDoneMsg struct {
	ran bool
}

// UI Modes

type uiMode int

const (
	normalMode uiMode = iota
	filterMode
	intervalMode
)
