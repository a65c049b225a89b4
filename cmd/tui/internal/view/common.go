package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Screen is the interface every Tilly TUI screen implements. The main model
// hosts one screen at a time and routes messages to it.
type Screen interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all screens.
type CommonModel struct {
	Width  int
	Height int
}

// BackMsg tells the main model to return to the menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
