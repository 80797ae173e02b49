package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// consoleModel is the root model: a tab bar over the review queue tabs.
// Key presses go to the active tab only; completion messages are broadcast
// to every tab so a queue left in the background still applies its loads.
type consoleModel struct {
	titles []string
	tabs   []tea.Model
	active int
}

func newConsoleModel(titles []string, tabs []tea.Model) *consoleModel {
	return &consoleModel{titles: titles, tabs: tabs}
}

func (m *consoleModel) Init() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.tabs))
	for i, tab := range m.tabs {
		cmds[i] = tab.Init()
	}
	return tea.Batch(cmds...)
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.active = (m.active + 1) % len(m.tabs)
			return m, nil
		case "shift+tab":
			m.active = (m.active + len(m.tabs) - 1) % len(m.tabs)
			return m, nil
		}
		var cmd tea.Cmd
		m.tabs[m.active], cmd = m.tabs[m.active].Update(msg)
		return m, cmd

	default:
		cmds := make([]tea.Cmd, 0, len(m.tabs))
		for i, tab := range m.tabs {
			updated, cmd := tab.Update(msg)
			m.tabs[i] = updated
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)
	}
}

func (m *consoleModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Flash Admin Console") + "\n")

	labels := make([]string, len(m.titles))
	for i, title := range m.titles {
		if i == m.active {
			labels[i] = activeTabStyle.Render(title)
		} else {
			labels[i] = tabStyle.Render(title)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labels...) + "\n\n")
	b.WriteString(m.tabs[m.active].View())
	return b.String()
}
