package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tilly/internal/hold"
)

// RestoredMsg is emitted when the operator restores a held sale; the main
// model routes it to the register screen.
type RestoredMsg struct {
	Held hold.HeldTransaction
}

type HoldsModel struct {
	CommonModel
	holds    *hold.Store
	currency string

	table  table.Model
	listed []hold.HeldTransaction
	status string
}

func NewHoldsModel(holds *hold.Store, currency string) HoldsModel {
	columns := []table.Column{
		{Title: "Held at", Width: 20},
		{Title: "Lines", Width: 6},
		{Title: "Total", Width: 12},
		{Title: "ID", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return HoldsModel{
		holds:    holds,
		currency: currency,
		table:    t,
	}
}

func (m HoldsModel) Title() string { return "Held Sales" }

func (m HoldsModel) ShortHelp() string {
	return "Enter: restore | x: discard | r: refresh | Esc: back"
}

func (m HoldsModel) Init() tea.Cmd {
	return nil
}

func (m HoldsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.refresh()

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.status = ""
			return m, nil
		case "enter":
			return m.restoreSelected()
		case "x":
			m.discardSelected()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HoldsModel) restoreSelected() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.listed) {
		return m, nil
	}

	held, err := m.holds.Restore(m.listed[idx].ID)
	if err != nil {
		// Another register got there first.
		m.status = fmt.Sprintf("Cannot restore: %v", err)
		m.refresh()

		return m, nil
	}

	return m, func() tea.Msg { return RestoredMsg{Held: held} }
}

func (m *HoldsModel) discardSelected() {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.listed) {
		return
	}

	if err := m.holds.Discard(m.listed[idx].ID); err != nil {
		m.status = fmt.Sprintf("Cannot discard: %v", err)
		return
	}

	m.status = "Discarded."
	m.refresh()
}

func (m HoldsModel) View() string {
	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView
	if len(m.listed) == 0 {
		content = lipgloss.NewStyle().Padding(1).Render("No held sales.")
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *HoldsModel) refresh() {
	m.listed = m.listed[:0]
	for held := range m.holds.List() {
		m.listed = append(m.listed, held)
	}

	rows := make([]table.Row, 0, len(m.listed))
	for _, held := range m.listed {
		rows = append(rows, table.Row{
			held.CreatedAt.Format("2006-01-02 15:04:05"),
			strconv.Itoa(len(held.Snapshot.Lines())),
			held.Total.Format(m.currency),
			held.ID.String()[:8],
		})
	}

	m.table.SetRows(rows)
}
