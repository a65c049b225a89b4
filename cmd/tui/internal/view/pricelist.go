package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	"github.com/MrJamesThe3rd/tilly/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateSupplierSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	catalogSvc    *catalog.Service
	importService *importer.Service
	currency      string

	state            importState
	filePicker       filepicker.Model
	selectedSupplier importer.Supplier
	supplierOptions  []importer.Supplier
	supplierCursor   int

	newParams    []catalog.CreateParams
	conflicts    []catalog.Conflict
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

func NewImportModel(catalogSvc *catalog.Service, impSvc *importer.Service, currency string) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		catalogSvc:      catalogSvc,
		importService:   impSvc,
		currency:        currency,
		filePicker:      fp,
		supplierOptions: []importer.Supplier{importer.SupplierVelox},
		selected:        make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Price List" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateConflicts:
		return "Space: toggle price update | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateSupplierSelect {
			return m.updateSupplierSelect(msg)
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.result.Conflicts) == 0 {
			m.state = importStateResult
			m.status = fmt.Sprintf("Imported %d products.", len(msg.result.Imported))

			return m, nil
		}

		m.newParams = msg.result.New
		m.conflicts = msg.result.Conflicts
		m.selected = make(map[int]bool)
		m.state = importStateConflicts

		items := make([]list.Item, len(m.conflicts))
		for i, c := range m.conflicts {
			items[i] = conflictItem{conflict: c, index: i}
		}

		delegate := conflictDelegate{selected: &m.selected, currency: m.currency}
		m.conflictList = list.New(items, delegate, 80, 20)
		m.conflictList.Title = "Existing SKUs"
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Applied %d products.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateSupplierSelect
		return m, nil
	case importStateResult:
		m.state = importStateSupplierSelect
		m.err = nil
		m.status = ""

		return m, nil
	case importStateConflicts:
		m.state = importStateSupplierSelect
		m.conflicts = nil
		m.newParams = nil
		m.selected = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateSupplierSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.supplierCursor > 0 {
			m.supplierCursor--
		}
	case tea.KeyDown:
		if m.supplierCursor < len(m.supplierOptions)-1 {
			m.supplierCursor++
		}
	case tea.KeyEnter:
		m.selectedSupplier = m.supplierOptions[m.supplierCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateSupplierSelect:
		return m.viewSupplierSelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewSupplierSelect() string {
	s := "Select Supplier:\n\n"

	for i, supplier := range m.supplierOptions {
		cursor := " "
		if i == m.supplierCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, string(supplier))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select price list to import (%s):\n\n%s", m.selectedSupplier, m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status) +
			"\n\n(Esc to go back)",
	)
}

// Messages

type importResultMsg struct {
	result *catalog.ImportResult
	err    error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Import(m.selectedSupplier, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.catalogSvc.ImportBatch(ctx, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	newParams := m.newParams
	conflicts := m.conflicts
	selected := m.selected

	return func() tea.Msg {
		var allParams []catalog.CreateParams
		allParams = append(allParams, newParams...)

		for i, c := range conflicts {
			if !selected[i] {
				continue
			}

			allParams = append(allParams, c.Incoming)
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		products, err := m.catalogSvc.ApplyPriceUpdates(ctx, allParams)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(products)}
	}
}

// Conflict list item

type conflictItem struct {
	conflict catalog.Conflict
	index    int
}

func (i conflictItem) Title() string       { return "" }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return "" }

// Conflict list delegate

type conflictDelegate struct {
	selected *map[int]bool
	currency string
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	line1 := fmt.Sprintf("%s%s %-12s %s  %s",
		cursor, checkbox,
		incoming.SKU,
		incoming.UnitPrice.Format(d.currency),
		incoming.Name,
	)

	line2 := fmt.Sprintf("      Current: %s  %s",
		existing.UnitPrice.Format(d.currency),
		existing.Name,
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
