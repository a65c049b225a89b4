package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tilly/internal/auth"
	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	"github.com/MrJamesThe3rd/tilly/internal/stock"
)

type stockState int

const (
	stockStateForm stockState = iota
	stockStateRunning
	stockStateResult
)

type StockModel struct {
	CommonModel
	catalogSvc *catalog.Service
	saga       *stock.Saga
	actor      auth.Actor

	state stockState
	form  *huh.Form

	status  string
	warning bool

	// Form bindings
	formSource string
	formDest   string
	formQty    string
	formReason string
}

func NewStockModel(catalogSvc *catalog.Service, saga *stock.Saga, actor auth.Actor) StockModel {
	m := StockModel{
		catalogSvc: catalogSvc,
		saga:       saga,
		actor:      actor,
	}
	m.form = m.newForm()

	return m
}

func (m StockModel) Title() string { return "Stock Transfer" }

func (m StockModel) ShortHelp() string {
	if m.state == stockStateResult {
		return "Esc: back | Enter: another transfer"
	}

	return "Navigate form | Esc: back"
}

func (m *StockModel) newForm() *huh.Form {
	m.formSource = ""
	m.formDest = ""
	m.formQty = ""
	m.formReason = ""

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("source").
				Title("Source SKU").
				Value(&m.formSource).
				Validate(requiredField("source SKU")),

			huh.NewInput().
				Key("destination").
				Title("Destination SKU").
				Value(&m.formDest).
				Validate(requiredField("destination SKU")),

			huh.NewInput().
				Key("quantity").
				Title("Quantity").
				Value(&m.formQty).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil || n <= 0 {
						return fmt.Errorf("quantity must be a positive number")
					}
					return nil
				}),

			huh.NewInput().
				Key("reason").
				Title("Reason").
				Placeholder("repack, damage writeback, ...").
				Value(&m.formReason).
				Validate(requiredField("reason")),
		),
	).WithWidth(48).WithShowHelp(false)
}

func requiredField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}

		return nil
	}
}

func (m StockModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m StockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case transferResultMsg:
		m.state = stockStateResult
		m.warning = false

		if msg.err != nil {
			var terr *stock.TransferError
			if errors.As(msg.err, &terr) && terr.NeedsReconciliation {
				m.warning = true
				m.status = fmt.Sprintf("TRANSFER FAILED MID-FLIGHT: %v\nStock needs manual reconciliation.", msg.err)

				return m, nil
			}

			m.status = fmt.Sprintf("Transfer failed: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf(
			"Transferred %d units.\nSource on hand: %d\nDestination on hand: %d",
			msg.quantity, msg.result.SourceOnHand, msg.result.DestinationOnHand,
		)

		return m, nil

	case tea.KeyMsg:
		if m.state == stockStateResult {
			switch msg.Type {
			case tea.KeyEsc:
				return m, Back
			case tea.KeyEnter:
				m.state = stockStateForm
				m.status = ""
				m.form = m.newForm()

				return m, m.form.Init()
			}

			return m, nil
		}

		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.state != stockStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.actor.Role.CanTransferStock() {
		m.state = stockStateResult
		m.status = fmt.Sprintf("Role %q cannot transfer stock.", m.actor.Role)

		return m, nil
	}

	m.state = stockStateRunning

	return m, m.transferCmd()
}

func (m StockModel) View() string {
	switch m.state {
	case stockStateRunning:
		return lipgloss.NewStyle().Padding(2).Render("Transferring...")
	case stockStateResult:
		color := lipgloss.Color("46")
		if m.warning {
			color = lipgloss.Color("196")
		} else if strings.HasPrefix(m.status, "Transfer failed") || strings.HasPrefix(m.status, "Role") {
			color = lipgloss.Color("208")
		}

		return lipgloss.NewStyle().Padding(2).Render(
			lipgloss.NewStyle().Foreground(color).Render(m.status) +
				"\n\n(Enter for another transfer, Esc to go back)",
		)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(
		"Move stock between products\n\n" + m.form.View(),
	)
}

// Messages

type transferResultMsg struct {
	result   stock.Result
	quantity int64
	err      error
}

func (m StockModel) transferCmd() tea.Cmd {
	sourceSKU := strings.TrimSpace(m.formSource)
	destSKU := strings.TrimSpace(m.formDest)
	qty, _ := strconv.ParseInt(strings.TrimSpace(m.formQty), 10, 64)
	reason := strings.TrimSpace(m.formReason)
	actorID := m.actor.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		source, err := m.catalogSvc.GetBySKU(ctx, sourceSKU)
		if err != nil {
			return transferResultMsg{err: fmt.Errorf("source %s: %w", sourceSKU, err)}
		}

		dest, err := m.catalogSvc.GetBySKU(ctx, destSKU)
		if err != nil {
			return transferResultMsg{err: fmt.Errorf("destination %s: %w", destSKU, err)}
		}

		result, err := m.saga.Transfer(ctx, stock.Transfer{
			SourceID:      source.ID,
			DestinationID: dest.ID,
			Quantity:      qty,
			Reason:        reason,
			Actor:         actorID,
		})
		if err != nil {
			return transferResultMsg{err: err}
		}

		return transferResultMsg{result: result, quantity: qty}
	}
}
