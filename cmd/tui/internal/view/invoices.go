package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tilly/internal/invoice"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

type invoiceState int

const (
	invoiceStateBrowse invoiceState = iota
	invoiceStatePay
	invoiceStateHistory
)

type InvoicesModel struct {
	CommonModel
	ledger   *invoice.Ledger
	currency string

	state    invoiceState
	table    table.Model
	invoices []*invoice.Invoice
	payments []*invoice.Payment
	form     *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings
	formAmount    string
	formMethod    string
	formReference string
}

func NewInvoicesModel(ledger *invoice.Ledger, currency string) InvoicesModel {
	columns := []table.Column{
		{Title: "Number", Width: 12},
		{Title: "Customer", Width: 24},
		{Title: "Due", Width: 12},
		{Title: "Outstanding", Width: 12},
		{Title: "Status", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
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

	return InvoicesModel{
		ledger:   ledger,
		currency: currency,
		table:    t,
	}
}

func (m InvoicesModel) Title() string { return "Outstanding Invoices" }

func (m InvoicesModel) ShortHelp() string {
	switch m.state {
	case invoiceStatePay:
		return "Navigate form | Esc: cancel"
	case invoiceStateHistory:
		return "Esc: back to list"
	}

	return "Enter: record payment | p: payment history | r: refresh | Esc: back"
}

func (m InvoicesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.invoices = msg.invoices
		m.err = nil
		m.refreshTable()

		return m, nil

	case paymentRecordedMsg:
		m.state = invoiceStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Payment rejected: %v", msg.err)
			return m, m.loadCmd()
		}

		m.status = fmt.Sprintf("Recorded %s against %s; now %s.",
			msg.payment.Amount.Format(m.currency),
			msg.invoice.Number,
			msg.invoice.Status,
		)

		return m, m.loadCmd()

	case loadPaymentsMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.payments = msg.payments
		m.state = invoiceStateHistory

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case invoiceStateBrowse:
		return m.updateBrowse(msg)
	case invoiceStatePay:
		return m.updatePay(msg)
	case invoiceStateHistory:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = invoiceStateBrowse
			m.payments = nil
		}

		return m, nil
	}

	return m, nil
}

func (m InvoicesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			m.status = ""

			return m, m.loadCmd()
		case "enter":
			return m.enterPayMode()
		case "p":
			if inv, ok := m.selectedInvoice(); ok {
				return m, m.loadPaymentsCmd(inv)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *InvoicesModel) selectedInvoice() (*invoice.Invoice, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invoices) {
		return nil, false
	}

	return m.invoices[idx], true
}

func (m InvoicesModel) enterPayMode() (tea.Model, tea.Cmd) {
	inv, ok := m.selectedInvoice()
	if !ok {
		return m, nil
	}

	m.formAmount = inv.OutstandingBalance.String()
	m.formMethod = string(invoice.PaymentBankTransfer)
	m.formReference = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title(fmt.Sprintf("Amount (%s outstanding)", inv.OutstandingBalance.Format(m.currency))).
				Value(&m.formAmount).
				Validate(func(s string) error {
					amount, err := money.FromString(strings.TrimSpace(s))
					if err != nil || !amount.IsPositive() {
						return fmt.Errorf("enter a positive amount like 150.00")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("method").
				Title("Method").
				Options(
					huh.NewOption("Bank transfer", string(invoice.PaymentBankTransfer)),
					huh.NewOption("Cash", string(invoice.PaymentCash)),
					huh.NewOption("Card", string(invoice.PaymentCard)),
					huh.NewOption("Mobile", string(invoice.PaymentMobile)),
				).
				Value(&m.formMethod),

			huh.NewInput().
				Key("reference").
				Title("Reference").
				Placeholder("bank statement line, receipt no, ...").
				Value(&m.formReference),
		),
	).WithWidth(48).WithShowHelp(false)

	m.state = invoiceStatePay
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvoicesModel) updatePay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = invoiceStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.recordPaymentCmd()
}

func (m InvoicesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.state == invoiceStateHistory {
		return m.viewHistory()
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	if m.state == invoiceStatePay && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(52).
			Render("Record Payment\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m InvoicesModel) viewHistory() string {
	var b strings.Builder

	b.WriteString("Payments\n\n")

	if len(m.payments) == 0 {
		b.WriteString("No payments recorded.\n")
	}

	for _, p := range m.payments {
		fmt.Fprintf(&b, "%s  %12s  %-13s  %s\n",
			FormatDate(p.Date),
			p.Amount.Format(m.currency),
			p.Method,
			p.Reference,
		)
	}

	b.WriteString("\n(Esc to go back)")

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func (m *InvoicesModel) refreshTable() {
	now := time.Now()

	rows := make([]table.Row, 0, len(m.invoices))
	for _, inv := range m.invoices {
		status := string(inv.Status)
		if inv.IsOverdue(now) {
			status += " (overdue)"
		}

		rows = append(rows, table.Row{
			inv.Number,
			inv.CustomerName,
			FormatDate(inv.DueDate),
			inv.OutstandingBalance.String(),
			status,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInvoicesMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m InvoicesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invoices, err := m.ledger.ListOutstanding(ctx)

		return loadInvoicesMsg{invoices: invoices, err: err}
	}
}

type loadPaymentsMsg struct {
	payments []*invoice.Payment
	err      error
}

func (m InvoicesModel) loadPaymentsCmd(inv *invoice.Invoice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		payments, err := m.ledger.ListPayments(ctx, inv.ID)

		return loadPaymentsMsg{payments: payments, err: err}
	}
}

type paymentRecordedMsg struct {
	invoice *invoice.Invoice
	payment *invoice.Payment
	err     error
}

func (m InvoicesModel) recordPaymentCmd() tea.Cmd {
	inv, ok := m.selectedInvoice()
	if !ok {
		return nil
	}

	amount, err := money.FromString(strings.TrimSpace(m.formAmount))
	if err != nil {
		return func() tea.Msg { return paymentRecordedMsg{err: err} }
	}

	method := invoice.PaymentMethod(m.formMethod)
	reference := strings.TrimSpace(m.formReference)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated, payment, err := m.ledger.RecordPayment(ctx, invoice.RecordPaymentParams{
			InvoiceID: inv.ID,
			Amount:    amount,
			Method:    method,
			Reference: reference,
		})
		if err != nil {
			return paymentRecordedMsg{err: err}
		}

		return paymentRecordedMsg{invoice: updated, payment: payment}
	}
}
