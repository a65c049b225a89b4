package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tilly/internal/cart"
	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	"github.com/MrJamesThe3rd/tilly/internal/hold"
	"github.com/MrJamesThe3rd/tilly/internal/money"
)

type registerState int

const (
	registerStateBrowse registerState = iota
	registerStateAdd
	registerStateDiscount
	registerStateTender
	registerStateReceipt
)

// RegisterModel is the cashier's ring-up screen. The active cart lives here
// and survives navigating away; only hold and checkout empty it.
type RegisterModel struct {
	CommonModel
	catalogSvc  *catalog.Service
	checkoutSvc *cart.Service
	holds       *hold.Store
	currency    string

	state registerState
	table table.Model
	cart  *cart.Cart
	form  *huh.Form
	sale  *cart.Sale

	status string

	// Form bindings
	formSKU      string
	formQty      string
	formDiscount string
	formMethod   string
	formCash     string
	formCard     string
}

func NewRegisterModel(catalogSvc *catalog.Service, checkoutSvc *cart.Service, holds *hold.Store, taxRate decimal.Decimal, currency string) RegisterModel {
	columns := []table.Column{
		{Title: "Item", Width: 32},
		{Title: "Qty", Width: 5},
		{Title: "Unit", Width: 10},
		{Title: "Discount", Width: 10},
		{Title: "Net", Width: 10},
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

	return RegisterModel{
		catalogSvc:  catalogSvc,
		checkoutSvc: checkoutSvc,
		holds:       holds,
		currency:    currency,
		table:       t,
		cart:        cart.New(taxRate),
	}
}

func (m RegisterModel) Title() string { return "Register" }

func (m RegisterModel) ShortHelp() string {
	switch m.state {
	case registerStateBrowse:
		return "a: add | +/-: qty | d: discount | x: void line | h: hold | t: tender | Esc: back"
	case registerStateReceipt:
		return "Esc: new sale"
	}

	return "Navigate form | Esc: cancel"
}

func (m RegisterModel) Init() tea.Cmd {
	m.refreshTable()
	return nil
}

func (m RegisterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RestoredMsg:
		if !m.cart.IsEmpty() {
			// The restore already removed the snapshot from the queue; put it
			// back under a fresh id so the held sale is not lost.
			if _, err := m.holds.Hold(msg.Held.Snapshot); err != nil {
				m.status = fmt.Sprintf("Error: %v", err)
				return m, nil
			}

			m.status = "Register has an active sale; held sale returned to the queue."

			return m, nil
		}

		m.cart = msg.Held.Snapshot
		m.status = fmt.Sprintf("Restored held sale of %s.", msg.Held.Total.Format(m.currency))
		m.refreshTable()

		return m, nil

	case addItemMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		if _, err := m.cart.AddItem(cart.ItemParams{
			ProductID: msg.product.ID,
			Name:      msg.product.Name,
			UnitPrice: msg.product.UnitPrice,
		}, msg.qty); err != nil {
			m.status = fmt.Sprintf("Error: %v", err)
			return m, nil
		}

		m.status = ""
		m.refreshTable()

		return m, nil

	case checkoutMsg:
		if msg.err != nil {
			m.state = registerStateBrowse
			m.status = fmt.Sprintf("Checkout failed: %v", msg.err)
			m.table.Focus()

			return m, nil
		}

		m.state = registerStateReceipt
		m.sale = msg.sale
		m.status = ""
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case registerStateBrowse:
		return m.updateBrowse(msg)
	case registerStateAdd, registerStateDiscount, registerStateTender:
		return m.updateForm(msg)
	case registerStateReceipt:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = registerStateBrowse
			m.sale = nil
			m.table.Focus()
		}

		return m, nil
	}

	return m, nil
}

func (m RegisterModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			return m.enterAddMode()
		case "+":
			m.bumpQuantity(1)
			return m, nil
		case "-":
			m.bumpQuantity(-1)
			return m, nil
		case "d":
			return m.enterDiscountMode()
		case "x":
			if line, ok := m.selectedLine(); ok {
				if err := m.cart.RemoveItem(line.ID); err != nil {
					m.status = fmt.Sprintf("Error: %v", err)
				}

				m.refreshTable()
			}

			return m, nil
		case "h":
			m.holdSale()
			return m, nil
		case "t":
			return m.enterTenderMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *RegisterModel) selectedLine() (cart.LineItem, bool) {
	lines := m.cart.Lines()

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(lines) {
		return cart.LineItem{}, false
	}

	return lines[idx], true
}

func (m *RegisterModel) bumpQuantity(delta int64) {
	line, ok := m.selectedLine()
	if !ok {
		return
	}

	if err := m.cart.SetQuantity(line.ID, line.Quantity+delta); err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return
	}

	m.status = ""
	m.refreshTable()
}

func (m *RegisterModel) holdSale() {
	id, err := m.holds.Hold(m.cart)
	if err != nil {
		m.status = fmt.Sprintf("Cannot hold: %v", err)
		return
	}

	m.cart.Clear()
	m.status = fmt.Sprintf("Sale held (%s).", id.String()[:8])
	m.refreshTable()
}

func (m RegisterModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formSKU = ""
	m.formQty = "1"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("sku").
				Title("SKU").
				Value(&m.formSKU).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("sku cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("qty").
				Title("Quantity").
				Value(&m.formQty).
				Validate(func(s string) error {
					n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
					if err != nil || n <= 0 {
						return fmt.Errorf("quantity must be a positive number")
					}
					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)

	m.state = registerStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m RegisterModel) enterDiscountMode() (tea.Model, tea.Cmd) {
	line, ok := m.selectedLine()
	if !ok {
		return m, nil
	}

	m.formDiscount = line.Discount.String()

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("discount").
				Title(fmt.Sprintf("Discount on %s", line.Name)).
				Value(&m.formDiscount).
				Validate(func(s string) error {
					if _, err := money.FromString(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("enter an amount like 2.50")
					}
					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)

	m.state = registerStateDiscount
	m.table.Blur()

	return m, m.form.Init()
}

func (m RegisterModel) enterTenderMode() (tea.Model, tea.Cmd) {
	if m.cart.IsEmpty() {
		m.status = "Nothing to tender."
		return m, nil
	}

	total := m.cart.Totals().Total
	m.formMethod = string(cart.MethodCash)
	m.formCash = total.String()
	m.formCard = "0.00"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("method").
				Title(fmt.Sprintf("Tender %s", total.Format(m.currency))).
				Options(
					huh.NewOption("Cash", string(cart.MethodCash)),
					huh.NewOption("Card", string(cart.MethodCard)),
					huh.NewOption("Mobile", string(cart.MethodMobile)),
					huh.NewOption("Split cash/card", string(cart.MethodSplit)),
				).
				Value(&m.formMethod),

			huh.NewInput().
				Key("cash").
				Title("Cash received").
				Value(&m.formCash).
				Validate(validateAmount),

			huh.NewInput().
				Key("card").
				Title("Card amount (split only)").
				Value(&m.formCard).
				Validate(validateAmount),
		),
	).WithWidth(44).WithShowHelp(false)

	m.state = registerStateTender
	m.table.Blur()

	return m, m.form.Init()
}

func validateAmount(s string) error {
	if _, err := money.FromString(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("enter an amount like 10.00")
	}

	return nil
}

func (m RegisterModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = registerStateBrowse
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

	state := m.state
	m.form = nil
	m.table.Focus()

	switch state {
	case registerStateAdd:
		m.state = registerStateBrowse
		return m, m.addItemCmd()
	case registerStateDiscount:
		m.state = registerStateBrowse
		m.applyDiscount()

		return m, nil
	case registerStateTender:
		m.state = registerStateBrowse
		return m, m.checkoutCmd()
	}

	return m, nil
}

func (m *RegisterModel) applyDiscount() {
	line, ok := m.selectedLine()
	if !ok {
		return
	}

	discount, err := money.FromString(strings.TrimSpace(m.formDiscount))
	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return
	}

	if err := m.cart.SetDiscount(line.ID, discount); err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return
	}

	m.status = ""
	m.refreshTable()
}

func (m RegisterModel) View() string {
	if m.state == registerStateReceipt && m.sale != nil {
		return m.viewReceipt()
	}

	totals := m.cart.Totals()

	summary := fmt.Sprintf(
		"Subtotal: %s   Tax: %s   Total: %s",
		totals.Subtotal.Format(m.currency),
		totals.Tax.Format(m.currency),
		lipgloss.NewStyle().Bold(true).Render(totals.Total.Format(m.currency)),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		tableView,
		lipgloss.NewStyle().PaddingTop(1).Render(summary),
	)

	if m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m RegisterModel) viewReceipt() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sale %s\n\n", m.sale.ID.String()[:8])

	for _, li := range m.sale.Items {
		fmt.Fprintf(&b, "%-32s %3d  %10s\n", li.Name, li.Quantity, li.Net().Format(m.currency))
	}

	fmt.Fprintf(&b, "\nSubtotal: %s\nTax:      %s\nTotal:    %s\n",
		m.sale.Subtotal.Format(m.currency),
		m.sale.Tax.Format(m.currency),
		m.sale.Total.Format(m.currency),
	)

	if m.sale.Method == cart.MethodCash {
		fmt.Fprintf(&b, "Change:   %s\n", m.sale.Change.Format(m.currency))
	}

	return lipgloss.NewStyle().Padding(2).Render(
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(b.String()) +
			"\n(Esc for next sale)",
	)
}

func (m *RegisterModel) refreshTable() {
	lines := m.cart.Lines()

	rows := make([]table.Row, 0, len(lines))
	for _, li := range lines {
		rows = append(rows, table.Row{
			li.Name,
			strconv.FormatInt(li.Quantity, 10),
			li.UnitPrice.String(),
			li.Discount.String(),
			li.Net().String(),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type addItemMsg struct {
	product *catalog.Product
	qty     int64
	err     error
}

func (m RegisterModel) addItemCmd() tea.Cmd {
	sku := strings.TrimSpace(m.formSKU)
	qty, _ := strconv.ParseInt(strings.TrimSpace(m.formQty), 10, 64)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		product, err := m.catalogSvc.GetBySKU(ctx, sku)
		if err != nil {
			return addItemMsg{err: err}
		}

		return addItemMsg{product: product, qty: qty}
	}
}

type checkoutMsg struct {
	sale *cart.Sale
	err  error
}

func (m RegisterModel) checkoutCmd() tea.Cmd {
	method := cart.Method(m.formMethod)
	total := m.cart.Totals().Total

	cash, err := money.FromString(strings.TrimSpace(m.formCash))
	if err != nil {
		return func() tea.Msg { return checkoutMsg{err: err} }
	}

	card, err := money.FromString(strings.TrimSpace(m.formCard))
	if err != nil {
		return func() tea.Msg { return checkoutMsg{err: err} }
	}

	var legs []cart.TenderLeg

	switch method {
	case cart.MethodCash:
		legs = []cart.TenderLeg{{Method: cart.MethodCash, Amount: cash}}
	case cart.MethodSplit:
		legs = []cart.TenderLeg{
			{Method: cart.MethodCash, Amount: cash},
			{Method: cart.MethodCard, Amount: card},
		}
	default:
		legs = []cart.TenderLeg{{Method: method, Amount: total}}
	}

	c := m.cart

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sale, err := m.checkoutSvc.Checkout(ctx, c, method, legs)
		if err != nil {
			return checkoutMsg{err: err}
		}

		return checkoutMsg{sale: sale}
	}
}
