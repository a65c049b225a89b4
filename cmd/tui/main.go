package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tilly/cmd/tui/internal/view"
	auditStore "github.com/MrJamesThe3rd/tilly/internal/audit/store"
	"github.com/MrJamesThe3rd/tilly/internal/auth"
	"github.com/MrJamesThe3rd/tilly/internal/cart"
	cartStore "github.com/MrJamesThe3rd/tilly/internal/cart/store"
	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/tilly/internal/catalog/store"
	"github.com/MrJamesThe3rd/tilly/internal/config"
	"github.com/MrJamesThe3rd/tilly/internal/database"
	"github.com/MrJamesThe3rd/tilly/internal/hold"
	"github.com/MrJamesThe3rd/tilly/internal/importer"
	"github.com/MrJamesThe3rd/tilly/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/tilly/internal/invoice/store"
	"github.com/MrJamesThe3rd/tilly/internal/stock"
	stockStore "github.com/MrJamesThe3rd/tilly/internal/stock/store"
)

type model struct {
	currentView View

	registerView view.RegisterModel
	holdsView    view.HoldsModel
	stockView    view.StockModel
	invoicesView view.InvoicesModel
	importView   view.ImportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewRegister View = 1
	ViewHolds    View = 2
	ViewStock    View = 3
	ViewInvoices View = 4
	ViewImport   View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	taxRate, err := cfg.TaxRate()
	if err != nil {
		slog.Error("failed to parse tax rate", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	actor := auth.Actor{
		ID:   cfg.Operator.Name,
		Name: cfg.Operator.Name,
		Role: auth.Role(cfg.Operator.Role),
	}

	auditLog := auditStore.New(db)
	roles := auth.StaticProvider{Actor: actor}

	catalogSvc := catalog.NewService(catalogStore.New(db))
	checkoutSvc := cart.NewService(cartStore.New(db), nil)
	holdStore := hold.NewStore(nil)
	importSvc := importer.NewService()
	stockSaga := stock.NewSaga(stockStore.New(db), auditLog)
	ledger := invoice.NewLedger(invoiceStore.New(db), roles, auditLog, nil)

	currency := cfg.Register.Currency

	return model{
		currentView:  ViewMenu,
		registerView: view.NewRegisterModel(catalogSvc, checkoutSvc, holdStore, taxRate, currency),
		holdsView:    view.NewHoldsModel(holdStore, currency),
		stockView:    view.NewStockModel(catalogSvc, stockSaga, actor),
		invoicesView: view.NewInvoicesModel(ledger, currency),
		importView:   view.NewImportModel(catalogSvc, importSvc, currency),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewRegister
				return m, m.registerView.Init()
			case "2":
				m.currentView = ViewHolds
				return m, m.holdsView.Init()
			case "3":
				m.currentView = ViewStock
				return m, m.stockView.Init()
			case "4":
				m.currentView = ViewInvoices
				return m, m.invoicesView.Init()
			case "5":
				m.currentView = ViewImport
				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.RestoredMsg:
		// A restored hold lands on the register, wherever it was picked up.
		m.currentView = ViewRegister
	}

	switch m.currentView {
	case ViewRegister:
		var newModel tea.Model
		newModel, cmd = m.registerView.Update(msg)
		m.registerView = newModel.(view.RegisterModel)
	case ViewHolds:
		var newModel tea.Model
		newModel, cmd = m.holdsView.Update(msg)
		m.holdsView = newModel.(view.HoldsModel)
	case ViewStock:
		var newModel tea.Model
		newModel, cmd = m.stockView.Update(msg)
		m.stockView = newModel.(view.StockModel)
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Tilly POS\n\n" +
				"1. Register\n" +
				"2. Held Sales\n" +
				"3. Stock Transfer\n" +
				"4. Outstanding Invoices\n" +
				"5. Import Price List\n\n" +
				"q. Quit",
		)
	case ViewRegister:
		return m.registerView.View()
	case ViewHolds:
		return m.holdsView.View()
	case ViewStock:
		return m.stockView.View()
	case ViewInvoices:
		return m.invoicesView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
