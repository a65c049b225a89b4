package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/MrJamesThe3rd/tilly/internal/audit"
	auditStore "github.com/MrJamesThe3rd/tilly/internal/audit/store"
	"github.com/MrJamesThe3rd/tilly/internal/auth"
	"github.com/MrJamesThe3rd/tilly/internal/cart"
	cartStore "github.com/MrJamesThe3rd/tilly/internal/cart/store"
	"github.com/MrJamesThe3rd/tilly/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/tilly/internal/catalog/store"
	"github.com/MrJamesThe3rd/tilly/internal/config"
	"github.com/MrJamesThe3rd/tilly/internal/database"
	"github.com/MrJamesThe3rd/tilly/internal/hold"
	tillyHttp "github.com/MrJamesThe3rd/tilly/internal/http"
	catalogHandler "github.com/MrJamesThe3rd/tilly/internal/http/catalog"
	invoiceHandler "github.com/MrJamesThe3rd/tilly/internal/http/invoice"
	pricelistHandler "github.com/MrJamesThe3rd/tilly/internal/http/pricelist"
	registerHandler "github.com/MrJamesThe3rd/tilly/internal/http/register"
	stockHandler "github.com/MrJamesThe3rd/tilly/internal/http/stock"
	"github.com/MrJamesThe3rd/tilly/internal/importer"
	"github.com/MrJamesThe3rd/tilly/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/tilly/internal/invoice/store"
	"github.com/MrJamesThe3rd/tilly/internal/stock"
	stockStore "github.com/MrJamesThe3rd/tilly/internal/stock/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Auth.Secret == "" {
		slog.Error("AUTH_SECRET is required")
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
	defer db.Close()

	var auditLog audit.Log = auditStore.New(db)

	roles := auth.ContextProvider{}

	var (
		catalogService  = catalog.NewService(catalogStore.New(db))
		checkoutService = cart.NewService(cartStore.New(db), nil)
		holdStore       = hold.NewStore(nil)
		importService   = importer.NewService()
		stockSaga       = stock.NewSaga(stockStore.New(db), auditLog)
		invoiceLedger   = invoice.NewLedger(invoiceStore.New(db), roles, auditLog, nil)
	)

	var (
		registerH  = registerHandler.NewHandler(catalogService, checkoutService, holdStore, taxRate, cfg.Register.Currency)
		catalogH   = catalogHandler.NewHandler(catalogService)
		pricelistH = pricelistHandler.NewHandler(importService, catalogService)
		stockH     = stockHandler.NewHandler(stockSaga, stockStore.New(db), roles)
		invoiceH   = invoiceHandler.NewHandler(invoiceLedger)
	)

	router := tillyHttp.New([]byte(cfg.Auth.Secret), registerH, catalogH, pricelistH, stockH, invoiceH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
