package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/tilly/internal/auth"
	catalogapi "github.com/MrJamesThe3rd/tilly/internal/http/catalog"
	invoiceapi "github.com/MrJamesThe3rd/tilly/internal/http/invoice"
	"github.com/MrJamesThe3rd/tilly/internal/http/pricelist"
	"github.com/MrJamesThe3rd/tilly/internal/http/register"
	stockapi "github.com/MrJamesThe3rd/tilly/internal/http/stock"
)

func New(
	authSecret []byte,
	registersV1 *register.Handler,
	catalogV1 *catalogapi.Handler,
	pricelistV1 *pricelist.Handler,
	stockV1 *stockapi.Handler,
	invoicesV1 *invoiceapi.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(authSecret))

		r.Route("/registers/{register}", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			registersV1.Routes(r)
		})

		r.Route("/holds", registersV1.HoldRoutes)

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			catalogV1.Routes(r)
		})

		r.Route("/pricelists", pricelistV1.Routes)

		r.Route("/stock", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			stockV1.Routes(r)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			invoicesV1.Routes(r)
		})
	})

	return router
}
