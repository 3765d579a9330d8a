package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/fiado/internal/http/collection"
	"github.com/MrJamesThe3rd/fiado/internal/http/expense"
	"github.com/MrJamesThe3rd/fiado/internal/http/party"
	"github.com/MrJamesThe3rd/fiado/internal/http/product"
	"github.com/MrJamesThe3rd/fiado/internal/http/report"
	"github.com/MrJamesThe3rd/fiado/internal/http/sale"
)

type Handlers struct {
	Clients     *party.ClientHandler
	Creditors   *party.CreditorHandler
	Sales       *sale.Handler
	Expenses    *expense.Handler
	Products    *product.Handler
	Purchases   *product.PurchaseHandler
	Reports     *report.Handler
	Collections *collection.Handler
}

type Options struct {
	Timeout     time.Duration
	CORSOrigins []string
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Clients.Routes(r)
		})

		r.Route("/creditors", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Creditors.Routes(r)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Sales.Routes(r)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Expenses.Routes(r)
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Purchases.Routes(r)
		})

		// Product import takes CSV or multipart bodies.
		r.Route("/products", h.Products.Routes)
		r.Route("/reports", h.Reports.Routes)
		r.Route("/backup", h.Reports.BackupRoutes)
		r.Route("/collections", h.Collections.Routes)
	})

	return router
}
