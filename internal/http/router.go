package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/ledgerbook/internal/http/account"
	"github.com/MrJamesThe3rd/ledgerbook/internal/http/importcsv"
	"github.com/MrJamesThe3rd/ledgerbook/internal/http/payee"
	"github.com/MrJamesThe3rd/ledgerbook/internal/http/transaction"
)

func New(
	allowedOrigins []string,
	accountsV1 *account.Handler,
	importV1 *importcsv.Handler,
	transactionsV1 *transaction.Handler,
	payeesV1 *payee.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				accountsV1.Routes(r)
			})

			// Statement uploads are multipart.
			r.Route("/{id}/import", importV1.Routes)
		})

		r.Route("/transactions", transactionsV1.Routes)

		r.Route("/payees", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			payeesV1.Routes(r)
		})
	})

	return router
}
