/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. CORS:       Cross-origin requests for frontend
  4. requestLogger: Structured access log via zerolog

ROUTE GROUPS:
  /api/accounts/*       Account management
  /api/transactions/*   Income and expenses
  /api/transfers/*      Account-to-account moves
  /api/credits/*        Loans and payment tracking
  /api/savings/*        Savings goals and contributions
  /api/summary          Dashboard aggregate
  /api/data             Bulk export/load/clear
  /api/init             Seed default accounts

SECURITY NOTE:
  No authentication middleware. This is a single-user application.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, log zerolog.Logger, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(requestLogger(log))

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Delete("/{id}", h.DeleteAccount)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", h.ListTransfers)
			r.Post("/", h.CreateTransfer)
			r.Delete("/{id}", h.DeleteTransfer)
		})

		r.Route("/credits", func(r chi.Router) {
			r.Get("/", h.ListCredits)
			r.Post("/", h.CreateCredit)
			r.Delete("/{id}", h.DeleteCredit)
			r.Post("/{id}/payments", h.RecordCreditPayment)
		})

		r.Route("/savings", func(r chi.Router) {
			r.Get("/", h.ListSavingsGoals)
			r.Post("/", h.CreateSavingsGoal)
			r.Delete("/{id}", h.DeleteSavingsGoal)
			r.Post("/{id}/contributions", h.Contribute)
		})

		r.Get("/summary", h.GetSummary)

		r.Route("/data", func(r chi.Router) {
			r.Get("/", h.ExportData)
			r.Post("/", h.LoadData)
			r.Delete("/", h.ClearData)
		})

		r.Post("/init", h.InitData)
	})

	return r
}

// requestLogger logs one line per request with method, path, status, and
// duration.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
