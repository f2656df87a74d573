package ledger_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ProttoyDip/Bank-Management-System/internal/app/ledger"
)

// RegisterRoutes mounts the ledger API on the given router.
func RegisterRoutes(r chi.Router, s ledger.LedgerService, l *zap.Logger, debug bool) {
	handler := NewLedgerHandler(s, l.With(zap.String("component", "LedgerHTTPHandler")), debug)

	r.Get("/", apiInfo)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Bank ledger service is healthy!"))
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", handler.CreateUser)
		r.Get("/", handler.ListUsers)
		r.Get("/{id}", handler.GetUser)
		r.Put("/{id}", handler.UpdateUser)
		r.Delete("/{id}", handler.DeleteUser)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", handler.CreateAccount)
		r.Get("/", handler.ListAccounts)
		r.Get("/{id}", handler.GetAccount)
		r.Post("/{id}/deposit", handler.Deposit)
		r.Post("/{id}/withdraw", handler.Withdraw)
	})
}

func apiInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Bank Management System API is running",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"users":    "/users",
			"accounts": "/accounts",
		},
	})
}
