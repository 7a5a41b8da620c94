// Package web provides the HTTP API server for rentbook.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/evcraddock/rentbook/internal/amount"
	"github.com/evcraddock/rentbook/internal/auth"
	"github.com/evcraddock/rentbook/internal/ledger"
	"github.com/evcraddock/rentbook/internal/logging"
	"github.com/evcraddock/rentbook/internal/property"
)

// Options configures a Server.
type Options struct {
	// AllowedOrigins lists the browser origins allowed by CORS.
	AllowedOrigins []string
	// Currency is the display currency for receipts.
	Currency string
}

// Server is the rentbook HTTP API server.
type Server struct {
	store    property.Store
	book     *ledger.Book
	apiKeys  *auth.APIKeyStore
	logger   *zap.Logger
	currency string
	now      func() time.Time
	handler  http.Handler
}

// NewServer creates a server over store. API routes require a key from apiKeys.
func NewServer(store property.Store, apiKeys *auth.APIKeyStore, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Currency == "" {
		opts.Currency = amount.DefaultCurrency
	}

	s := &Server{
		store:    store,
		book:     ledger.NewBook(store, ledger.NewEngine(), logger),
		apiKeys:  apiKeys,
		logger:   logger,
		currency: opts.Currency,
		now:      time.Now,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/properties", s.apiListRows).Methods(http.MethodGet)
	api.HandleFunc("/properties", s.apiInsertRow).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id}", s.apiUpdateRow).Methods(http.MethodPatch)
	api.HandleFunc("/properties/{id}", s.apiDeleteProperty).Methods(http.MethodDelete)
	api.HandleFunc("/properties/{id}", s.apiGetProperty).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}/payments", s.apiRecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id}/payments/suggestions", s.apiPaymentSuggestions).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}/toggle", s.apiTogglePaid).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id}/history", s.apiHistory).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id}/receipt", s.apiReceipt).Methods(http.MethodGet)
	api.HandleFunc("/ledger/properties", s.apiAddProperty).Methods(http.MethodPost)
	api.HandleFunc("/summary", s.apiSummary).Methods(http.MethodGet)

	keys := &apikeyHandlers{apiKeys: apiKeys, logger: logger}
	api.HandleFunc("/keys", keys.handleListKeys).Methods(http.MethodGet)
	api.HandleFunc("/keys", keys.handleCreateKey).Methods(http.MethodPost)
	api.HandleFunc("/keys/{id}", keys.handleDeleteKey).Methods(http.MethodDelete)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiError(w, "not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	co := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	var h http.Handler = router
	h = auth.RequireAPIKey(apiKeys, h)
	h = logging.RequestLogger(logger)(h)
	s.handler = co.Handler(h)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
