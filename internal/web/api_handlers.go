package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/evcraddock/rentbook/internal/ledger"
	"github.com/evcraddock/rentbook/internal/portfolio"
	"github.com/evcraddock/rentbook/internal/property"
	"github.com/evcraddock/rentbook/internal/receipt"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// ledgerError maps ledger errors to status codes.
func (s *Server) ledgerError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	if errors.As(err, &verr) {
		apiError(w, verr.Error(), http.StatusBadRequest)
		return
	}
	var serr *ledger.StoreError
	if errors.As(err, &serr) {
		apiError(w, serr.Error(), http.StatusBadGateway)
		return
	}
	s.logger.Error("ledger request failed", zap.Error(err))
	apiError(w, "internal error", http.StatusInternalServerError)
}

// SummaryResponse is the response from GET /api/summary. Summary covers every
// property; Properties is the filtered listing.
type SummaryResponse struct {
	Summary    portfolio.Summary   `json:"summary"`
	Properties []property.Property `json:"properties"`
}

// DeleteResponse is the response from DELETE /api/properties/{id}.
type DeleteResponse struct {
	ID      string `json:"id"`
	Removed bool   `json:"removed"`
}

// paymentRequest takes a number or one of the keywords rent, half, debt.
type paymentRequest struct {
	Amount string `json:"amount"`
	DryRun bool   `json:"dry_run"`
}

// apiListRows returns every stored row.
func (s *Server) apiListRows(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListAll(r.Context())
	if err != nil {
		s.logger.Error("listing properties", zap.Error(err))
		apiError(w, "failed to list properties", http.StatusInternalServerError)
		return
	}
	apiJSON(w, rows, http.StatusOK)
}

// apiInsertRow stores a row as given. The store assigns the id.
func (s *Server) apiInsertRow(w http.ResponseWriter, r *http.Request) {
	var row property.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		apiError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	saved, err := s.store.Insert(r.Context(), row)
	if err != nil {
		s.logger.Error("inserting property", zap.Error(err))
		apiError(w, "failed to insert property", http.StatusInternalServerError)
		return
	}
	apiJSON(w, saved, http.StatusCreated)
}

// apiUpdateRow overwrites the provided fields of a stored row.
func (s *Server) apiUpdateRow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var row property.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		apiError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	saved, err := s.store.Update(r.Context(), id, row)
	if err != nil {
		s.logger.Error("updating property", zap.String("id", id), zap.Error(err))
		apiError(w, "failed to update property", http.StatusInternalServerError)
		return
	}
	if saved == nil {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}
	apiJSON(w, saved, http.StatusOK)
}

// apiDeleteProperty removes a property. A missing id is not an error.
func (s *Server) apiDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.load(w, r) {
		return
	}

	removed, err := s.book.Delete(r.Context(), id)
	if err != nil {
		s.ledgerError(w, err)
		return
	}
	apiJSON(w, DeleteResponse{ID: id, Removed: removed}, http.StatusOK)
}

// apiGetProperty returns one property in domain form.
func (s *Server) apiGetProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	apiJSON(w, p, http.StatusOK)
}

// apiAddProperty validates and creates a property from entered text.
func (s *Server) apiAddProperty(w http.ResponseWriter, r *http.Request) {
	var in ledger.NewProperty
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	p, err := s.book.Add(r.Context(), in)
	if err != nil {
		s.ledgerError(w, err)
		return
	}
	apiJSON(w, p, http.StatusCreated)
}

// apiRecordPayment records a payment against a property. With dry_run set
// it returns a ledger.PaymentPreview and records nothing.
func (s *Server) apiRecordPayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apiError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if !ledger.IsPaymentKeyword(body.Amount) {
		if _, err := ledger.ParsePaymentAmount(body.Amount); err != nil {
			s.ledgerError(w, err)
			return
		}
	}

	if !s.load(w, r) {
		return
	}
	current, ok := s.book.Get(id)
	if !ok {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}
	amt, err := ledger.ResolvePaymentAmount(current, body.Amount)
	if err != nil {
		s.ledgerError(w, err)
		return
	}

	if body.DryRun {
		preview, _, err := s.book.PreviewPayment(id, amt)
		if err != nil {
			s.ledgerError(w, err)
			return
		}
		apiJSON(w, preview, http.StatusOK)
		return
	}

	p, ok, err := s.book.RecordPayment(r.Context(), id, amt)
	if err != nil {
		s.ledgerError(w, err)
		return
	}
	if !ok {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

// apiPaymentSuggestions lists the ready-made payment amounts for a property.
func (s *Server) apiPaymentSuggestions(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	apiJSON(w, ledger.SuggestedPayments(p), http.StatusOK)
}

// apiTogglePaid flips a property's paid flag.
func (s *Server) apiTogglePaid(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.load(w, r) {
		return
	}

	p, ok, err := s.book.TogglePaid(r.Context(), id)
	if err != nil {
		s.ledgerError(w, err)
		return
	}
	if !ok {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

// apiSummary returns portfolio-wide statistics and the properties matching
// q and filter. The statistics always cover the whole collection.
func (s *Server) apiSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := portfolio.ParsePaymentFilter(r.URL.Query().Get("filter"))
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.load(w, r) {
		return
	}

	all := s.book.Properties()
	apiJSON(w, SummaryResponse{
		Summary:    portfolio.Summarize(all),
		Properties: portfolio.Filter(all, r.URL.Query().Get("q"), filter),
	}, http.StatusOK)
}

// apiHistory returns a property's payments newest first.
func (s *Server) apiHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	apiJSON(w, portfolio.History(p), http.StatusOK)
}

// apiReceipt renders a printable receipt. ?format=md returns Markdown.
func (s *Server) apiReceipt(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(receipt.Markdown(p, s.currency, s.now())))
		return
	}

	page, err := receipt.HTML(p, s.currency, s.now())
	if err != nil {
		s.logger.Error("rendering receipt", zap.String("id", p.ID), zap.Error(err))
		apiError(w, "failed to render receipt", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

// load refreshes the book from the store. Rows may have changed through
// the store endpoints or another process sharing the database.
func (s *Server) load(w http.ResponseWriter, r *http.Request) bool {
	if err := s.book.Load(r.Context()); err != nil {
		s.ledgerError(w, err)
		return false
	}
	return true
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (property.Property, bool) {
	if !s.load(w, r) {
		return property.Property{}, false
	}
	p, ok := s.book.Get(mux.Vars(r)["id"])
	if !ok {
		apiError(w, "property not found", http.StatusNotFound)
		return property.Property{}, false
	}
	return p, true
}
