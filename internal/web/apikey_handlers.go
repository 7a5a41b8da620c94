package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/evcraddock/rentbook/internal/auth"
)

// apikeyHandlers lets a key owner manage their own API keys.
type apikeyHandlers struct {
	apiKeys *auth.APIKeyStore
	logger  *zap.Logger
}

type apiKeyResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	KeyPrefix  string  `json:"key_prefix"`
	CreatedAt  string  `json:"created_at"`
	LastUsedAt *string `json:"last_used_at,omitempty"`
}

type apiKeyCreateResponse struct {
	Key            string         `json:"key"` // raw key, shown once
	APIKeyResponse apiKeyResponse `json:"api_key"`
}

const timeLayout = "2006-01-02T15:04:05Z"

func toKeyResponse(k auth.APIKey) apiKeyResponse {
	resp := apiKeyResponse{
		ID:        k.ID,
		Name:      k.Name,
		KeyPrefix: k.KeyPrefix,
		CreatedAt: k.CreatedAt.UTC().Format(timeLayout),
	}
	if k.LastUsedAt != nil {
		s := k.LastUsedAt.UTC().Format(timeLayout)
		resp.LastUsedAt = &s
	}
	return resp
}

// handleCreateKey generates a new key for the calling key's owner.
func (h *apikeyHandlers) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apiError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		name = "API Key"
	}

	rawKey, key, err := h.apiKeys.Create(name, auth.OwnerFromContext(r.Context()))
	if err != nil {
		h.logger.Error("creating api key", zap.Error(err))
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	apiJSON(w, apiKeyCreateResponse{Key: rawKey, APIKeyResponse: toKeyResponse(*key)}, http.StatusCreated)
}

// handleListKeys returns the owner's keys (without raw keys).
func (h *apikeyHandlers) handleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.apiKeys.List(auth.OwnerFromContext(r.Context()))
	if err != nil {
		h.logger.Error("listing api keys", zap.Error(err))
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]apiKeyResponse, len(keys))
	for i, k := range keys {
		resp[i] = toKeyResponse(k)
	}
	apiJSON(w, resp, http.StatusOK)
}

// handleDeleteKey revokes one of the owner's keys.
func (h *apikeyHandlers) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		apiError(w, "invalid key ID", http.StatusBadRequest)
		return
	}

	err = h.apiKeys.Delete(id, auth.OwnerFromContext(r.Context()))
	if errors.Is(err, auth.ErrKeyNotFound) {
		apiError(w, "key not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("deleting api key", zap.Error(err))
		apiError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
