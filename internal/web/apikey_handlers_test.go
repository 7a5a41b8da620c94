package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/evcraddock/rentbook/internal/auth"
)

func TestCreateAPIKey(t *testing.T) {
	srv, _, token := testAPIServer(t)

	w := apiRequest(t, srv, "POST", "/api/keys", token, map[string]string{"name": "Laptop"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp apiKeyCreateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Key == "" {
		t.Error("expected raw key in response")
	}
	if resp.APIKeyResponse.Name != "Laptop" {
		t.Errorf("name = %q, want %q", resp.APIKeyResponse.Name, "Laptop")
	}

	// The new key works on its own
	w = apiRequest(t, srv, "GET", "/api/properties", resp.Key, nil)
	if w.Code != http.StatusOK {
		t.Errorf("new key status = %d, want 200", w.Code)
	}
}

func TestCreateAPIKeyDefaultName(t *testing.T) {
	srv, _, token := testAPIServer(t)

	w := apiRequest(t, srv, "POST", "/api/keys", token, map[string]string{"name": "  "})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var resp apiKeyCreateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.APIKeyResponse.Name != "API Key" {
		t.Errorf("name = %q, want %q", resp.APIKeyResponse.Name, "API Key")
	}
}

func TestListAPIKeysScopedToOwner(t *testing.T) {
	d := openTestDB(t)
	srv := testAPIServerWithStore(t, d, nil)
	token := createKey(t, d)

	if _, _, err := auth.NewAPIKeyStore(d).Create("Someone else", "other@example.com"); err != nil {
		t.Fatalf("create: %v", err)
	}

	w := apiRequest(t, srv, "GET", "/api/keys", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var keys []apiKeyResponse
	if err := json.NewDecoder(w.Body).Decode(&keys); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(keys) != 1 || keys[0].Name != "test" {
		t.Errorf("keys = %+v, want only the caller's key", keys)
	}
	if keys[0].LastUsedAt == nil {
		t.Error("expected last_used_at after authenticating")
	}
}

func TestDeleteAPIKey(t *testing.T) {
	d := openTestDB(t)
	srv := testAPIServerWithStore(t, d, nil)
	token := createKey(t, d)

	store := auth.NewAPIKeyStore(d)
	_, mine, err := store.Create("Spare", "owner@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, theirs, err := store.Create("Theirs", "other@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := apiRequest(t, srv, "DELETE", fmt.Sprintf("/api/keys/%d", theirs.ID), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("other owner's key: status = %d, want 404", w.Code)
	}

	w = apiRequest(t, srv, "DELETE", fmt.Sprintf("/api/keys/%d", mine.ID), token, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("own key: status = %d, want 204", w.Code)
	}

	w = apiRequest(t, srv, "DELETE", "/api/keys/abc", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", w.Code)
	}
}
