// Package auth provides API key authentication for the HTTP API and the
// CLI's signed-in session.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/evcraddock/rentbook/internal/db"
)

const (
	apiKeyBytes  = 32 // 256-bit keys
	apiKeyPrefix = "rb_"
)

// ErrKeyNotFound is returned when deleting a key the owner does not have.
var ErrKeyNotFound = errors.New("key not found")

// APIKey is the stored representation of an API key (no raw key).
type APIKey struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	KeyPrefix  string     `json:"key_prefix"` // first 8 chars for identification
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// APIKeyStore manages API keys in the database.
type APIKeyStore struct {
	db      *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

// NewAPIKeyStore creates an API key store.
func NewAPIKeyStore(d *db.DB) *APIKeyStore {
	return &APIKeyStore{db: d.DB, dialect: d.Dialect, now: time.Now}
}

// Create generates a new API key owned by email.
// Returns the raw key (shown once to user) and the stored record.
func (s *APIKeyStore) Create(name, email string) (string, *APIKey, error) {
	raw, err := generateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("generating key: %w", err)
	}

	key := &APIKey{
		Name:      name,
		Email:     email,
		KeyPrefix: raw[:8],
		CreatedAt: s.now().UTC(),
	}

	err = s.db.QueryRow(
		s.dialect.Rebind("INSERT INTO api_keys (name, email, key_prefix, key_hash, created_at) VALUES (?, ?, ?, ?, ?) RETURNING id"),
		name, email, key.KeyPrefix, hashAPIKey(raw), key.CreatedAt,
	).Scan(&key.ID)
	if err != nil {
		return "", nil, fmt.Errorf("storing key: %w", err)
	}

	return raw, key, nil
}

// List returns the keys owned by email, newest first (without the raw key).
func (s *APIKeyStore) List(email string) ([]APIKey, error) {
	rows, err := s.db.Query(
		s.dialect.Rebind("SELECT id, name, email, key_prefix, created_at, last_used_at FROM api_keys WHERE email = ? ORDER BY created_at DESC, id DESC"),
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("closing rows: %v\n", cerr)
		}
	}()

	keys := []APIKey{}
	for rows.Next() {
		var k APIKey
		var lastUsed sql.NullTime
		if err := rows.Scan(&k.ID, &k.Name, &k.Email, &k.KeyPrefix, &k.CreatedAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		if lastUsed.Valid {
			t := lastUsed.Time
			k.LastUsedAt = &t
		}
		keys = append(keys, k)
	}

	return keys, rows.Err()
}

// Delete removes key id if it belongs to email.
func (s *APIKeyStore) Delete(id int64, email string) error {
	result, err := s.db.Exec(s.dialect.Rebind("DELETE FROM api_keys WHERE id = ? AND email = ?"), id, email)
	if err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return ErrKeyNotFound
	}

	return nil
}

// Validate checks a raw API key against stored hashes and returns the
// owner's email, or "" when the key is unknown. It updates last_used_at.
func (s *APIKeyStore) Validate(rawKey string) (string, error) {
	var email string
	err := s.db.QueryRow(
		s.dialect.Rebind("UPDATE api_keys SET last_used_at = ? WHERE key_hash = ? RETURNING email"),
		s.now().UTC(), hashAPIKey(rawKey),
	).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("validating key: %w", err)
	}
	return email, nil
}

func generateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(b), nil
}

func hashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
