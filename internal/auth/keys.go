// Package auth implements the optional API key scheme. Keys are verified
// against bcrypt hashes loaded from configuration; raw secrets are never
// stored.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
)

// Key format: nc_{env}_{id}_{secret}
// - id: 12 url-safe chars
// - secret: 32 url-safe chars
func GenerateAPIKey(env string) (id string, rawKey string, secretHash []byte, err error) {
	id, secret := randomToken(12), randomToken(32)
	if id == "" || secret == "" {
		return "", "", nil, fmt.Errorf("failed to generate token")
	}
	rawKey = fmt.Sprintf("nc_%s_%s_%s", env, id, secret)
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", "", nil, err
	}
	return id, rawKey, hash, nil
}

// ParseAPIKey splits a raw key into env, id, and secret.
func ParseAPIKey(raw string) (env string, id string, secret string, ok bool) {
	parts := strings.Split(raw, "_")
	if len(parts) != 4 || parts[0] != "nc" {
		return "", "", "", false
	}
	return parts[1], parts[2], parts[3], true
}

func randomToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Verifier checks raw API keys against the configured id:hash registry.
type Verifier struct {
	mu     sync.RWMutex
	hashes map[string][]byte // key id -> bcrypt hash of the secret
}

// NewVerifier parses a comma-separated "id:bcrypt-hash" list, as loaded from
// the AUTH_API_KEYS environment variable.
func NewVerifier(keys string) (*Verifier, error) {
	v := &Verifier{hashes: make(map[string][]byte)}
	if strings.TrimSpace(keys) == "" {
		return v, nil
	}
	for _, pair := range strings.Split(keys, ",") {
		id, hash, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || id == "" || hash == "" {
			return nil, fmt.Errorf("malformed api key entry %q", pair)
		}
		v.hashes[id] = []byte(hash)
	}
	return v, nil
}

// Verify checks the raw key and returns the caller's principal.
func (v *Verifier) Verify(rawKey string) (*Principal, error) {
	_, id, secret, ok := ParseAPIKey(rawKey)
	if !ok {
		return nil, fmt.Errorf("invalid key format: %w", apperrors.ErrUnauthorized)
	}

	v.mu.RLock()
	hash, found := v.hashes[id]
	v.mu.RUnlock()

	if !found {
		return nil, fmt.Errorf("unknown api key: %w", apperrors.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return nil, fmt.Errorf("invalid api key: %w", apperrors.ErrUnauthorized)
	}
	return &Principal{APIKeyID: id}, nil
}
