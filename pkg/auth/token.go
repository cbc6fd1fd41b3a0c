// Package auth exchanges an API key for a bearer token and keeps the token
// until shortly before it expires. Tokens can be shared between processes
// through Redis.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	// DefaultLifetime is how long the server honours a token when no
	// expiration is requested.
	DefaultLifetime = 5 * time.Minute

	// RefreshMargin is subtracted from a token's expiry so it is replaced
	// before in-flight requests can observe it expiring.
	RefreshMargin = 30 * time.Second

	// RedisKeyPrefix prefixes every stored token key.
	RedisKeyPrefix = "ethos:token:"
)

// Token is a bearer token and its expiry.
type Token struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// IsExpired reports whether the token is past its expiry.
func (t *Token) IsExpired() bool {
	return !time.Now().Before(t.ExpiresAt)
}

// NeedsRefresh reports whether the token is within margin of its expiry.
func (t *Token) NeedsRefresh(margin time.Duration) bool {
	if t == nil || t.Value == "" {
		return true
	}
	return time.Until(t.ExpiresAt) <= margin
}

// TTL returns the time until expiry, or 0 if already expired.
func (t *Token) TTL() time.Duration {
	ttl := time.Until(t.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// KeyFor derives the store key for an API key without exposing the key itself.
func KeyFor(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return RedisKeyPrefix + hex.EncodeToString(sum[:8])
}
