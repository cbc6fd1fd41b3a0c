package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ErrTokenExchange is returned when the auth endpoint rejects the API key or
// answers with something other than a token.
var ErrTokenExchange = errors.New("token exchange failed")

var tokenRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ethos_token_refreshes_total",
	Help: "Total bearer token exchanges by result",
}, []string{"result"})

// Config configures a Source.
type Config struct {
	// APIKey is exchanged for bearer tokens. Required.
	APIKey string

	// URL is the token exchange endpoint. Required.
	URL string

	// Lifetime is how long an issued token is treated as valid (default: DefaultLifetime).
	Lifetime time.Duration

	// Store holds issued tokens (default: in-process MemoryStore).
	Store Store

	// HTTPClient performs the exchange (default: 30s timeout client).
	HTTPClient *http.Client
}

// Source hands out bearer tokens, exchanging the API key when the stored
// token is missing or about to expire. Safe for concurrent use.
type Source struct {
	cfg    Config
	key    string
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSource validates cfg and creates a token source.
func NewSource(cfg Config, logger zerolog.Logger) (*Source, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("auth url is required")
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = DefaultLifetime
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Source{
		cfg:    cfg,
		key:    KeyFor(cfg.APIKey),
		logger: logger.With().Str("component", "auth").Logger(),
	}, nil
}

// Token returns a valid bearer token.
func (s *Source) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.cfg.Store.Get(ctx, s.key)
	switch {
	case err == nil && !stored.NeedsRefresh(RefreshMargin):
		return stored.Value, nil
	case err != nil && !errors.Is(err, ErrTokenNotFound):
		// A broken shared store should not stop requests; fall through to an exchange.
		s.logger.Warn().Err(err).Msg("Token store read failed")
	}

	token, err := s.exchange(ctx)
	if err != nil {
		tokenRefreshesTotal.WithLabelValues("error").Inc()
		return "", err
	}
	tokenRefreshesTotal.WithLabelValues("success").Inc()

	if err := s.cfg.Store.Set(ctx, s.key, token); err != nil {
		s.logger.Warn().Err(err).Msg("Token store write failed")
	}

	s.logger.Debug().
		Time("expires_at", token.ExpiresAt).
		Msg("Bearer token refreshed")

	return token.Value, nil
}

// Invalidate drops the stored token so the next Token call exchanges again.
func (s *Source) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Store.Delete(ctx, s.key)
}

func (s *Source) exchange(ctx context.Context) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Accept", "text/plain")

	issuedAt := time.Now()
	resp, err := s.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTokenExchange, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrTokenExchange, resp.StatusCode)
	}

	value := strings.TrimSpace(string(body))
	if value == "" {
		return nil, fmt.Errorf("%w: empty token", ErrTokenExchange)
	}

	return &Token{
		Value:     value,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.cfg.Lifetime),
	}, nil
}
