// Package identity verifies bearer tokens against the upstream identity
// provider and resolves them to user identities.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/config"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/types/common"
)

// User is the verified identity extracted from a bearer token.
type User struct {
	ID    common.UserID `json:"id"`
	Email string        `json:"email"`
	Role  string        `json:"role"`
}

// Verifier resolves bearer tokens to users.  Implemented by Client;
// middleware depends on this interface so tests can stub it.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

type cacheEntry struct {
	user    *User
	expires time.Time
}

// Client verifies tokens with a GET to the provider's user endpoint.
// Successful verifications are cached briefly so a burst of requests with
// the same token costs one upstream round trip.
type Client struct {
	baseURL string
	apiKey  string
	ttl     time.Duration
	http    *http.Client
	logger  logging.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewClient builds an identity client from configuration.
func NewClient(cfg config.IdentityConfig, log logging.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		ttl:     cfg.CacheTTL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		logger:  log,
		cache:   make(map[string]cacheEntry),
	}
}

// Verify resolves token to a user, consulting the cache first.
func (c *Client) Verify(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, errors.Unauthorized("missing bearer token")
	}

	if user, ok := c.cached(token); ok {
		return user, nil
	}

	user, err := c.fetch(ctx, token)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[token] = cacheEntry{user: user, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return user, nil
}

func (c *Client) cached(token string) (*User, bool) {
	c.mu.RLock()
	entry, ok := c.cache[token]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.user, true
}

func (c *Client) fetch(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to build verification request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "identity provider unreachable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Unauthorized("invalid or expired token")
	default:
		return nil, errors.New(errors.ErrCodeExternalService,
			fmt.Sprintf("identity provider returned status %d", resp.StatusCode))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to decode identity response")
	}
	if user.ID.IsZero() {
		return nil, errors.Unauthorized("token resolved to no user")
	}
	return &user, nil
}
