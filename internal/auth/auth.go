// Package auth resolves bearer tokens against the hosted identity service.
// Authorization is single-tenant: exactly one allow-listed administrator
// email may pass the admin middleware.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNoToken means the request carried no bearer token at all.
	ErrNoToken = errors.New("no bearer token")
	// ErrInvalidToken means the identity service rejected the token.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the resolved owner of a bearer token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IdentityResolver turns a bearer token into an identity. Handlers depend
// on this interface so tests can substitute a fake for the hosted service.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// HTTPResolver resolves tokens against the identity service's user
// endpoint. Every call is bounded by the client timeout.
type HTTPResolver struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPResolver(baseURL, apiKey string) *HTTPResolver {
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to parse identity response: %w", err)
	}
	if identity.Email == "" {
		return nil, ErrInvalidToken
	}
	return &identity, nil
}

// BearerToken extracts the token from an Authorization header. Returns ""
// when the header is missing or not a bearer scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
