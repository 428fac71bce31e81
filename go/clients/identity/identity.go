// Package identity talks to the external identity provider. The core never
// authenticates anyone itself; it only resolves opaque member ids to display
// names and reads the already-authenticated caller id off the request.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Identity is an (opaque id, display name) pair from the provider
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Resolver is the core's view of the identity provider
type Resolver interface {
	ListIdentities(ctx context.Context) ([]Identity, error)
}

// Client is an HTTP-backed Resolver
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a client for the identity provider at baseURL
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListIdentities returns every identity known to the provider
func (c *Client) ListIdentities(ctx context.Context) ([]Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/identities", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("identity API returned status code: %d, response: %s", resp.StatusCode, string(body))
	}

	var identities []Identity
	if err := json.NewDecoder(resp.Body).Decode(&identities); err != nil {
		return nil, fmt.Errorf("failed to decode identities: %w", err)
	}

	return identities, nil
}

// StaticResolver serves a fixed identity list. Used in tests and local
// development where no provider is running.
type StaticResolver struct {
	Identities []Identity
}

func (s *StaticResolver) ListIdentities(ctx context.Context) ([]Identity, error) {
	out := make([]Identity, len(s.Identities))
	copy(out, s.Identities)
	return out, nil
}
