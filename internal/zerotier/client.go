// Package zerotier tells the network-policy authority to authorize or
// deauthorize members as access is granted and revoked. Failures here
// are reported to the caller but never rolled back against the user
// store; the two systems reconcile through the next admin action.
package zerotier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Authorizer is the out-of-band authorization channel.
type Authorizer interface {
	Authorize(ctx context.Context, memberID, ip, name string) error
	Deauthorize(ctx context.Context, memberID string) error
}

// Client talks to the ZeroTier controller facade.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given controller base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Authorize admits a member to the network with its assigned address.
func (c *Client) Authorize(ctx context.Context, memberID, ip, name string) error {
	return c.post(ctx, "/authenticate", map[string]string{
		"member_id": memberID,
		"ip":        ip,
		"name":      name,
	})
}

// Deauthorize removes a member from the network.
func (c *Client) Deauthorize(ctx context.Context, memberID string) error {
	return c.post(ctx, "/deauthenticate", map[string]string{
		"member_id": memberID,
	})
}

func (c *Client) post(ctx context.Context, path string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Error != "" {
			return fmt.Errorf("calling %s: %s", path, errBody.Error)
		}
		return fmt.Errorf("calling %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

// Noop is an Authorizer that does nothing, for deployments without a
// controller facade.
type Noop struct{}

// NewNoop creates a no-op authorizer.
func NewNoop() *Noop { return &Noop{} }

func (*Noop) Authorize(ctx context.Context, memberID, ip, name string) error { return nil }
func (*Noop) Deauthorize(ctx context.Context, memberID string) error         { return nil }
