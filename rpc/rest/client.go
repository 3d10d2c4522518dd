// Package rest reads the vote endpoints of a node's v0 REST API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	committeesPath  = "/api/v0/vote/active/committees"
	activePlansPath = "/api/v0/vote/active/plans"

	defaultTimeout = 10 * time.Second
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client is a node REST client. It is safe for concurrent use.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the node at host, given as host:port or as a URL.
// The scheme defaults to http.
func New(host string) (*Client, error) {
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid node address %q: %w", host, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid node address %q: missing host", host)
	}
	return &Client{
		base: strings.TrimSuffix(u.String(), "/"),
		http: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Committees returns the committee member ids of the active vote plans.
func (c *Client) Committees(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, committeesPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActivePlans returns the active vote plans as the node encodes them.
func (c *Client) ActivePlans(ctx context.Context) ([]interface{}, error) {
	var out []interface{}
	if err := c.get(ctx, activePlansPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, v interface{}) error {
	endpoint := c.base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close() // nolint: errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("GET %s: failed to read response body: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", endpoint, err)
	}
	return nil
}
