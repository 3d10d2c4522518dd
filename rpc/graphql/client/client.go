// Package client sends GraphQL queries to an explorer over HTTP.
//
// The client performs exactly one round trip per query and never retries.
// Decoding the data member into a typed shape is left to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tendermint/explorer-harness/libs/log"
)

// DefaultPath is the path the explorer serves GraphQL queries on.
const DefaultPath = "/graphql"

// Client is a GraphQL client bound to one explorer address.
//
// A Client is safe for concurrent use, except for SetVerbose which must not
// race with Run.
type Client struct {
	baseURL    string
	path       string
	httpClient *http.Client
	verbose    bool
	out        io.Writer
	logger     log.Logger
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every query round trip. It replaces the http.Client, so
// it must come after WithHTTPClient if both are used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithOutput sets the human-readable stream verbose mode prints to.
func WithOutput(w io.Writer) Option {
	return func(c *Client) { c.out = w }
}

// WithMetrics sets the metrics the client reports to.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithPath overrides DefaultPath.
func WithPath(path string) Option {
	return func(c *Client) { c.path = path }
}

// WithVerbose sets the initial verbose flag.
func WithVerbose(on bool) Option {
	return func(c *Client) { c.verbose = on }
}

// New returns a client for the explorer at address, which is either
// host:port or a URL. The scheme defaults to http.
func New(address string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(address)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    base,
		path:       DefaultPath,
		httpClient: &http.Client{},
		out:        os.Stdout,
		logger:     log.NewNopLogger(),
		metrics:    NopMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func parseBaseURL(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", errors.New("empty explorer address")
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("invalid explorer address %q: %w", address, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid explorer address %q: missing host", address)
	}
	return strings.TrimSuffix(u.String(), "/"), nil
}

// BaseURL returns the explorer root, e.g. http://127.0.0.1:8080.
func (c *Client) BaseURL() string { return c.baseURL }

// Endpoint returns the URL queries are posted to.
func (c *Client) Endpoint() string { return c.baseURL + c.path }

// Verbose reports whether requests and responses are printed.
func (c *Client) Verbose() bool { return c.verbose }

// SetVerbose toggles printing of requests and responses. It only affects
// what is written to the output stream, never what Run returns.
func (c *Client) SetVerbose(on bool) { c.verbose = on }

// Clone returns a copy of c sharing the underlying http.Client. The copy's
// verbose flag starts with c's current value and is independent afterwards.
func (c *Client) Clone() *Client {
	cp := *c
	return &cp
}

// Run sends one query and returns the decoded envelope. GraphQL-level errors
// are returned inside the envelope, not as an error.
func (c *Client) Run(ctx context.Context, body QueryBody) (*Envelope, error) {
	start := time.Now()
	env, err := c.run(ctx, body)

	status := statusOK
	var (
		transportErr     *TransportError
		requestErr       *RequestError
		serializationErr *SerializationError
	)
	switch {
	case errors.As(err, &transportErr):
		status = statusTransport
	case errors.As(err, &requestErr):
		status = statusRequest
	case errors.As(err, &serializationErr):
		status = statusSerialization
	case err == nil && len(env.Errors) > 0:
		status = statusGraphQL
	}
	c.metrics.Queries.With("query", body.OperationName, "status", status).Add(1)
	c.metrics.QueryDuration.With("query", body.OperationName).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Debug("query failed", "query", body.OperationName, "err", err)
	}
	return env, err
}

func (c *Client) run(ctx context.Context, body QueryBody) (*Envelope, error) {
	endpoint := c.Endpoint()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &SerializationError{Op: opEncode, Err: err}
	}
	c.printRequest(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &RequestError{URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close() // nolint: errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{URL: endpoint, StatusCode: resp.StatusCode, Body: truncate(raw)}
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	c.printResponse(raw)
	return env, nil
}

func decodeEnvelope(raw []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(raw, env); err != nil {
		return nil, &SerializationError{Op: opDecode, Body: truncate(raw), Err: err}
	}
	if !env.HasData() && len(env.Errors) == 0 {
		return nil, &SerializationError{
			Op:   opDecode,
			Body: truncate(raw),
			Err:  errors.New("response has neither data nor errors"),
		}
	}
	return env, nil
}

func (c *Client) printRequest(body QueryBody) {
	if !c.verbose {
		return
	}
	fmt.Fprintf(c.out, "running query: %q, against: %s\n", body.Query, c.Endpoint())
	c.logger.Debug("running query", "query", body.OperationName, "variables", body.Variables, "endpoint", c.Endpoint())
}

func (c *Client) printResponse(raw []byte) {
	if !c.verbose {
		return
	}
	fmt.Fprintf(c.out, "Response: %s\n", bytes.TrimSpace(raw))
	c.logger.Debug("query response", "bytes", len(raw))
}
