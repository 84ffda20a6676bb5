package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/networth-cli/internal/domain"
	"github.com/bnema/networth-cli/internal/ports"
	"github.com/google/uuid"
)

const maxResponseBytes = 1 << 20

const defaultRequestTimeout = 30 * time.Second

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=mcp_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues JSON-RPC tool calls against the aggregation service. The
// underlying HTTP client is shared and reused across calls and must be
// safe under concurrent use.
type Client struct {
	endpoint       string
	sessionID      string
	bearerToken    string
	httpClient     HTTPClient
	header         http.Header
	requestTimeout time.Duration
}

var _ ports.ToolCaller = (*Client)(nil)

// ClientOption is a configuration option for the Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBearerToken sets the bearer credential sent with each request.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) {
		c.bearerToken = token
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithRequestTimeout bounds each call when the caller's context carries no
// deadline of its own.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.requestTimeout = timeout
	}
}

// NewClient creates a client bound to one endpoint and one session. The
// session id travels on every request so the service can associate calls
// with the web login completed for it.
func NewClient(endpoint string, sessionID string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("endpoint is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}

	client := &Client{
		endpoint:       endpoint,
		sessionID:      sessionID,
		httpClient:     http.DefaultClient,
		header:         http.Header{},
		requestTimeout: defaultRequestTimeout,
	}
	for _, option := range options {
		option(client)
	}

	return client, nil
}

// CallTool performs one tools/call round trip and returns the canonically
// unwrapped result payload. Outcomes are classified into authorization
// failures (domain.ErrUnauthorized), envelope-level errors
// (domain.ErrProtocol) and transport failures (domain.ErrTransient).
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  "tools/call",
		Params:  rpcParams{Name: name, Arguments: arguments},
	})
	if err != nil {
		return nil, fmt.Errorf("encode tool call %q: %w", name, err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create tool call request %q: %w", name, err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Mcp-Session-Id", c.sessionID)
	if c.bearerToken != "" {
		request.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}
	for key, values := range c.header {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: call %q: %v", domain.ErrTransient, name, err)
	}
	defer func() { _ = response.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response for %q: %v", domain.ErrTransient, name, err)
	}

	if response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: call %q: status %d", domain.ErrUnauthorized, name, response.StatusCode)
	}
	if response.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: call %q: status %d", domain.ErrTransient, name, response.StatusCode)
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: call %q: status %d: %s", domain.ErrProtocol, name, response.StatusCode, strings.TrimSpace(string(payload)))
	}

	var envelope rpcResponse
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode envelope for %q: %v", domain.ErrProtocol, name, err)
	}
	if envelope.Error != nil {
		return nil, fmt.Errorf("%w: tool %q: %s", domain.ErrProtocol, name, envelope.Error.Message)
	}
	if len(envelope.Result) == 0 {
		return nil, fmt.Errorf("%w: tool %q: envelope missing result", domain.ErrProtocol, name)
	}

	return unwrapToolResult(envelope.Result).JSON(), nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.requestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, timeout)
}
