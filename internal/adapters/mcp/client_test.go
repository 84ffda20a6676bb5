package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bnema/networth-cli/internal/adapters/mcp"
	"github.com/bnema/networth-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewClientRequiresEndpoint(t *testing.T) {
	t.Parallel()

	_, err := mcp.NewClient("", "sess-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
}

func TestNewClientRequiresSessionID(t *testing.T) {
	t.Parallel()

	_, err := mcp.NewClient("https://agg.example.com/mcp", "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session id")
}

func TestCallToolSendsEnvelopeAndHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "sess-1", r.Header.Get("Mcp-Session-Id"))
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var request map[string]any
		require.NoError(t, json.Unmarshal(body, &request))
		assert.Equal(t, "2.0", request["jsonrpc"])
		assert.Equal(t, "tools/call", request["method"])
		assert.NotEmpty(t, request["id"])

		params, ok := request["params"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "fetch_net_worth", params["name"])

		_, _ = w.Write([]byte(`{"jsonrpc": "2.0", "id": "1", "result": {"total_value": {"units": "10", "nanos": 0}}}`))
	}))
	defer server.Close()

	client, err := mcp.NewClient(server.URL, "sess-1", mcp.WithBearerToken("token-1"))
	require.NoError(t, err)

	payload, err := client.CallTool(context.Background(), "fetch_net_worth", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_value": {"units": "10", "nanos": 0}}`, string(payload))
}

func TestCallToolUnwrapsTextNestedPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc": "2.0", "id": "1", "result": {"content": [{"type": "text", "text": "{\"status\": \"ok\"}"}]}}`))
	}))
	defer server.Close()

	client, err := mcp.NewClient(server.URL, "sess-1")
	require.NoError(t, err)

	payload, err := client.CallTool(context.Background(), "check_login_status", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status": "ok"}`, string(payload))
}

func TestCallToolClassifiesAuthorizationFailure(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		client, err := mcp.NewClient(server.URL, "sess-1")
		require.NoError(t, err)

		_, err = client.CallTool(context.Background(), "fetch_net_worth", nil)
		require.ErrorIs(t, err, domain.ErrUnauthorized)

		server.Close()
	}
}

func TestCallToolClassifiesServerErrorAsTransient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := mcp.NewClient(server.URL, "sess-1")
	require.NoError(t, err)

	_, err = client.CallTool(context.Background(), "fetch_net_worth", nil)
	require.ErrorIs(t, err, domain.ErrTransient)
}

func TestCallToolClassifiesErrorEnvelope(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc": "2.0", "id": "1", "error": {"code": -32000, "message": "fund house unavailable"}}`))
	}))
	defer server.Close()

	client, err := mcp.NewClient(server.URL, "sess-1")
	require.NoError(t, err)

	_, err = client.CallTool(context.Background(), "fetch_mf_transactions", nil)
	require.ErrorIs(t, err, domain.ErrProtocol)
	assert.Contains(t, err.Error(), "fund house unavailable")
}

func TestCallToolClassifiesMalformedEnvelope(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client, err := mcp.NewClient(server.URL, "sess-1")
	require.NoError(t, err)

	_, err = client.CallTool(context.Background(), "fetch_net_worth", nil)
	require.ErrorIs(t, err, domain.ErrProtocol)
}

func TestCallToolClassifiesConnectionFailureAsTransient(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(nil, errors.New("connection reset by peer")).
		Times(1)

	client, err := mcp.NewClient("https://agg.example.com/mcp", "sess-1", mcp.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.CallTool(context.Background(), "fetch_net_worth", nil)
	require.ErrorIs(t, err, domain.ErrTransient)
}

func TestCallToolSendsExtraHeaders(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "networth-cli/1.0", req.Header.Get("User-Agent"))
			return nil, errors.New("stop here")
		}).
		Times(1)

	client, err := mcp.NewClient("https://agg.example.com/mcp", "sess-1",
		mcp.WithHTTPClient(httpClient),
		mcp.WithHeader(http.Header{"User-Agent": []string{"networth-cli/1.0"}}),
	)
	require.NoError(t, err)

	_, err = client.CallTool(context.Background(), "fetch_net_worth", nil)
	require.Error(t, err)
}
